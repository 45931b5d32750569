package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalforge/internal/model"
)

func num(f float64) *float64 { return &f }

func scoredTemplate() model.Template {
	return model.Template{
		Title: "Scored",
		Items: []model.Item{
			{ID: "h", Type: model.ItemSectionHeader, Label: "Intro"},
			{ID: "name", Type: model.ItemTextInput, Label: "Name", VariableID: "name", Required: true},
			{ID: "mc", Type: model.ItemMultipleChoice, Label: "Pick", VariableID: "pick", Required: true,
				Config: model.ChoiceConfig{Options: []model.Option{{ID: "o1", Label: "Low", Value: 1}, {ID: "o2", Label: "High", Value: 4}}}},
			{ID: "sl", Type: model.ItemSlider, Label: "Confidence", VariableID: "confidence",
				Config: model.SliderConfig{Min: 0, Max: 10, Step: 1}},
			{ID: "mx", Type: model.ItemMatrixTable, Label: "Grid", VariableID: "grid",
				Config: model.MatrixConfig{Rows: []string{"Speed", "Care"}, Columns: []model.Option{{ID: "c1", Label: "Bad", Value: 1}, {ID: "c2", Label: "Good", Value: 3}}}},
		},
	}
}

func saveScored(t *testing.T, env *testEnv) *model.Template {
	t.Helper()
	saved, err := env.templates.Save(context.Background(), hostA, scoredTemplate())
	require.NoError(t, err)
	return saved
}

func TestScoreAnswer(t *testing.T) {
	tmpl := scoredTemplate()
	tests := []struct {
		name    string
		item    int
		answer  model.Answer
		want    float64
		scored  bool
		wantErr bool
	}{
		{"text is not scored", 1, model.Answer{Text: "Ada"}, 0, false, false},
		{"choice option value", 2, model.Answer{OptionID: "o2"}, 4, true, false},
		{"unknown option", 2, model.Answer{OptionID: "zz"}, 0, false, true},
		{"choice without option", 2, model.Answer{Text: "High"}, 0, false, true},
		{"slider value", 3, model.Answer{Number: num(7)}, 7, true, false},
		{"slider out of range", 3, model.Answer{Number: num(11)}, 0, false, true},
		{"matrix sums columns", 4, model.Answer{MatrixRows: map[string]string{"Speed": "c2", "Care": "c1"}}, 4, true, false},
		{"matrix unknown row", 4, model.Answer{MatrixRows: map[string]string{"Cost": "c1"}}, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, scored, err := ScoreAnswer(tmpl.Items[tt.item], tt.answer)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scored, scored)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVariablesOf(t *testing.T) {
	vars := VariablesOf(scoredTemplate())
	require.Len(t, vars, 3)
	assert.Equal(t, model.VariableRef{VariableID: "pick", Label: "Pick", Type: model.ItemMultipleChoice, MinValue: 1, MaxValue: 4}, vars[0])
	assert.Equal(t, 10.0, vars[1].MaxValue)
	assert.Equal(t, 2.0, vars[2].MinValue)
	assert.Equal(t, 6.0, vars[2].MaxValue)
}

func TestResponseService_Submit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tmpl := saveScored(t, env)

	_, err := env.collector.Submit(ctx, tmpl.ID, SubmitRequest{Answers: map[string]model.Answer{
		"name": {Text: "Ada"},
	}})
	assert.ErrorIs(t, err, ErrMissingAnswer)

	resp, err := env.collector.Submit(ctx, tmpl.ID, SubmitRequest{
		Respondent: "ada@example.com",
		Answers: map[string]model.Answer{
			"name":       {Text: "Ada"},
			"pick":       {OptionID: "o2"},
			"confidence": {Number: num(6)},
			"stray":      {Text: "ignored"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 10.0, resp.TotalScore)
	assert.Equal(t, map[string]float64{"pick": 4, "confidence": 6}, resp.Scores)
	assert.NotContains(t, resp.Answers, "stray")

	rank, err := env.ranking.GetRank(ctx, tmpl.ID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	_, err = env.collector.Submit(ctx, "000000000000000000000000", SubmitRequest{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestReportService_GetReport(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tmpl := saveScored(t, env)

	submit := func(who, option string, conf float64) {
		_, err := env.collector.Submit(ctx, tmpl.ID, SubmitRequest{
			Respondent: who,
			Answers: map[string]model.Answer{
				"name":       {Text: who},
				"pick":       {OptionID: option},
				"confidence": {Number: num(conf)},
			},
		})
		require.NoError(t, err)
	}
	submit("low", "o1", 2)
	submit("high", "o2", 8)

	report, err := env.reporter.GetReport(ctx, hostA, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ResponseCount)
	assert.Equal(t, 7.5, report.MeanTotal)
	require.Len(t, report.Variables, 3)
	pick := report.Variables[0]
	assert.Equal(t, "pick", pick.VariableID)
	assert.Equal(t, 2, pick.Count)
	assert.Equal(t, 2.5, pick.Mean)
	assert.Equal(t, 1.0, pick.Min)
	assert.Equal(t, 4.0, pick.Max)
	assert.Equal(t, 0, report.Variables[2].Count, "unanswered optional item")

	require.Len(t, report.TopRespondents, 2)
	assert.Equal(t, "high", report.TopRespondents[0].Respondent)
	assert.Equal(t, 12.0, report.TopRespondents[0].Score)

	cached, err := env.reports.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)

	submit("mid", "o2", 4)
	cached, err = env.reports.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Nil(t, cached, "a new response invalidates the report")

	_, err = env.reporter.GetReport(ctx, "host_b", tmpl.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReportService_RebuildsLostRanking(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tmpl := saveScored(t, env)

	_, err := env.collector.Submit(ctx, tmpl.ID, SubmitRequest{Respondent: "ada", Answers: map[string]model.Answer{
		"name": {Text: "Ada"}, "pick": {OptionID: "o1"},
	}})
	require.NoError(t, err)
	require.NoError(t, env.ranking.Delete(ctx, tmpl.ID))
	require.NoError(t, env.reports.Invalidate(ctx, tmpl.ID))

	report, err := env.reporter.GetReport(ctx, hostA, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, report.TopRespondents, 1)
	assert.Equal(t, "ada", report.TopRespondents[0].Respondent)
}

func TestResponseService_DeleteForTemplate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tmpl := saveScored(t, env)
	_, err := env.collector.Submit(ctx, tmpl.ID, SubmitRequest{Answers: map[string]model.Answer{
		"name": {Text: "Ada"}, "pick": {OptionID: "o1"},
	}})
	require.NoError(t, err)

	require.NoError(t, env.collector.DeleteForTemplate(ctx, tmpl.ID))
	left, err := env.responses.GetByTemplateID(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	top, err := env.ranking.GetTop(ctx, tmpl.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
