package service

import (
	"fmt"

	"evalforge/internal/model"
)

// AnswerKey is the key a respondent's answer to it is stored under
func AnswerKey(it model.Item) string {
	if it.VariableID != "" {
		return it.VariableID
	}
	return it.ID
}

// ScoreAnswer returns the numeric value of an answer. The second result is false for
// items that do not produce a number.
func ScoreAnswer(it model.Item, ans model.Answer) (float64, bool, error) {
	switch it.Type {
	case model.ItemMultipleChoice, model.ItemRatingScale:
		if ans.OptionID == "" {
			return 0, false, fmt.Errorf("%w: %q expects an option", ErrInvalidAnswer, it.Label)
		}
		for _, o := range it.Options() {
			if o.ID == ans.OptionID {
				return o.Value, true, nil
			}
		}
		return 0, false, fmt.Errorf("%w: %q has no option %s", ErrInvalidAnswer, it.Label, ans.OptionID)

	case model.ItemSlider:
		cfg, _ := it.Slider()
		if ans.Number == nil {
			return 0, false, fmt.Errorf("%w: %q expects a number", ErrInvalidAnswer, it.Label)
		}
		v := *ans.Number
		if v < cfg.Min || v > cfg.Max {
			return 0, false, fmt.Errorf("%w: %q must be within %g..%g", ErrInvalidAnswer, it.Label, cfg.Min, cfg.Max)
		}
		return v, true, nil

	case model.ItemMatrixTable:
		cfg, _ := it.Matrix()
		rows := make(map[string]bool, len(cfg.Rows))
		for _, r := range cfg.Rows {
			rows[r] = true
		}
		var sum float64
		for row, colID := range ans.MatrixRows {
			if !rows[row] {
				return 0, false, fmt.Errorf("%w: %q has no row %q", ErrInvalidAnswer, it.Label, row)
			}
			found := false
			for _, c := range cfg.Columns {
				if c.ID == colID {
					sum += c.Value
					found = true
					break
				}
			}
			if !found {
				return 0, false, fmt.Errorf("%w: %q has no column %s", ErrInvalidAnswer, it.Label, colID)
			}
		}
		return sum, true, nil
	}
	return 0, false, nil
}

// VariablesOf lists the numeric variables of t with the range each can take
func VariablesOf(t model.Template) []model.VariableRef {
	vars := []model.VariableRef{}
	for _, it := range t.Items {
		ref := model.VariableRef{VariableID: it.VariableID, Label: it.Label, Type: it.Type}
		switch it.Type {
		case model.ItemMultipleChoice, model.ItemRatingScale:
			ref.MinValue, ref.MaxValue = optionRange(it.Options())
		case model.ItemSlider:
			cfg, _ := it.Slider()
			ref.MinValue, ref.MaxValue = cfg.Min, cfg.Max
		case model.ItemMatrixTable:
			cfg, _ := it.Matrix()
			lo, hi := optionRange(cfg.Columns)
			n := float64(len(cfg.Rows))
			ref.MinValue, ref.MaxValue = lo*n, hi*n
		default:
			continue
		}
		if ref.VariableID == "" {
			continue
		}
		vars = append(vars, ref)
	}
	return vars
}

func optionRange(opts []model.Option) (float64, float64) {
	if len(opts) == 0 {
		return 0, 0
	}
	lo, hi := opts[0].Value, opts[0].Value
	for _, o := range opts[1:] {
		if o.Value < lo {
			lo = o.Value
		}
		if o.Value > hi {
			hi = o.Value
		}
	}
	return lo, hi
}
