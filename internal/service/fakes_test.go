package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"evalforge/internal/model"
	"evalforge/internal/repository"
)

type memTemplateRepo struct {
	mu   sync.Mutex
	next int
	docs map[string]model.Template
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{docs: map[string]model.Template{}}
}

func (r *memTemplateRepo) Create(_ context.Context, t *model.Template) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	t.ID = fmt.Sprintf("%024x", r.next)
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.docs[t.ID] = t.Clone()
	return t.ID, nil
}

func (r *memTemplateRepo) GetByID(_ context.Context, id string) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	c := t.Clone()
	return &c, nil
}

func (r *memTemplateRepo) GetByHostID(_ context.Context, hostID string) ([]*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Template
	for _, t := range r.docs {
		if t.HostID == hostID {
			c := t.Clone()
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTemplateRepo) Update(_ context.Context, t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[t.ID]; !ok {
		return repository.ErrNoDocument
	}
	t.UpdatedAt = time.Now().UTC()
	r.docs[t.ID] = t.Clone()
	return nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNoDocument
	}
	delete(r.docs, id)
	return nil
}

// memEditorCache round-trips through JSON like the Redis cache does
type memEditorCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet error
}

func newMemEditorCache() *memEditorCache {
	return &memEditorCache{data: map[string][]byte{}}
}

func (c *memEditorCache) Set(_ context.Context, s *model.EditorSession) error {
	if c.failSet != nil {
		return c.failSet
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[s.ID] = b
	return nil
}

func (c *memEditorCache) Get(_ context.Context, id string) (*model.EditorSession, error) {
	c.mu.Lock()
	b, ok := c.data[id]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var s model.EditorSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *memEditorCache) Delete(_ context.Context, s *model.EditorSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, s.ID)
	return nil
}

func (c *memEditorCache) ListByHost(ctx context.Context, hostID string) ([]string, error) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.data))
	for id := range c.data {
		keys = append(keys, id)
	}
	c.mu.Unlock()
	var out []string
	for _, id := range keys {
		s, _ := c.Get(ctx, id)
		if s != nil && s.HostID == hostID {
			out = append(out, id)
		}
	}
	return out, nil
}

type memResponseRepo struct {
	mu   sync.Mutex
	next int
	docs []*model.Response
}

func (r *memResponseRepo) Create(_ context.Context, resp *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	resp.ID = fmt.Sprintf("r%d", r.next)
	c := *resp
	r.docs = append(r.docs, &c)
	return nil
}

func (r *memResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memResponseRepo) GetByTemplateID(_ context.Context, templateID string) ([]*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Response
	for _, d := range r.docs {
		if d.TemplateID == templateID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memResponseRepo) DeleteByTemplateID(_ context.Context, templateID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.Response
	var n int64
	for _, d := range r.docs {
		if d.TemplateID == templateID {
			n++
			continue
		}
		kept = append(kept, d)
	}
	r.docs = kept
	return n, nil
}

type memRanking struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
}

func newMemRanking() *memRanking {
	return &memRanking{scores: map[string]map[string]float64{}}
}

func (c *memRanking) UpdateScore(_ context.Context, templateID, responseID string, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scores[templateID] == nil {
		c.scores[templateID] = map[string]float64{}
	}
	c.scores[templateID][responseID] = score
	return nil
}

func (c *memRanking) GetTop(_ context.Context, templateID string, limit int) ([]model.RankEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := []model.RankEntry{}
	for id, score := range c.scores[templateID] {
		entries = append(entries, model.RankEntry{ResponseID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ResponseID > entries[j].ResponseID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (c *memRanking) GetRank(ctx context.Context, templateID, responseID string) (int64, error) {
	top, _ := c.GetTop(ctx, templateID, 1<<30)
	for _, e := range top {
		if e.ResponseID == responseID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (c *memRanking) Delete(_ context.Context, templateID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scores, templateID)
	return nil
}

type memReportCache struct {
	mu      sync.Mutex
	reports map[string]model.TemplateReport
}

func newMemReportCache() *memReportCache {
	return &memReportCache{reports: map[string]model.TemplateReport{}}
}

func (c *memReportCache) Get(_ context.Context, templateID string) (*model.TemplateReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[templateID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (c *memReportCache) Set(_ context.Context, r *model.TemplateReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[r.TemplateID] = *r
	return nil
}

func (c *memReportCache) Invalidate(_ context.Context, templateID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, templateID)
	return nil
}

type memSuggestionCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemSuggestionCache() *memSuggestionCache {
	return &memSuggestionCache{data: map[string][]byte{}}
}

func (c *memSuggestionCache) Get(_ context.Context, kind, request string, out interface{}) (bool, error) {
	c.mu.Lock()
	b, ok := c.data[kind+"|"+request]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memSuggestionCache) Set(_ context.Context, kind, request string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[kind+"|"+request] = b
	return nil
}

type broadcastRecord struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []broadcastRecord
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastRecord{sessionID, msgType, payload})
}

func (b *recordingBroadcaster) DisconnectSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, sessionID)
}

type countingGenerator struct {
	MockGenerator
	calls int
}

func (g *countingGenerator) SuggestTemplate(ctx context.Context, prompt string) (*model.TemplateSuggestion, error) {
	g.calls++
	return g.MockGenerator.SuggestTemplate(ctx, prompt)
}

func (g *countingGenerator) SuggestFormula(ctx context.Context, goal string, vars []model.VariableRef) (*model.FormulaSuggestion, error) {
	g.calls++
	return g.MockGenerator.SuggestFormula(ctx, goal, vars)
}

type testEnv struct {
	templateRepo *memTemplateRepo
	editorCache  *memEditorCache
	responses    *memResponseRepo
	ranking      *memRanking
	reports      *memReportCache
	broadcaster  *recordingBroadcaster

	templates *TemplateService
	editors   *EditorService
	collector *ResponseService
	reporter  *ReportService
}

func newTestEnv() *testEnv {
	log := zap.NewNop()
	env := &testEnv{
		templateRepo: newMemTemplateRepo(),
		editorCache:  newMemEditorCache(),
		responses:    &memResponseRepo{},
		ranking:      newMemRanking(),
		reports:      newMemReportCache(),
		broadcaster:  &recordingBroadcaster{},
	}
	env.templates = NewTemplateService(env.templateRepo, log)
	env.editors = NewEditorService(env.templates, env.editorCache, log)
	env.editors.SetBroadcaster(env.broadcaster)
	env.collector = NewResponseService(env.templates, env.responses, env.ranking, env.reports, log)
	env.reporter = NewReportService(env.templates, env.responses, env.ranking, env.reports, log)
	return env
}
