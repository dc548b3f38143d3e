package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"TrueSignal/internal/domain/models"
	domrepo "TrueSignal/internal/domain/repository"
)

type fakeMarketData struct {
	mu      sync.Mutex
	symbols map[string]string
	failOn  map[string]error
	news    []models.RawNewsItem
	newsMax []int
}

func newFakeMarketData() *fakeMarketData {
	return &fakeMarketData{
		symbols: map[string]string{"acme": "ACME", "ACME": "ACME"},
		failOn:  map[string]error{},
		news: []models.RawNewsItem{
			{Title: "Acme beats estimates"},
			{Title: "Acme beats estimates!"},
			{Title: "Acme faces lawsuit"},
		},
	}
}

func (m *fakeMarketData) err(what string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failOn[what]
}

func (m *fakeMarketData) Search(_ context.Context, q string) ([]models.SymbolMatch, error) {
	if err := m.err("search"); err != nil {
		return nil, err
	}
	if s, ok := m.symbols[q]; ok {
		return []models.SymbolMatch{{Symbol: s, Name: "Acme Corp"}}, nil
	}
	return []models.SymbolMatch{}, nil
}

func (m *fakeMarketData) Quote(context.Context, string) (*models.Quote, error) {
	if err := m.err("quote"); err != nil {
		return nil, err
	}
	raw := json.RawMessage(`{"regularMarketPrice":100,"longName":"Acme Corp"}`)
	var q models.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, err
	}
	q.Raw = raw
	return &q, nil
}

func (m *fakeMarketData) History(context.Context, string, domrepo.Timeframe, int) (*models.History, error) {
	if err := m.err("history"); err != nil {
		return nil, err
	}
	var h models.History
	err := json.Unmarshal([]byte(`{"indicators":{"quote":[{
		"close":[98,99,100],"high":[99,100,101],"low":[97,98,99],"volume":[10,20,30]}]}}`), &h)
	return &h, err
}

func (m *fakeMarketData) Fundamentals(context.Context, string) (*models.Fundamentals, error) {
	if err := m.err("fundamentals"); err != nil {
		return nil, err
	}
	return &models.Fundamentals{Raw: json.RawMessage(`{"peRatio":20}`)}, nil
}

func (m *fakeMarketData) Analyst(context.Context, string) (*models.AnalystConsensus, error) {
	if err := m.err("analyst"); err != nil {
		return nil, err
	}
	return &models.AnalystConsensus{Raw: json.RawMessage(`{"buy":3}`)}, nil
}

func (m *fakeMarketData) Calendar(context.Context, string) (*models.Calendar, error) {
	return &models.Calendar{}, m.err("calendar")
}

func (m *fakeMarketData) News(_ context.Context, _ string, max int) ([]models.RawNewsItem, error) {
	m.mu.Lock()
	m.newsMax = append(m.newsMax, max)
	m.mu.Unlock()
	if err := m.err("news"); err != nil {
		return nil, err
	}
	return m.news, nil
}

func (m *fakeMarketData) Profile(context.Context, string) (models.Profile, error) {
	if err := m.err("profile"); err != nil {
		return nil, err
	}
	return models.Profile(`{"sector":"Industrials"}`), nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	outputs []string
	calls   int
}

func (g *fakeGenerator) Complete(context.Context, models.CompletionRequest) (*models.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.outputs) == 0 {
		return nil, fmt.Errorf("no scripted output: %w", domrepo.ErrUpstream)
	}
	out := g.outputs[0]
	if len(g.outputs) > 1 {
		g.outputs = g.outputs[1:]
	}
	return &models.Completion{
		Text:    out,
		Usage:   models.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Latency: time.Millisecond,
	}, nil
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type recordingEvents struct {
	events []*models.AnalysisEvent
}

func (r *recordingEvents) PublishAnalysis(_ context.Context, ev *models.AnalysisEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) RecordAnalysis(o string) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, o)
	m.mu.Unlock()
}
func (m *recordingMetrics) RecordAttempt(string) {}
func (m *recordingMetrics) RecordError(string) {}
func (m *recordingMetrics) RecordTokens(string, int64) {}
func (m *recordingMetrics) RecordFactsBytes(int) {}
func (m *recordingMetrics) RecordLatency(string, float64) {}
