package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competitor-discovery/internal/llm"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/search"
)

type fakeSearcher struct {
	resp    search.Response
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) search.Response {
	f.queries = append(f.queries, query)
	return f.resp
}

type fakeGenerator struct {
	completion  llm.Completion
	messages    []llm.Message
	model       string
	temperature float32
}

func (f *fakeGenerator) Generate(_ context.Context, messages []llm.Message, model string, temperature float32) llm.Completion {
	f.messages = messages
	f.model = model
	f.temperature = temperature
	return f.completion
}

func TestDescribe_FirstSnippet(t *testing.T) {
	s := &fakeSearcher{resp: search.Response{OrganicResults: []search.Result{
		{Title: "Notion", Link: "https://notion.so"},
		{Snippet: "  Notion is a connected workspace.  "},
		{Snippet: "Second snippet"},
	}}}
	a := NewAnalyzer(s, &fakeGenerator{}, "", 0.2, observability.NopLogger())

	got := a.Describe(context.Background(), "Notion", "productivity")

	assert.Equal(t, "Notion is a connected workspace.", got)
	assert.Equal(t, []string{"Notion productivity tool description"}, s.queries)
}

func TestDescribe_Fallback(t *testing.T) {
	s := &fakeSearcher{resp: search.Response{Err: errors.New("boom")}}
	a := NewAnalyzer(s, &fakeGenerator{}, "", 0.2, observability.NopLogger())

	assert.Equal(t, "Notion in the productivity space.", a.Describe(context.Background(), "Notion", "productivity"))
}

func TestDescribe_LogsSearchFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	failed := NewAnalyzer(&fakeSearcher{resp: search.Response{Err: errors.New("quota exceeded")}}, &fakeGenerator{}, "", 0.2, log)
	failed.Describe(context.Background(), "Notion", "productivity")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "quota exceeded", hook.LastEntry().Data[logrus.ErrorKey].(error).Error())

	hook.Reset()
	empty := NewAnalyzer(&fakeSearcher{}, &fakeGenerator{}, "", 0.2, log)
	empty.Describe(context.Background(), "Notion", "productivity")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestAnalyze(t *testing.T) {
	s := &fakeSearcher{resp: search.Response{OrganicResults: []search.Result{{Snippet: "A workspace."}}}}
	gen := &fakeGenerator{completion: llm.Completion{Text: "| Product | Pricing |"}}
	a := NewAnalyzer(s, gen, "openai/gpt-4o-mini", 0.2, observability.NopLogger())

	got := a.Analyze(context.Background(), "Notion", "productivity", []Aspect{AspectPricing, AspectIntegrations})

	assert.Equal(t, Result{
		Product:     "Notion",
		Niche:       "productivity",
		Description: "A workspace.",
		Aspects:     "Pricing, Integrations",
		Report:      "| Product | Pricing |",
	}, got)

	require.Len(t, gen.messages, 2)
	assert.Equal(t, llm.RoleSystem, gen.messages[0].Role)
	assert.Equal(t, "You are an expert SaaS product analyst.", gen.messages[0].Content)
	assert.Equal(t, llm.RoleUser, gen.messages[1].Role)
	assert.Contains(t, gen.messages[1].Content, "Product: Notion\nDescription: A workspace.")
	assert.Contains(t, gen.messages[1].Content, "Compare all 7 products on these aspects: Pricing, Integrations.")
	assert.Equal(t, "openai/gpt-4o-mini", gen.model)
	assert.InDelta(t, 0.2, gen.temperature, 0.0001)
}

func TestAnalyze_StripsWrappingFence(t *testing.T) {
	gen := &fakeGenerator{completion: llm.Completion{Text: "```markdown\n| Product | Pricing |\n```"}}
	a := NewAnalyzer(&fakeSearcher{}, gen, "", 0.2, observability.NopLogger())

	got := a.Analyze(context.Background(), "Notion", "productivity", nil)

	assert.Equal(t, "| Product | Pricing |", got.Report)
	assert.False(t, got.Failed)
}

func TestAnalyze_SentinelIsFlagged(t *testing.T) {
	gen := &fakeGenerator{completion: llm.Completion{Text: llm.Sentinel, Err: errors.New("timeout")}}
	a := NewAnalyzer(&fakeSearcher{}, gen, "", 0.2, observability.NopLogger())

	got := a.Analyze(context.Background(), "Notion", "productivity", nil)

	assert.True(t, got.Failed)
	assert.Equal(t, llm.Sentinel, got.Report)
	assert.Equal(t, "Notion in the productivity space.", got.Description)
	assert.Equal(t, "Pricing, Features, User Interface", got.Aspects)
}

func TestJoinAspects(t *testing.T) {
	assert.Equal(t, "Pricing, Features, User Interface", JoinAspects(nil))
	assert.Equal(t, "Pricing, Features, User Interface", JoinAspects([]Aspect{" ", ""}))
	assert.Equal(t, "User Interface, Features, Pricing", JoinAspects(DefaultAspects()))
	assert.Equal(t, "Security / Compliance", JoinAspects([]Aspect{AspectSecurity}))
}

func TestAspectsCatalogue(t *testing.T) {
	all := Aspects()
	require.Len(t, all, 8)
	assert.Equal(t, AspectUserInterface, all[0])
	assert.Equal(t, AspectScalability, all[7])
	assert.Equal(t, all[:3], DefaultAspects())
}

func TestParseAspects(t *testing.T) {
	got := ParseAspects([]string{"pricing", " Speed / Performance ", "", "Mobile apps"})
	assert.Equal(t, []Aspect{AspectPricing, AspectPerformance, Aspect("Mobile apps")}, got)
}
