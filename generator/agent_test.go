package generator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers by schema name; each name has a queue of replies.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string][]reply
	prompts []Prompt
}

type reply struct {
	text string
	err  error
}

func (s *scriptedLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	name := prompt.Schema.Name
	queue := s.replies[name]
	if len(queue) == 0 {
		return "", errors.New("no scripted response for " + name)
	}
	r := queue[0]
	s.replies[name] = queue[1:]
	return r.text, r.err
}

func ok(text string) reply { return reply{text: text} }

const validPlan = `{
  "title": "Water Scarcity",
  "overview_title": "Our Roadmap",
  "agenda_points": ["Dry Taps - The Global Picture", "Root Causes - Climate and Demand", "Human Cost - Health and Migration", "Fixing Supply - Policy and Technology"],
  "key_points": ["Dry Taps - The Global Picture", "Root Causes - Climate and Demand", "Human Cost - Health and Migration", "Fixing Supply - Policy and Technology"],
  "conclusion_title": "Key Takeaways - Securing Water"
}`

func testPlan() SlidePlan {
	plan, err := decodePlan(validPlan)
	if err != nil {
		panic(err)
	}
	return plan
}

func newTestAgent(t *testing.T, llm LLMClient) *Agent {
	t.Helper()
	a, err := NewAgent(llm, WithRetry(0, 0))
	require.NoError(t, err)
	return a
}

func TestNewAgentRequiresClient(t *testing.T) {
	_, err := NewAgent(nil)
	require.Error(t, err)
}

func TestExpandQueries(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{
		"search_queries": {ok(`{"queries":["causes of water shortages"," ","water scarcity statistics 2024"]}`)},
	}}
	a := newTestAgent(t, llm)

	queries, err := a.ExpandQueries(context.Background(), "Water Scarcity")
	require.NoError(t, err)
	assert.Equal(t, []string{"causes of water shortages", "water scarcity statistics 2024"}, queries)
	assert.Contains(t, llm.prompts[0].User, `"Water Scarcity"`)
}

func TestExpandQueriesFailureIsModelCallError(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{
		"search_queries": {ok(`{"queries":[]}`)},
	}}
	a := newTestAgent(t, llm)

	_, err := a.ExpandQueries(context.Background(), "Water Scarcity")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelCall)
}

func TestRetryRecoversFromMalformedOutput(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{
		"search_queries": {ok(`not json`), ok(`{"queries":["a"]}`)},
	}}
	a, err := NewAgent(llm, WithRetry(2, 1))
	require.NoError(t, err)

	queries, err := a.ExpandQueries(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, queries)
	assert.Len(t, llm.prompts, 2)
}

func TestPlanContentUsesFallbackContextWithoutResults(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{"slide_plan": {ok(validPlan)}}}
	a := newTestAgent(t, llm)

	plan, err := a.PlanContent(context.Background(), "Water Scarcity", nil)
	require.NoError(t, err)
	assert.Len(t, plan.KeyPoints, 4)
	assert.Contains(t, llm.prompts[0].User, "General knowledge about Water Scarcity.")
}

func TestPlanContentJoinsSnippets(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{"slide_plan": {ok(validPlan)}}}
	a := newTestAgent(t, llm)

	results := []SearchResult{{URL: "https://a", Content: "alpha snippet"}, {URL: "https://b", Content: "beta snippet"}}
	_, err := a.PlanContent(context.Background(), "Water Scarcity", results)
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0].User, "alpha snippet\nbeta snippet")
}

func TestPlanContentRejectsWrongKeyPointCount(t *testing.T) {
	bad := `{"title":"T","overview_title":"O","agenda_points":[],"key_points":["A - a","B - b","C - c"],"conclusion_title":"Z - z"}`
	llm := &scriptedLLM{replies: map[string][]reply{"slide_plan": {ok(bad)}}}
	a := newTestAgent(t, llm)

	_, err := a.PlanContent(context.Background(), "Water Scarcity", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelCall)
	assert.Contains(t, err.Error(), "3 key points")
}

func TestBucketClosure(t *testing.T) {
	plan := testPlan()
	facts := []Fact{
		{Fact: "2 billion people lack safe water", Source: "https://who.int", SlideTitle: "Dry Taps - The Global Picture"},
		{Fact: "agriculture uses 70% of freshwater", Source: "https://fao.org", SlideTitle: "Root Causes - Climate and Demand"},
		{Fact: "stray fact", Source: "https://x", SlideTitle: "Not A Slide"},
		{Fact: "conclusion fact", Source: "https://y", SlideTitle: "Key Takeaways - Securing Water"},
	}

	sctx := Bucket(plan.ContextTitles(), facts)

	allowed := map[string]bool{}
	for _, title := range plan.ContextTitles() {
		allowed[title] = true
	}
	assert.Len(t, sctx.BySlide, 5)
	total := 0
	for title, points := range sctx.BySlide {
		assert.True(t, allowed[title], "unexpected bucket %q", title)
		total += len(points)
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, []ContextPoint{{Fact: "2 billion people lack safe water", Source: "https://who.int"}},
		sctx.Points("Dry Taps - The Global Picture"))
	assert.Empty(t, sctx.Points("Our Roadmap"))
}

func TestDistillFactsFailureReturnsEmptyContext(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{"fact_list": {{err: errors.New("boom")}}}}
	a := newTestAgent(t, llm)

	sctx, err := a.DistillFacts(context.Background(), "Water Scarcity", nil, testPlan())
	require.ErrorIs(t, err, ErrModelCall)
	assert.NotNil(t, sctx.BySlide)
	assert.Empty(t, sctx.BySlide)
}

func TestDistillFactsPromptListsSources(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{"fact_list": {ok(`{"facts":[{"fact":"f","source":"https://a","slide_title":"Our Roadmap"}]}`)}}}
	a := newTestAgent(t, llm)

	results := []SearchResult{{URL: "https://a", Content: "alpha"}}
	sctx, err := a.DistillFacts(context.Background(), "Water Scarcity", results, testPlan())
	require.NoError(t, err)
	assert.Len(t, sctx.Points("Our Roadmap"), 1)
	assert.Contains(t, llm.prompts[0].User, "Source: https://a\nContent: alpha")
}

const slideReply = `{"title":"ignored","bullets":["**Rising demand** – __agriculture__ draws most freshwater","  sub point",""],"references":["https://a","https://b","https://c"]}`

func TestGenerateSlidesOrderAndCount(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{
		"slide_content": {ok(slideReply), ok(slideReply), ok(slideReply), ok(slideReply), ok(slideReply)},
	}}
	a := newTestAgent(t, llm)
	plan := testPlan()
	sctx := Bucket(plan.ContextTitles(), []Fact{{Fact: "only here", Source: "https://who.int", SlideTitle: plan.KeyPoints[0]}})
	results := []SearchResult{{URL: "https://a", Content: "raw content for conclusion"}}

	slides, failures := a.GenerateSlides(context.Background(), "Water Scarcity", plan, sctx, results)
	require.Empty(t, failures)
	require.Len(t, slides, 7)

	assert.Equal(t, plan.Title, slides[0].Title)
	assert.Empty(t, slides[0].Bullets)
	assert.Equal(t, plan.OverviewTitle, slides[1].Title)
	assert.Equal(t, plan.AgendaPoints, slides[1].Bullets)
	for i, kp := range plan.KeyPoints {
		assert.Equal(t, kp, slides[2+i].Title)
		assert.Equal(t, []string{"https://a", "https://b"}, slides[2+i].References)
		assert.Equal(t, "  sub point", slides[2+i].Bullets[1])
	}
	assert.Equal(t, plan.ConclusionTitle, slides[6].Title)
	assert.Nil(t, slides[6].References)

	// only the first key point sees its bucketed fact
	assert.Contains(t, llm.prompts[0].User, "- only here [Source: https://who.int]")
	assert.NotContains(t, llm.prompts[1].User, "only here")
	assert.Contains(t, llm.prompts[4].User, "raw content for conclusion")
}

func TestGenerateSlidesIsolatesFailures(t *testing.T) {
	llm := &scriptedLLM{replies: map[string][]reply{
		"slide_content": {ok(slideReply), {err: errors.New("timeout")}, ok(slideReply), ok(`{"title":"x","bullets":[],"references":[]}`), {err: errors.New("down")}},
	}}
	a := newTestAgent(t, llm)
	plan := testPlan()

	slides, failures := a.GenerateSlides(context.Background(), "Water Scarcity", plan, StructuredContext{}, nil)
	require.Len(t, slides, 7)
	assert.Len(t, failures, 3)
	for _, err := range failures {
		assert.ErrorIs(t, err, ErrModelCall)
	}
	assert.Equal(t, []string{keyPointFailedBullet}, slides[3].Bullets)
	assert.Equal(t, plan.KeyPoints[1], slides[3].Title)
	assert.Equal(t, []string{keyPointFailedBullet}, slides[5].Bullets)
	assert.Equal(t, []string{conclusionFailedBullet}, slides[6].Bullets)
	assert.Len(t, slides[2].Bullets, 2)
}

func TestMockLLMRunsEveryStage(t *testing.T) {
	a := newTestAgent(t, MockLLM{})
	ctx := context.Background()

	queries, err := a.ExpandQueries(ctx, "Water Scarcity")
	require.NoError(t, err)
	assert.NotEmpty(t, queries)

	plan, err := a.PlanContent(ctx, "Water Scarcity", nil)
	require.NoError(t, err)
	assert.Equal(t, plan.KeyPoints, plan.AgendaPoints)

	sctx, err := a.DistillFacts(ctx, "Water Scarcity", nil, plan)
	require.NoError(t, err)
	assert.Len(t, sctx.BySlide, 5)

	slides, failures := a.GenerateSlides(ctx, "Water Scarcity", plan, sctx, nil)
	assert.Empty(t, failures)
	assert.Len(t, slides, 7)
}
