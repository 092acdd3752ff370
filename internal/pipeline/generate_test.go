package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/internal/model"
	"github.com/lotleads/enrich-cli/pkg/anthropic"
)

func generatorTestConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 2048,
		},
		Enrich: config.EnrichConfig{
			SenderName:       "Digital Marketing Partner",
			ValueProposition: "Digital presence modernization for dealerships",
		},
	}
}

func smallContext() model.PrioritizedContext {
	return model.PrioritizedContext{
		Sections: []model.ContextSection{
			{Label: "owner", Text: "Business: Sunrise Auto Sales\nOwner: Mike Rivera (President)\n", Rank: 1},
		},
		TotalChars: 55,
	}
}

func TestGenerate_ParsesStubResponse(t *testing.T) {
	stub := &StubAnthropicClient{}
	g := NewGenerator(stub, generatorTestConfig())

	content, usage, err := g.Generate(context.Background(), sampleRecord(), smallContext())
	require.NoError(t, err)

	assert.Equal(t, "22 years strong - time for a website to match?", content.Subject)
	assert.Contains(t, content.Opening, "two decades")
	assert.Contains(t, content.ValueProp, "online leads")
	assert.Contains(t, content.Icebreaker, "anniversary")
	assert.Contains(t, content.HotButton, "big-box")
	assert.Contains(t, content.CTA, "15-minute call")
	assert.False(t, content.Fallback)

	assert.Equal(t, int64(1200), usage.InputTokens)
	assert.Equal(t, int64(380), usage.OutputTokens)
	assert.Equal(t, 1, stub.Calls)
}

func TestGenerate_ErrorSurfaced(t *testing.T) {
	g := NewGenerator(&StubAnthropicClient{Fail: true}, generatorTestConfig())

	_, _, err := g.Generate(context.Background(), sampleRecord(), smallContext())
	assert.ErrorContains(t, err, "create message")
}

// primaryFailClient errors on the first model it sees and succeeds otherwise.
type primaryFailClient struct {
	inner       StubAnthropicClient
	failModel   string
	modelsTried []string
	lastReq     anthropic.MessageRequest
}

func (c *primaryFailClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	c.modelsTried = append(c.modelsTried, req.Model)
	c.lastReq = req
	if req.Model == c.failModel {
		return nil, assert.AnError
	}
	return c.inner.CreateMessage(ctx, req)
}

func TestGenerate_RequestCarriesSystemPrompt(t *testing.T) {
	client := &primaryFailClient{}
	g := NewGenerator(client, generatorTestConfig())

	_, _, err := g.Generate(context.Background(), sampleRecord(), smallContext())
	require.NoError(t, err)

	require.Len(t, client.lastReq.System, 1)
	assert.Equal(t, generationSystemPrompt, client.lastReq.System[0].Text)
	assert.Nil(t, client.lastReq.System[0].CacheControl)
	assert.Equal(t, int64(2048), client.lastReq.MaxTokens)
}

func TestGenerate_RetriesOnFallbackModel(t *testing.T) {
	cfg := generatorTestConfig()
	cfg.Anthropic.FallbackModel = "claude-haiku-4-5-20251001"
	client := &primaryFailClient{failModel: cfg.Anthropic.Model}
	g := NewGenerator(client, cfg)

	content, usage, err := g.Generate(context.Background(), sampleRecord(), smallContext())
	require.NoError(t, err)
	assert.False(t, content.IsEmpty())
	assert.Equal(t, int64(1200), usage.InputTokens)
	assert.Equal(t, []string{cfg.Anthropic.Model, cfg.Anthropic.FallbackModel}, client.modelsTried)
}

func TestGenerate_NoFallbackModelFailsImmediately(t *testing.T) {
	client := &primaryFailClient{failModel: generatorTestConfig().Anthropic.Model}
	g := NewGenerator(client, generatorTestConfig())

	_, _, err := g.Generate(context.Background(), sampleRecord(), smallContext())
	require.Error(t, err)
	assert.Len(t, client.modelsTried, 1)
}

func TestBuildPrompt_IncludesContextAndCampaign(t *testing.T) {
	g := NewGenerator(&StubAnthropicClient{}, generatorTestConfig())

	prompt := g.buildPrompt(sampleRecord(), smallContext())
	assert.Contains(t, prompt, "Digital presence modernization")
	assert.Contains(t, prompt, "Owner: Mike Rivera (President)")
	assert.Contains(t, prompt, "SUBJECT_1:")
	assert.Contains(t, prompt, "CTA_2:")
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	g := NewGenerator(&StubAnthropicClient{}, generatorTestConfig())

	prompt := g.buildPrompt(sampleRecord(), model.PrioritizedContext{})
	assert.Contains(t, prompt, "No research data was found")
	assert.Contains(t, prompt, "Sunrise Auto Sales in Tampa, FL")
}

func TestParseGenerated_FirstVariantWins(t *testing.T) {
	got := parseGenerated("SUBJECT_1: First subject\nSUBJECT_2: Second subject\nCTA_1: Call now")
	assert.Equal(t, "First subject", got.Subject)
	assert.Equal(t, "Call now", got.CTA)
}

func TestParseGenerated_LaterVariantAccepted(t *testing.T) {
	got := parseGenerated("SUBJECT_2: Only the second came back")
	assert.Equal(t, "Only the second came back", got.Subject)
}

func TestParseGenerated_StripsPlaceholderBrackets(t *testing.T) {
	got := parseGenerated("OPENING_1: [Congrats on the expansion]")
	assert.Equal(t, "Congrats on the expansion", got.Opening)
}

func TestParseGenerated_Garbage(t *testing.T) {
	assert.True(t, parseGenerated("I am sorry, I cannot help with that.").IsEmpty())
	assert.True(t, parseGenerated("").IsEmpty())
}

func TestFallback_UsesProfileFacts(t *testing.T) {
	g := NewGenerator(&StubAnthropicClient{}, generatorTestConfig())
	profile := model.MergedProfile{
		OwnerName:       "Mike Rivera",
		YearsInBusiness: 22,
		Achievements:    []string{"Recognized as top small business by the Tampa chamber"},
		PainPoints:      []string{"outdated website"},
	}

	got := g.Fallback(sampleRecord(), profile)

	assert.True(t, got.Fallback)
	assert.Contains(t, got.Subject, "22 years")
	assert.Contains(t, got.Opening, "22 years")
	assert.Equal(t, "Recognized as top small business by the Tampa chamber", got.Icebreaker)
	assert.Equal(t, "outdated website", got.HotButton)
	assert.Contains(t, got.CTA, "Mike")
}

func TestFallback_EmptyProfile(t *testing.T) {
	g := NewGenerator(&StubAnthropicClient{}, generatorTestConfig())

	got := g.Fallback(sampleRecord(), model.MergedProfile{})

	assert.True(t, got.Fallback)
	assert.False(t, got.IsEmpty())
	assert.Contains(t, got.Subject, "Sunrise Auto Sales")
	assert.Contains(t, got.CTA, "Sunrise Auto Sales")
}
