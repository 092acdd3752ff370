package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/internal/model"
	"github.com/lotleads/enrich-cli/pkg/anthropic"
)

const generationSystemPrompt = `You are an expert at creating highly personalized business outreach that gets responses. You write for a digital marketing agency reaching out to independent car dealerships.`

// Generator turns a prioritized context into outreach copy via the LLM, with
// a deterministic template fallback when the call fails or returns nothing
// parseable.
type Generator struct {
	client anthropic.Client
	cfg    *config.Config
}

// NewGenerator creates a Generator.
func NewGenerator(client anthropic.Client, cfg *config.Config) *Generator {
	return &Generator{client: client, cfg: cfg}
}

// Generate produces outreach content for one record. The primary model is
// tried first; a provider error is retried once on the fallback model when
// one is configured. An error is returned only when every attempt failed or
// nothing parseable came back; the caller decides whether to fall back to
// the template path.
func (g *Generator) Generate(ctx context.Context, record model.Record, pctx model.PrioritizedContext) (model.GeneratedContent, anthropic.TokenUsage, error) {
	var usage anthropic.TokenUsage

	prompt := g.buildPrompt(record, pctx)
	resp, err := g.createMessage(ctx, g.cfg.Anthropic.Model, prompt)
	if err != nil {
		fallbackModel := g.cfg.Anthropic.FallbackModel
		if fallbackModel == "" || ctx.Err() != nil {
			return model.GeneratedContent{}, usage, eris.Wrap(err, "generate: create message")
		}
		zap.L().Warn("generation failed on primary model, retrying on fallback",
			zap.String("model", g.cfg.Anthropic.Model),
			zap.String("fallback_model", fallbackModel),
			zap.Error(err),
		)
		resp, err = g.createMessage(ctx, fallbackModel, prompt)
		if err != nil {
			return model.GeneratedContent{}, usage, eris.Wrap(err, "generate: create message")
		}
	}
	usage = resp.Usage

	content := parseGenerated(resp.Text())
	if content.IsEmpty() {
		return model.GeneratedContent{}, usage, eris.New("generate: response contained no parseable content")
	}
	return content, usage, nil
}

func (g *Generator) createMessage(ctx context.Context, modelName, prompt string) (*anthropic.MessageResponse, error) {
	return g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     modelName,
		MaxTokens: int64(g.cfg.Anthropic.MaxTokens),
		System:    []anthropic.SystemBlock{{Text: generationSystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
}

// buildPrompt assembles the generation prompt from the campaign settings and
// the prioritized evidence context.
func (g *Generator) buildPrompt(record model.Record, pctx model.PrioritizedContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, `CAMPAIGN CONTEXT:
- Value Proposition: %s
- Sender: %s
- Industry Focus: Automotive dealerships

EXTRACTED BUSINESS INTELLIGENCE for %s:
`, g.cfg.Enrich.ValueProposition, g.cfg.Enrich.SenderName, record.CompanyName)

	if pctx.IsEmpty() {
		fmt.Fprintf(&b, "No research data was found. The business is %s", record.CompanyName)
		if loc := record.Location(); loc != "" {
			fmt.Fprintf(&b, " in %s", loc)
		}
		b.WriteString(".\n")
	} else {
		b.WriteString(pctx.Text())
	}

	b.WriteString(`
YOUR TASK:
Create unique, highly personalized outreach content for this specific business.
Reference specific details from the intelligence above. Avoid generic templates.

Provide your response in the following format (one item per line, no JSON):

SUBJECT_1: [subject line referencing their specific business]
SUBJECT_2: [second subject line with a different angle]
SUBJECT_3: [third subject line]

OPENING_1: [opening line mentioning specific details]
OPENING_2: [second opening line]
OPENING_3: [third opening line]

VALUE_1: [value proposition addressing their pain points]
VALUE_2: [second value proposition]
VALUE_3: [third value proposition]

ICEBREAKER_1: [ice breaker about their business]
ICEBREAKER_2: [second ice breaker]

HOTBUTTON_1: [business challenge they likely face]
HOTBUTTON_2: [second business challenge]

CTA_1: [call to action]
CTA_2: [second call to action]`)

	return b.String()
}

// parseGenerated reads the line-oriented response format. The first variant
// of each field wins; later variants are accepted when the first is missing.
func parseGenerated(text string) model.GeneratedContent {
	var content model.GeneratedContent

	fields := []struct {
		prefix string
		dst    *string
	}{
		{"SUBJECT", &content.Subject},
		{"OPENING", &content.Opening},
		{"VALUE", &content.ValueProp},
		{"ICEBREAKER", &content.Icebreaker},
		{"HOTBUTTON", &content.HotButton},
		{"CTA", &content.CTA},
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, f := range fields {
			if *f.dst != "" || !strings.HasPrefix(line, f.prefix+"_") {
				continue
			}
			if _, value, ok := strings.Cut(line, ":"); ok {
				value = strings.TrimSpace(value)
				// The model occasionally echoes the placeholder brackets.
				value = strings.TrimPrefix(value, "[")
				value = strings.TrimSuffix(value, "]")
				if value != "" {
					*f.dst = value
				}
			}
		}
	}

	return content
}

// Fallback produces template-based content from whatever profile facts
// exist. It never fails.
func (g *Generator) Fallback(record model.Record, profile model.MergedProfile) model.GeneratedContent {
	zap.L().Info("generate: using fallback template", zap.String("company", record.CompanyName))

	first := profile.OwnerFirstName()
	greetTarget := record.CompanyName
	if first != "" {
		greetTarget = first
	}

	subject := fmt.Sprintf("A quick question about %s", record.CompanyName)
	opening := fmt.Sprintf("I came across %s and wanted to reach out directly.", record.CompanyName)
	if profile.YearsInBusiness > 0 {
		subject = fmt.Sprintf("%d years of %s - what's next?", profile.YearsInBusiness, record.CompanyName)
		opening = fmt.Sprintf("Running %s for %d years is no small feat.", record.CompanyName, profile.YearsInBusiness)
	}

	icebreaker := fmt.Sprintf("Independent dealerships like %s are the backbone of their local market.", record.CompanyName)
	if len(profile.Achievements) > 0 {
		icebreaker = profile.Achievements[0]
	}

	hotButton := "Standing out online against the big-box used car chains."
	if len(profile.PainPoints) > 0 {
		hotButton = profile.PainPoints[0]
	}

	return model.GeneratedContent{
		Subject:    subject,
		Opening:    opening,
		ValueProp:  g.cfg.Enrich.ValueProposition,
		Icebreaker: icebreaker,
		HotButton:  hotButton,
		CTA:        fmt.Sprintf("Would you be open to a brief call, %s?", greetTarget),
		Fallback:   true,
	}
}
