package pipeline

import "github.com/lotleads/enrich-cli/internal/model"

// Fallback-generated copy is capped well below LLM output, and a record with
// no copy at all scores near zero.
const (
	fallbackConfidenceCap = 0.3
	emptyContentCap       = 0.05
)

// Confidence scores how trustworthy and personalized an enrichment result is,
// in [0,1]. Weights follow what actually drives reply rates: knowing the
// owner, having something specific to say, and drawing from enough sources.
func Confidence(profile model.MergedProfile, sourcesFetched int, content model.GeneratedContent) float64 {
	score := 0.0

	// Source diversity, saturating at 0.2 once two sources fetched.
	diversity := float64(sourcesFetched) / 10
	if diversity > 0.2 {
		diversity = 0.2
	}
	score += diversity

	if profile.OwnerName != "" {
		score += 0.2
		if len(profile.Emails) > 0 || len(profile.Phones) > 0 {
			score += 0.1
		}
	}

	if len(profile.Services) > 0 {
		score += 0.1
	}
	if profile.YearsInBusiness > 0 {
		score += 0.05
	}

	if len(profile.Achievements) > 0 {
		score += 0.15
	}
	if len(profile.PainPoints) > 0 {
		score += 0.1
	}
	if len(profile.SocialLinks) > 0 {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}

	if content.IsEmpty() {
		if score > emptyContentCap {
			score = emptyContentCap
		}
	} else if content.Fallback && score > fallbackConfidenceCap {
		score = fallbackConfidenceCap
	}

	return score
}
