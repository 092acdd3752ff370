package pipeline

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lotleads/enrich-cli/internal/model"
)

// Base relevance weight per source type. Registries and official sites carry
// the most trustworthy owner information; directories are mostly noise.
var sourceTypeWeights = map[model.SourceType]float64{
	model.SourceRegistry:   10,
	model.SourceOfficial:   9,
	model.SourceSocial:     5,
	model.SourceReview:     4,
	model.SourceNews:       3,
	model.SourceDirectory:  2,
	model.SourceCompetitor: 1,
	model.SourceIrrelevant: 0,
}

var registryDomains = []string{
	"sunbiz.org",
	"dos.myflorida.com",
	"opencorporates.com",
	"bizapedia.com",
	"sos.state",
	"sos.ga.gov",
	"sosnc.gov",
}

var socialPlatforms = map[string]string{
	"linkedin.com":  "linkedin",
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"youtube.com":   "youtube",
}

var reviewDomains = []string{
	"yelp.com",
	"bbb.org",
	"dealerrater.com",
	"glassdoor.com",
	"indeed.com",
}

var directoryDomains = []string{
	"yellowpages",
	"whitepages",
	"manta",
	"buzzfile",
	"mapquest",
	"autotrader.com",
	"cars.com",
	"cargurus.com",
}

var competitorDomains = []string{
	"carmax.com",
	"carvana.com",
	"autonation.com",
}

var newsDomainHints = []string{"news", "times", "post", "journal", "herald", "gazette"}

// Keyword families that signal personalization value in a title or snippet.
// Each family scores once; the campaign's declared focus scores extra.
var personalizationSignals = map[string][]string{
	"recent_activity": {"announce", "launch", "new", "expand", "open", "celebrate", "award", "promote"},
	"pain_points":     {"complaint", "issue", "problem", "challenge", "difficult", "frustrat", "disappoint"},
	"achievements":    {"award", "recogni", "certif", "accredit", "best", "top", "leader", "excel"},
	"growth":          {"hiring", "expand", "growth", "new location", "acquisition", "partner"},
	"leadership":      {"owner", "ceo", "president", "founder", "manager", "director"},
	"culture":         {"team", "culture", "values", "mission", "community", "volunteer", "sponsor"},
}

// Classifier assigns source types and relevance scores to search hits. It is
// a pure function of its inputs plus the campaign focus it was built with.
type Classifier struct {
	campaignFocus string
	now           func() time.Time
}

// NewClassifier creates a Classifier. The campaign focus names one of the
// personalization signal families and earns matching sources a bonus.
func NewClassifier(campaignFocus string) *Classifier {
	return &Classifier{campaignFocus: campaignFocus, now: time.Now}
}

// Classify turns one search hit into a scored CandidateSource for the given
// company. Position is the hit's discovery order and is preserved for stable
// tie-breaks downstream.
func (c *Classifier) Classify(rawURL, title, snippet, companyName string, position int) model.CandidateSource {
	cand := model.CandidateSource{
		URL:      rawURL,
		Title:    title,
		Snippet:  snippet,
		Position: position,
	}

	domain := hostOf(rawURL)
	if domain == "" {
		cand.SourceType = model.SourceIrrelevant
		return cand
	}

	tokens := companyTokens(companyName)
	cand.SourceType, cand.Platform = c.classifyDomain(rawURL, domain, title, tokens)
	cand.RelevanceScore = c.score(cand, tokens)
	return cand
}

func (c *Classifier) classifyDomain(rawURL, domain, title string, tokens []string) (model.SourceType, string) {
	lowerURL := strings.ToLower(rawURL)

	for _, d := range registryDomains {
		if strings.Contains(domain, d) {
			return model.SourceRegistry, ""
		}
	}

	if isOfficialDomain(domain, title, tokens) {
		return model.SourceOfficial, ""
	}

	for d, platform := range socialPlatforms {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return model.SourceSocial, platform
		}
	}

	for _, d := range competitorDomains {
		if strings.Contains(domain, d) {
			return model.SourceCompetitor, ""
		}
	}

	for _, d := range reviewDomains {
		if strings.Contains(domain, d) {
			return model.SourceReview, ""
		}
	}
	if strings.Contains(domain, "google.com") && (strings.Contains(lowerURL, "/maps/") || strings.Contains(lowerURL, "/search?")) {
		return model.SourceReview, ""
	}

	for _, d := range directoryDomains {
		if strings.Contains(domain, d) {
			return model.SourceDirectory, ""
		}
	}

	for _, hint := range newsDomainHints {
		if strings.Contains(domain, hint) {
			return model.SourceNews, ""
		}
	}

	lowerTitle := strings.ToLower(title)
	if strings.Contains(lowerTitle, "review") || strings.Contains(lowerTitle, "rating") {
		return model.SourceReview, ""
	}

	return model.SourceIrrelevant, ""
}

func (c *Classifier) score(cand model.CandidateSource, tokens []string) float64 {
	score := sourceTypeWeights[cand.SourceType]
	if cand.SourceType == model.SourceSocial && cand.Platform == "linkedin" {
		score += 2
	}

	text := strings.ToLower(cand.Title + " " + cand.Snippet)

	if len(tokens) > 0 && allTokensPresent(text, tokens) {
		score += 3
	}

	for family, keywords := range personalizationSignals {
		if anyKeywordPresent(text, keywords) {
			score += 2
			if family == c.campaignFocus {
				score += 3
			}
		}
	}

	year := c.now().Year()
	if strings.Contains(text, strconv.Itoa(year)) || strings.Contains(text, strconv.Itoa(year-1)) {
		score += 2
	}

	// Aggregators get an explicit penalty on top of the low base weight.
	lowerURL := strings.ToLower(cand.URL)
	for _, agg := range []string{"yellowpages", "whitepages", "manta", "buzzfile"} {
		if strings.Contains(lowerURL, agg) {
			score -= 3
			break
		}
	}

	return score
}

// isOfficialDomain reports whether the domain looks like the company's own
// site: at least two company tokens in the domain, or one in the domain plus
// another in the title.
func isOfficialDomain(domain, title string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	inDomain := 0
	for _, tok := range tokens {
		if strings.Contains(domain, tok) {
			inDomain++
		}
	}
	if inDomain >= 2 {
		return true
	}
	if inDomain == 1 {
		lowerTitle := strings.ToLower(title)
		for _, tok := range tokens {
			if !strings.Contains(domain, tok) && strings.Contains(lowerTitle, tok) {
				return true
			}
		}
		// Single-token company names cannot supply a second token.
		if len(tokens) == 1 {
			return strings.Contains(lowerTitle, tokens[0])
		}
	}
	return false
}

// companyTokens returns the lowercase name tokens usable for matching.
// Tokens of 3 characters or fewer are dropped to avoid false positives from
// short common words.
func companyTokens(companyName string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(companyName)) {
		w = strings.Trim(w, ".,&'\"-")
		if len(w) > 3 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func allTokensPresent(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

func anyKeywordPresent(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
