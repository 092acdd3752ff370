package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lotleads/enrich-cli/internal/model"
)

const (
	maxContactsPerSource  = 5
	maxSentencesPerFamily = 3
	maxSentenceLen        = 250
)

var (
	phoneRe = regexp.MustCompile(`(?:\(\d{3}\)\s?|\d{3}[-.\s])\d{3}[-.\s]\d{4}`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// "Owner: John Smith" / "President John Smith"
	titleThenNameRe = regexp.MustCompile(`\b(?i:(owner|president|founder|general manager|ceo|managing partner))[:,]?\s+([A-Z][a-z]+(?:\s[A-Z]\.?)?\s[A-Z][a-z]+)`)
	// "John Smith, Owner" / "John Smith - President"
	nameThenTitleRe = regexp.MustCompile(`([A-Z][a-z]+(?:\s[A-Z]\.?)?\s[A-Z][a-z]+)\s*[,\x{2013}-]\s*(?i:(owner|president|founder|general manager|ceo|managing partner))`)

	foundedYearRe  = regexp.MustCompile(`(?i)\b(?:since|established in|est\.?|founded in|serving [a-z ]+ since)\s+((?:19|20)\d{2})`)
	yearsFigureRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\+?\s+years (?:in business|of experience|serving)`)
	socialLinkRe   = regexp.MustCompile(`https?://(?:www\.)?(linkedin\.com|facebook\.com|instagram\.com|twitter\.com|x\.com|youtube\.com)/[^\s)"'<>\]]+`)
	imageSuffixRe  = regexp.MustCompile(`\.(png|jpe?g|gif|svg|webp)$`)
	sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)
)

// Dealership service offerings recognized in page copy.
var serviceKeywords = []struct {
	keyword string
	label   string
}{
	{"used car", "Used car sales"},
	{"pre-owned", "Used car sales"},
	{"new car", "New car sales"},
	{"financing", "Financing"},
	{"finance", "Financing"},
	{"trade-in", "Trade-ins"},
	{"trade in", "Trade-ins"},
	{"service department", "Service department"},
	{"repair", "Service department"},
	{"detailing", "Detailing"},
	{"warranty", "Warranties"},
	{"leasing", "Leasing"},
	{"parts", "Parts"},
}

// Extractor mines structured facts out of fetched page text. Registry pages
// go through the HTML parser; everything else is mined heuristically.
type Extractor struct {
	registry *RegistryParser
	now      func() time.Time
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		registry: NewRegistryParser(),
		now:      time.Now,
	}
}

// Extract pulls facts from one fetched page. It never fails: pages with
// nothing recognizable yield an empty profile.
func (e *Extractor) Extract(source model.CandidateSource, rawText string) model.PartialProfile {
	if strings.TrimSpace(rawText) == "" {
		return model.PartialProfile{}
	}

	if source.SourceType == model.SourceRegistry {
		return e.registry.Parse(rawText)
	}

	var profile model.PartialProfile

	profile.OwnerName, profile.OwnerTitle = extractOwner(rawText)
	profile.YearsInBusiness = e.extractYears(rawText)
	profile.Contacts.Phones = dedupMatches(phoneRe.FindAllString(rawText, -1), maxContactsPerSource)
	profile.Contacts.Emails = extractEmails(rawText)
	profile.SocialLinks = extractSocialLinks(rawText)
	profile.Services = extractServices(rawText)

	sentences := splitSentences(rawText)
	profile.PainPoints = minedSentences(sentences, personalizationSignals["pain_points"])
	profile.Achievements = minedSentences(sentences, personalizationSignals["achievements"])

	return profile
}

func extractOwner(text string) (name, title string) {
	if m := titleThenNameRe.FindStringSubmatch(text); m != nil {
		return m[2], canonicalTitle(m[1])
	}
	if m := nameThenTitleRe.FindStringSubmatch(text); m != nil {
		return m[1], canonicalTitle(m[2])
	}
	return "", ""
}

var titleCaser = cases.Title(language.English)

func canonicalTitle(raw string) string {
	if strings.EqualFold(raw, "ceo") {
		return "CEO"
	}
	return titleCaser.String(strings.ToLower(raw))
}

func (e *Extractor) extractYears(text string) int {
	if m := foundedYearRe.FindStringSubmatch(text); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			if years := e.now().Year() - year; years > 0 {
				return years
			}
		}
	}
	if m := yearsFigureRe.FindStringSubmatch(text); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			return years
		}
	}
	return 0
}

func extractEmails(text string) []string {
	var emails []string
	for _, m := range emailRe.FindAllString(text, -1) {
		if imageSuffixRe.MatchString(strings.ToLower(m)) {
			continue
		}
		emails = append(emails, m)
	}
	return dedupMatches(emails, maxContactsPerSource)
}

func extractSocialLinks(text string) map[string]string {
	var links map[string]string
	for _, m := range socialLinkRe.FindAllStringSubmatch(text, -1) {
		platform := strings.TrimSuffix(m[1], ".com")
		if platform == "x" {
			platform = "twitter"
		}
		if links == nil {
			links = make(map[string]string)
		}
		if _, exists := links[platform]; !exists {
			links[platform] = m[0]
		}
	}
	return links
}

func extractServices(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var services []string
	for _, s := range serviceKeywords {
		if seen[s.label] || !strings.Contains(lower, s.keyword) {
			continue
		}
		seen[s.label] = true
		services = append(services, s.label)
	}
	return services
}

func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) < 20 {
			continue
		}
		if len(s) > maxSentenceLen {
			s = s[:maxSentenceLen]
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// minedSentences returns up to maxSentencesPerFamily sentences containing
// any of the family's keywords.
func minedSentences(sentences, keywords []string) []string {
	var out []string
	for _, s := range sentences {
		if len(out) >= maxSentencesPerFamily {
			break
		}
		if anyKeywordPresent(strings.ToLower(s), keywords) {
			out = append(out, s)
		}
	}
	return out
}

func dedupMatches(matches []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if m == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}
