package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lotleads/enrich-cli/internal/model"
)

// Per-section soft caps. Lower-priority sections get less room so a long
// homepage can never crowd out personnel facts.
const (
	ownerSectionCap        = 4000
	aboutSectionCap        = 30000
	newsSectionCap         = 15000
	testimonialsSectionCap = 10000
	servicesSectionCap     = 8000
	fillerSectionCap       = 20000
)

// BuildContext assembles the bounded text context handed to the LLM.
// Sections are emitted in fixed priority order: personnel facts, the official
// site's description, recent news, testimonials, services, then generic
// filler. When appending a section would exceed maxChars it is truncated to
// the remaining budget and assembly stops.
func BuildContext(record model.Record, profile model.MergedProfile, fetched []model.FetchedContent, maxChars int) model.PrioritizedContext {
	var pctx model.PrioritizedContext
	if maxChars <= 0 {
		return pctx
	}

	sections := []struct {
		label string
		cap   int
		build func() string
	}{
		{"owner", ownerSectionCap, func() string { return ownerSection(record, profile) }},
		{"about", aboutSectionCap, func() string { return textByType(fetched, model.SourceOfficial, model.SourceRegistry) }},
		{"news", newsSectionCap, func() string { return newsSection(profile, fetched) }},
		{"testimonials", testimonialsSectionCap, func() string { return textByType(fetched, model.SourceReview) }},
		{"services", servicesSectionCap, func() string { return servicesSection(profile) }},
		{"filler", fillerSectionCap, func() string { return fillerSection(fetched) }},
	}

	for rank, s := range sections {
		remaining := maxChars - pctx.TotalChars
		if remaining <= 0 {
			break
		}

		text := s.build()
		if text == "" {
			continue
		}
		if len(text) > s.cap {
			text = truncateToRuneBoundary(text, s.cap)
		}

		truncated := false
		if len(text) > remaining {
			text = truncateToRuneBoundary(text, remaining)
			truncated = true
		}

		pctx.Sections = append(pctx.Sections, model.ContextSection{
			Label: s.label,
			Text:  text,
			Rank:  rank + 1,
		})
		pctx.TotalChars += len(text)

		if truncated {
			break
		}
	}

	return pctx
}

// truncateToRuneBoundary cuts text to at most max bytes without splitting a
// multibyte rune.
func truncateToRuneBoundary(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func ownerSection(record model.Record, profile model.MergedProfile) string {
	var lines []string
	if record.CompanyName != "" {
		lines = append(lines, "Business: "+record.CompanyName)
	}
	if loc := record.Location(); loc != "" {
		lines = append(lines, "Location: "+loc)
	}
	if profile.Website != "" {
		lines = append(lines, "Website: "+profile.Website)
	}
	if profile.OwnerName != "" {
		owner := "Owner: " + profile.OwnerName
		if profile.OwnerTitle != "" {
			owner += " (" + profile.OwnerTitle + ")"
		}
		lines = append(lines, owner)
	}
	if len(profile.Emails) > 0 {
		lines = append(lines, "Owner Email: "+profile.Emails[0])
	}
	if len(profile.Phones) > 0 {
		lines = append(lines, "Owner Phone: "+profile.Phones[0])
	}
	if profile.YearsInBusiness > 0 {
		lines = append(lines, fmt.Sprintf("Years in Business: %d", profile.YearsInBusiness))
		if profile.YearsInBusiness >= 25 {
			lines = append(lines, "Notable: Quarter-century or more of operation")
		}
	}
	if len(profile.PainPoints) > 0 {
		lines = append(lines, "Pain Points We Can Address:\n"+bulleted(profile.PainPoints))
	}
	if len(profile.SocialLinks) > 0 {
		var links []string
		for _, platform := range []string{"linkedin", "facebook", "instagram", "twitter", "youtube"} {
			if link, ok := profile.SocialLinks[platform]; ok {
				links = append(links, platform+": "+link)
			}
		}
		if len(links) > 0 {
			lines = append(lines, "Social Media Presence:\n"+strings.Join(links, "\n"))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func newsSection(profile model.MergedProfile, fetched []model.FetchedContent) string {
	var parts []string
	if len(profile.Achievements) > 0 {
		parts = append(parts, "Recent Achievements:\n"+bulleted(profile.Achievements))
	}
	if text := textByType(fetched, model.SourceNews); text != "" {
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n")
}

func servicesSection(profile model.MergedProfile) string {
	if len(profile.Services) == 0 {
		return ""
	}
	return "Primary Services:\n" + bulleted(profile.Services) + "\n"
}

// fillerSection returns social and remaining source text not already placed
// in a higher-priority section.
func fillerSection(fetched []model.FetchedContent) string {
	return textByType(fetched, model.SourceSocial, model.SourceDirectory)
}

func textByType(fetched []model.FetchedContent, types ...model.SourceType) string {
	var b strings.Builder
	for _, t := range types {
		for _, f := range fetched {
			if !f.Succeeded || f.Source.SourceType != t || strings.TrimSpace(f.RawText) == "" {
				continue
			}
			b.WriteString("[")
			b.WriteString(f.Source.URL)
			b.WriteString("]\n")
			b.WriteString(strings.TrimSpace(f.RawText))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
