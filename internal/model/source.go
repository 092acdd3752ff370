package model

// SourceType classifies a discovered URL by what kind of evidence it carries.
type SourceType string

const (
	SourceOfficial   SourceType = "official"
	SourceRegistry   SourceType = "registry"
	SourceSocial     SourceType = "social"
	SourceReview     SourceType = "review"
	SourceDirectory  SourceType = "directory"
	SourceNews       SourceType = "news"
	SourceCompetitor SourceType = "competitor"
	SourceIrrelevant SourceType = "irrelevant"
)

// AllSourceTypes returns all defined source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceOfficial,
		SourceRegistry,
		SourceSocial,
		SourceReview,
		SourceDirectory,
		SourceNews,
		SourceCompetitor,
		SourceIrrelevant,
	}
}

// CandidateSource is a single scored search hit for one record. It lives only
// for the duration of that record's enrichment run.
type CandidateSource struct {
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	SourceType     SourceType `json:"source_type"`
	Platform       string     `json:"platform,omitempty"` // linkedin, facebook, ... for social sources
	RelevanceScore float64    `json:"relevance_score"`
	Position       int        `json:"position"` // discovery order, used for stable tie-breaks
}

// MergeRank returns the scalar-field priority of a source type. Higher wins on
// conflict. Registries are authoritative public record; official sites are
// self-asserted; social and review data is third-party and noisier.
func (c CandidateSource) MergeRank() int {
	switch c.SourceType {
	case SourceRegistry:
		return 6
	case SourceOfficial:
		return 5
	case SourceSocial:
		if c.Platform == "linkedin" {
			return 4
		}
		return 3
	case SourceReview, SourceDirectory:
		return 2
	case SourceNews:
		return 1
	default:
		return 0
	}
}

// Contacts holds structured contact signals extracted from a page.
type Contacts struct {
	Phones []string `json:"phones,omitempty"`
	Emails []string `json:"emails,omitempty"`
}

// PartialProfile is the set of facts extracted from a single fetched source.
// Traceability back to the originating source type is carried by the owning
// FetchedContent.
type PartialProfile struct {
	OwnerName       string            `json:"owner_name,omitempty"`
	OwnerTitle      string            `json:"owner_title,omitempty"`
	YearsInBusiness int               `json:"years_in_business,omitempty"`
	Website         string            `json:"website,omitempty"`
	Contacts        Contacts          `json:"contacts,omitempty"`
	PainPoints      []string          `json:"pain_points,omitempty"`
	Achievements    []string          `json:"achievements,omitempty"`
	Services        []string          `json:"services,omitempty"`
	SocialLinks     map[string]string `json:"social_links,omitempty"`
}

// IsEmpty reports whether no fact at all was extracted.
func (p PartialProfile) IsEmpty() bool {
	return p.OwnerName == "" && p.OwnerTitle == "" && p.YearsInBusiness == 0 &&
		p.Website == "" && len(p.Contacts.Phones) == 0 && len(p.Contacts.Emails) == 0 &&
		len(p.PainPoints) == 0 && len(p.Achievements) == 0 && len(p.Services) == 0 &&
		len(p.SocialLinks) == 0
}

// FetchedContent is the outcome of fetching one selected source. A failed
// fetch carries Succeeded=false and contributes nothing downstream.
type FetchedContent struct {
	Source    CandidateSource `json:"source"`
	RawText   string          `json:"raw_text,omitempty"`
	Facts     PartialProfile  `json:"facts,omitempty"`
	Succeeded bool            `json:"succeeded"`
	Error     string          `json:"error,omitempty"`
}
