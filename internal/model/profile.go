package model

// MergedProfile is the single consistent profile for one record, produced by
// merging every successfully fetched source. Scalar fields hold exactly one
// winning value; list and map fields are unioned with de-duplication.
// Once handed to the context prioritizer it is treated as immutable.
type MergedProfile struct {
	OwnerName       string     `json:"owner_name,omitempty"`
	OwnerTitle      string     `json:"owner_title,omitempty"`
	OwnerSource     SourceType `json:"owner_source,omitempty"`
	YearsInBusiness int        `json:"years_in_business,omitempty"`
	YearsSource     SourceType `json:"years_source,omitempty"`
	Website         string     `json:"website,omitempty"`

	Phones       []string          `json:"phones,omitempty"`
	Emails       []string          `json:"emails,omitempty"`
	PainPoints   []string          `json:"pain_points,omitempty"`
	Achievements []string          `json:"achievements,omitempty"`
	Services     []string          `json:"services,omitempty"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`

	SourcesUsed []string `json:"sources_used,omitempty"` // URLs that contributed at least one fact
}

// IsEmpty reports whether no source contributed any fact.
func (m MergedProfile) IsEmpty() bool {
	return m.OwnerName == "" && m.OwnerTitle == "" && m.YearsInBusiness == 0 &&
		m.Website == "" && len(m.Phones) == 0 && len(m.Emails) == 0 &&
		len(m.PainPoints) == 0 && len(m.Achievements) == 0 &&
		len(m.Services) == 0 && len(m.SocialLinks) == 0
}

// OwnerFirstName returns the leading token of the owner name, or "".
func (m MergedProfile) OwnerFirstName() string {
	return firstToken(m.OwnerName)
}

// OwnerLastName returns the trailing token of the owner name, or "".
func (m MergedProfile) OwnerLastName() string {
	return lastToken(m.OwnerName)
}
