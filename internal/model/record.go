package model

import (
	"strings"
	"time"
)

// RecordStatus tracks a record through the enrichment state machine.
type RecordStatus string

const (
	RecordStatusPending        RecordStatus = "pending"
	RecordStatusSearched       RecordStatus = "searched"
	RecordStatusSelected       RecordStatus = "selected"
	RecordStatusFetched        RecordStatus = "fetched"
	RecordStatusMerged         RecordStatus = "merged"
	RecordStatusContextualized RecordStatus = "contextualized"
	RecordStatusGenerated      RecordStatus = "generated"
	RecordStatusDone           RecordStatus = "done"
	RecordStatusFailed         RecordStatus = "failed"
)

// Record is one input business row to be enriched.
type Record struct {
	ID          string            `json:"id"`
	CompanyName string            `json:"company_name"`
	Address     string            `json:"address,omitempty"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	ZipCode     string            `json:"zip_code,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
	Website     string            `json:"website,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"` // unmapped columns, passed through untouched
	Row         int               `json:"row"`              // source row index for reassembly
}

// Location builds a "City, ST" string from whatever address parts are present.
func (r Record) Location() string {
	var parts []string
	for _, p := range []string{r.City, r.State} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(r.Address)
	}
	return strings.Join(parts, ", ")
}

// GeneratedContent holds the LLM-written outreach copy for one record.
type GeneratedContent struct {
	Subject    string `json:"subject,omitempty"`
	Opening    string `json:"opening,omitempty"`
	ValueProp  string `json:"value_prop,omitempty"`
	Icebreaker string `json:"icebreaker,omitempty"`
	HotButton  string `json:"hot_button,omitempty"`
	CTA        string `json:"cta,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"` // true when the template path produced this
}

// IsEmpty reports whether no copy at all was produced.
func (g GeneratedContent) IsEmpty() bool {
	return g.Subject == "" && g.Opening == "" && g.ValueProp == "" &&
		g.Icebreaker == "" && g.HotButton == "" && g.CTA == ""
}

// EnrichmentResult is the single output produced for every input record,
// including total-failure cases. Immutable once emitted.
type EnrichmentResult struct {
	RecordID   string           `json:"record_id"`
	Record     Record           `json:"record"`
	Profile    MergedProfile    `json:"profile"`
	Content    GeneratedContent `json:"content"`
	Confidence float64          `json:"confidence"`
	Status     RecordStatus     `json:"status"`

	SourcesFound    int     `json:"sources_found"`
	SourcesSelected int     `json:"sources_selected"`
	SourcesFetched  int     `json:"sources_fetched"`
	ContextChars    int     `json:"context_chars"`
	TokensUsed      int     `json:"tokens_used"`
	CostUSD         float64 `json:"cost_usd"`
	Error           string  `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// name suffixes stripped before first/last splitting ("SMITH JR" → "SMITH").
var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

func splitName(full string) []string {
	fields := strings.Fields(strings.TrimSpace(full))
	for len(fields) > 0 {
		last := strings.ToLower(strings.TrimRight(fields[len(fields)-1], "."))
		if !nameSuffixes[last] {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return fields
}

func firstToken(full string) string {
	fields := splitName(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func lastToken(full string) string {
	fields := splitName(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
