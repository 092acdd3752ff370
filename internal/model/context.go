package model

// ContextSection is one labeled block of the assembled LLM context.
type ContextSection struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Rank  int    `json:"rank"` // 1 = highest priority
}

// PrioritizedContext is the bounded text context handed to the LLM. Sections
// appear in priority order and TotalChars never exceeds the configured budget.
type PrioritizedContext struct {
	Sections   []ContextSection `json:"sections"`
	TotalChars int              `json:"total_chars"`
}

// Text concatenates all sections in order.
func (p PrioritizedContext) Text() string {
	var b []byte
	for _, s := range p.Sections {
		b = append(b, s.Text...)
	}
	return string(b)
}

// IsEmpty reports whether no section carries any text.
func (p PrioritizedContext) IsEmpty() bool {
	return p.TotalChars == 0
}
