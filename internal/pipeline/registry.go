package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lotleads/enrich-cli/internal/model"
)

// Sunbiz abbreviates officer titles on detail pages.
var registryTitleExpansions = map[string]string{
	"P":    "PRESIDENT",
	"PRES": "PRESIDENT",
	"VP":   "VICE PRESIDENT",
	"S":    "SECRETARY",
	"T":    "TREASURER",
	"D":    "DIRECTOR",
	"CEO":  "CEO",
	"MGR":  "MANAGER",
	"MGRM": "MANAGING MEMBER",
	"AMBR": "MANAGING MEMBER",
}

// Officer titles that mark the primary owner of a filing.
var primaryOwnerTitles = []string{
	"PRESIDENT", "CEO", "CHIEF EXECUTIVE",
	"OWNER", "MANAGING MEMBER", "MANAGING PARTNER",
	"GENERAL PARTNER", "PRINCIPAL", "MANAGER",
}

var (
	filingDateRe    = regexp.MustCompile(`Date Filed:?\s*(\d{2}/\d{2}/(\d{4}))`)
	titleNamePairRe = regexp.MustCompile(`Title\s+([A-Z][A-Z/ ]*?)\s+Name\s+([A-Z][A-Z ,.'-]+)`)
	capsNameRe      = regexp.MustCompile(`^[A-Z][A-Z .'-]*,\s*[A-Z][A-Z .'-]*$`)
)

type registryOfficer struct {
	title string
	name  string
}

// RegistryParser extracts owner facts from business-registry detail pages.
// It understands the Florida Sunbiz layout and falls back to a generic
// "Title X Name Y" scan for other Secretary of State sites.
type RegistryParser struct {
	now   func() time.Time
	caser cases.Caser
}

// NewRegistryParser creates a RegistryParser.
func NewRegistryParser() *RegistryParser {
	return &RegistryParser{
		now:   time.Now,
		caser: cases.Title(language.English),
	}
}

// Parse mines a registry page for the primary owner and filing age. Pages
// that don't parse yield an empty profile, never an error.
func (p *RegistryParser) Parse(html string) model.PartialProfile {
	var profile model.PartialProfile

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return profile
	}

	officers := p.officersFromSections(doc)
	if len(officers) == 0 {
		officers = officersFromText(doc.Text())
	}

	for _, o := range officers {
		expanded := expandTitle(o.title)
		if !isPrimaryTitle(expanded) {
			continue
		}
		name := p.normalizeName(o.name)
		if name == "" {
			continue
		}
		profile.OwnerName = name
		profile.OwnerTitle = p.caser.String(strings.ToLower(expanded))
		break
	}

	if m := filingDateRe.FindStringSubmatch(doc.Text()); m != nil {
		if year, err := strconv.Atoi(m[2]); err == nil {
			if years := p.now().Year() - year; years > 0 {
				profile.YearsInBusiness = years
			}
		}
	}

	return profile
}

// officersFromSections walks Sunbiz detail sections: a "Title" span carries
// the abbreviated title (inline or in the following span) and the next
// "LAST, FIRST" span carries the officer name.
func (p *RegistryParser) officersFromSections(doc *goquery.Document) []registryOfficer {
	var officers []registryOfficer

	doc.Find(".detailSection").Each(func(_ int, section *goquery.Selection) {
		text := section.Text()
		if !strings.Contains(text, "Officer/Director Detail") && !strings.Contains(text, "Authorized Person") {
			return
		}

		spans := section.Find("span")
		var pendingTitle string
		for i := 0; i < spans.Length(); i++ {
			t := strings.TrimSpace(spans.Eq(i).Text())
			switch {
			case t == "Title" && i+1 < spans.Length():
				pendingTitle = strings.TrimSpace(spans.Eq(i + 1).Text())
				i++
			case strings.HasPrefix(t, "Title "):
				pendingTitle = strings.TrimSpace(strings.TrimPrefix(t, "Title "))
			case pendingTitle != "" && capsNameRe.MatchString(t):
				officers = append(officers, registryOfficer{title: pendingTitle, name: t})
				pendingTitle = ""
			}
		}
	})

	return officers
}

func officersFromText(text string) []registryOfficer {
	var officers []registryOfficer
	for _, m := range titleNamePairRe.FindAllStringSubmatch(text, -1) {
		officers = append(officers, registryOfficer{
			title: strings.TrimSpace(m[1]),
			name:  strings.TrimSpace(m[2]),
		})
	}
	return officers
}

func expandTitle(title string) string {
	title = strings.TrimSpace(strings.ToUpper(title))
	if expanded, ok := registryTitleExpansions[title]; ok {
		return expanded
	}
	return title
}

func isPrimaryTitle(title string) bool {
	if strings.Contains(title, "VICE") {
		return false
	}
	for _, t := range primaryOwnerTitles {
		if strings.Contains(title, t) {
			return true
		}
	}
	return false
}

var nameSuffixRe = regexp.MustCompile(`(?i)\s+(JR|SR|III|II|IV)\.?$`)

// normalizeName turns registry casing and ordering ("RIVERA, MIKE JR") into
// a display name ("Mike Rivera").
func (p *RegistryParser) normalizeName(raw string) string {
	name := nameSuffixRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if name == "" {
		return ""
	}

	// "LAST, FIRST MIDDLE" becomes "FIRST MIDDLE LAST".
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		rest := strings.TrimSpace(name[idx+1:])
		name = strings.TrimSpace(rest + " " + last)
	}

	if name == strings.ToUpper(name) {
		name = p.caser.String(strings.ToLower(name))
	}
	return name
}
