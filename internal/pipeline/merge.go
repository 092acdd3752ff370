package pipeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/model"
)

// Merge folds every successfully fetched source into one MergedProfile.
// Scalar fields take the value from the highest-priority source; on equal
// priority the source discovered first wins. List and map fields are unioned
// case-insensitively across all sources, ordered by source priority. The
// result depends only on the set of inputs and their discovery positions,
// never on fetch completion order.
func Merge(fetched []model.FetchedContent) model.MergedProfile {
	ordered := make([]model.FetchedContent, 0, len(fetched))
	for _, f := range fetched {
		if f.Succeeded && !f.Facts.IsEmpty() {
			ordered = append(ordered, f)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i].Source.MergeRank(), ordered[j].Source.MergeRank()
		if ri != rj {
			return ri > rj
		}
		return ordered[i].Source.Position < ordered[j].Source.Position
	})

	var profile model.MergedProfile
	phones := newDedupList()
	emails := newDedupList()
	painPoints := newDedupList()
	achievements := newDedupList()
	services := newDedupList()

	for _, f := range ordered {
		facts := f.Facts
		st := f.Source.SourceType

		// Owner name and title travel as a pair from one source.
		if profile.OwnerName == "" && facts.OwnerName != "" {
			profile.OwnerName = facts.OwnerName
			profile.OwnerTitle = facts.OwnerTitle
			profile.OwnerSource = st
		} else if profile.OwnerName != "" && facts.OwnerName != "" &&
			!strings.EqualFold(profile.OwnerName, facts.OwnerName) {
			zap.L().Info("merge: conflicting owner name, keeping higher-priority source",
				zap.String("kept", profile.OwnerName),
				zap.String("kept_source", string(profile.OwnerSource)),
				zap.String("discarded", facts.OwnerName),
				zap.String("discarded_source", string(st)),
			)
		}

		// A registry filing date beats any figure text-mined from copy.
		if facts.YearsInBusiness > 0 {
			if profile.YearsInBusiness == 0 ||
				(st == model.SourceRegistry && profile.YearsSource != model.SourceRegistry) {
				profile.YearsInBusiness = facts.YearsInBusiness
				profile.YearsSource = st
			}
		}

		if profile.Website == "" && facts.Website != "" {
			profile.Website = facts.Website
		}

		phones.addAll(facts.Contacts.Phones)
		emails.addAll(facts.Contacts.Emails)
		painPoints.addAll(facts.PainPoints)
		achievements.addAll(facts.Achievements)
		services.addAll(facts.Services)

		for platform, link := range facts.SocialLinks {
			if profile.SocialLinks == nil {
				profile.SocialLinks = make(map[string]string)
			}
			if _, exists := profile.SocialLinks[platform]; !exists {
				profile.SocialLinks[platform] = link
			}
		}

		profile.SourcesUsed = append(profile.SourcesUsed, f.Source.URL)
	}

	// A successfully fetched official page is itself the website when no
	// source stated one explicitly.
	if profile.Website == "" {
		for _, f := range ordered {
			if f.Source.SourceType == model.SourceOfficial {
				profile.Website = f.Source.URL
				break
			}
		}
	}

	profile.Phones = phones.items
	profile.Emails = emails.items
	profile.PainPoints = painPoints.items
	profile.Achievements = achievements.items
	profile.Services = services.items
	return profile
}

// dedupList keeps first-appearance order while deduplicating
// case-insensitively.
type dedupList struct {
	items []string
	seen  map[string]bool
}

func newDedupList() *dedupList {
	return &dedupList{seen: make(map[string]bool)}
}

func (d *dedupList) addAll(values []string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if d.seen[key] {
			continue
		}
		d.seen[key] = true
		d.items = append(d.items, v)
	}
}
