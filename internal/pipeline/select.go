package pipeline

import (
	"sort"

	"github.com/lotleads/enrich-cli/internal/model"
)

// groupSpec is one slot of the diversity rotation: a set of source types and
// how many candidates to draw from it per pass.
type groupSpec struct {
	types []model.SourceType
	count int
}

// Diversity rotation order. Official and registry sources are picked first;
// social and review sources get two slots per pass because they tend to be
// plentiful and individually weak.
var selectionGroups = []groupSpec{
	{types: []model.SourceType{model.SourceOfficial}, count: 1},
	{types: []model.SourceType{model.SourceRegistry}, count: 1},
	{types: []model.SourceType{model.SourceSocial}, count: 2},
	{types: []model.SourceType{model.SourceReview}, count: 2},
	{types: []model.SourceType{model.SourceNews}, count: 1},
	{types: []model.SourceType{model.SourceDirectory}, count: 1},
}

// SelectSources picks at most maxFetch candidates to actually fetch,
// balancing relevance against source-type diversity. Irrelevant and
// competitor sources are never selected. The top-scoring official source, if
// any, is always included. Output is deterministic: candidates are ordered by
// score descending with discovery order breaking ties, and no URL appears
// twice.
func SelectSources(candidates []model.CandidateSource, maxFetch int) []model.CandidateSource {
	if maxFetch <= 0 {
		return nil
	}

	eligible := make([]model.CandidateSource, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.SourceType == model.SourceIrrelevant || c.SourceType == model.SourceCompetitor {
			continue
		}
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].RelevanceScore != eligible[j].RelevanceScore {
			return eligible[i].RelevanceScore > eligible[j].RelevanceScore
		}
		return eligible[i].Position < eligible[j].Position
	})

	if len(eligible) <= maxFetch {
		return eligible
	}

	selected := make([]model.CandidateSource, 0, maxFetch)
	taken := make(map[string]bool, maxFetch)

	take := func(c model.CandidateSource) {
		selected = append(selected, c)
		taken[c.URL] = true
	}

	// Rotate through the diversity groups until the budget is spent or no
	// group can contribute another candidate.
	for len(selected) < maxFetch {
		progress := false
		for _, g := range selectionGroups {
			picked := 0
			for _, c := range eligible {
				if len(selected) >= maxFetch || picked >= g.count {
					break
				}
				if taken[c.URL] || !matchesGroup(c, g) {
					continue
				}
				take(c)
				picked++
				progress = true
			}
			if len(selected) >= maxFetch {
				break
			}
		}
		if !progress {
			break
		}
	}

	// Spend any remaining budget on the best leftovers regardless of type.
	for _, c := range eligible {
		if len(selected) >= maxFetch {
			break
		}
		if !taken[c.URL] {
			take(c)
		}
	}

	// The top official source survives diversity filtering unconditionally.
	if top, ok := topOfficial(eligible); ok && !taken[top.URL] {
		if len(selected) < maxFetch {
			selected = append(selected, top)
		} else {
			selected[len(selected)-1] = top
		}
	}

	return selected
}

func matchesGroup(c model.CandidateSource, g groupSpec) bool {
	for _, t := range g.types {
		if c.SourceType == t {
			return true
		}
	}
	return false
}

func topOfficial(sorted []model.CandidateSource) (model.CandidateSource, bool) {
	for _, c := range sorted {
		if c.SourceType == model.SourceOfficial {
			return c, true
		}
	}
	return model.CandidateSource{}, false
}
