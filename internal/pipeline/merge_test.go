package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lotleads/enrich-cli/internal/model"
)

func fetchedWith(st model.SourceType, pos int, facts model.PartialProfile) model.FetchedContent {
	return model.FetchedContent{
		Source:    model.CandidateSource{URL: "https://" + string(st) + ".example.com", SourceType: st, Position: pos},
		RawText:   "text",
		Facts:     facts,
		Succeeded: true,
	}
}

func TestMerge_RegistryBeatsOfficialForOwner(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{OwnerName: "J. Doe", OwnerTitle: "Owner"}),
		fetchedWith(model.SourceRegistry, 1, model.PartialProfile{OwnerName: "Jane Doe", OwnerTitle: "President"}),
	}

	got := Merge(fetched)
	assert.Equal(t, "Jane Doe", got.OwnerName)
	assert.Equal(t, "President", got.OwnerTitle)
	assert.Equal(t, model.SourceRegistry, got.OwnerSource)
}

func TestMerge_NameAndTitleNeverMixed(t *testing.T) {
	// The registry source knows the name but not the title; the official
	// source knows both. The registry pair wins whole, so the title stays
	// empty rather than borrowing from the official page.
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceRegistry, 0, model.PartialProfile{OwnerName: "Mike Rivera"}),
		fetchedWith(model.SourceOfficial, 1, model.PartialProfile{OwnerName: "Michael Rivera", OwnerTitle: "General Manager"}),
	}

	got := Merge(fetched)
	assert.Equal(t, "Mike Rivera", got.OwnerName)
	assert.Empty(t, got.OwnerTitle)
}

func TestMerge_TitleNeverWithoutName(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{OwnerTitle: "President", Services: []string{"used cars"}}),
	}

	got := Merge(fetched)
	assert.Empty(t, got.OwnerName)
	assert.Empty(t, got.OwnerTitle)
}

func TestMerge_EqualPriorityFirstInputWins(t *testing.T) {
	a := fetchedWith(model.SourceOfficial, 0, model.PartialProfile{OwnerName: "Alice Smith", OwnerTitle: "Owner"})
	b := fetchedWith(model.SourceOfficial, 1, model.PartialProfile{OwnerName: "Bob Jones", OwnerTitle: "Owner"})
	b.Source.URL = "https://official2.example.com"

	got := Merge([]model.FetchedContent{a, b})
	assert.Equal(t, "Alice Smith", got.OwnerName)
}

func TestMerge_OrderIndependent(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceRegistry, 0, model.PartialProfile{OwnerName: "Jane Doe", OwnerTitle: "President", YearsInBusiness: 15}),
		fetchedWith(model.SourceOfficial, 1, model.PartialProfile{OwnerName: "J. Doe", OwnerTitle: "Owner", Services: []string{"Used Cars", "Financing"}}),
		fetchedWith(model.SourceSocial, 2, model.PartialProfile{Contacts: model.Contacts{Phones: []string{"(813) 555-0100"}}}),
		fetchedWith(model.SourceNews, 3, model.PartialProfile{Achievements: []string{"Best of Tampa 2024"}}),
	}

	want := Merge(fetched)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.FetchedContent, len(fetched))
		copy(shuffled, fetched)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Merge(shuffled))
	}
}

func TestMerge_RegistryYearsBeatTextMined(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{YearsInBusiness: 30}),
		fetchedWith(model.SourceRegistry, 1, model.PartialProfile{YearsInBusiness: 22}),
	}

	got := Merge(fetched)
	assert.Equal(t, 22, got.YearsInBusiness)
	assert.Equal(t, model.SourceRegistry, got.YearsSource)
}

func TestMerge_ListsUnionedCaseInsensitively(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{Services: []string{"Used Cars", "Financing"}}),
		fetchedWith(model.SourceReview, 1, model.PartialProfile{Services: []string{"used cars", "Detailing"}}),
	}

	got := Merge(fetched)
	assert.Equal(t, []string{"Used Cars", "Financing", "Detailing"}, got.Services)
}

func TestMerge_ListsOrderedBySourcePriority(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceNews, 0, model.PartialProfile{PainPoints: []string{"from news"}}),
		fetchedWith(model.SourceRegistry, 1, model.PartialProfile{PainPoints: []string{"from registry"}}),
	}

	got := Merge(fetched)
	assert.Equal(t, []string{"from registry", "from news"}, got.PainPoints)
}

func TestMerge_FailedFetchesContributeNothing(t *testing.T) {
	failed := fetchedWith(model.SourceRegistry, 0, model.PartialProfile{OwnerName: "Ghost Owner"})
	failed.Succeeded = false
	ok := fetchedWith(model.SourceOfficial, 1, model.PartialProfile{OwnerName: "Real Owner", OwnerTitle: "Owner"})

	got := Merge([]model.FetchedContent{failed, ok})
	assert.Equal(t, "Real Owner", got.OwnerName)
	assert.NotContains(t, got.SourcesUsed, failed.Source.URL)
}

func TestMerge_SocialLinksFirstWins(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{SocialLinks: map[string]string{"facebook": "https://facebook.com/official"}}),
		fetchedWith(model.SourceReview, 1, model.PartialProfile{SocialLinks: map[string]string{"facebook": "https://facebook.com/other", "instagram": "https://instagram.com/x"}}),
	}

	got := Merge(fetched)
	assert.Equal(t, "https://facebook.com/official", got.SocialLinks["facebook"])
	assert.Equal(t, "https://instagram.com/x", got.SocialLinks["instagram"])
}

func TestMerge_WebsiteFallsBackToOfficialURL(t *testing.T) {
	fetched := []model.FetchedContent{
		fetchedWith(model.SourceOfficial, 0, model.PartialProfile{OwnerName: "A B", OwnerTitle: "Owner"}),
	}

	got := Merge(fetched)
	assert.Equal(t, "https://official.example.com", got.Website)
}

func TestMerge_Empty(t *testing.T) {
	assert.True(t, Merge(nil).IsEmpty())
	assert.True(t, Merge([]model.FetchedContent{}).IsEmpty())
}
