package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lotleads/enrich-cli/internal/model"
)

func fixedClassifier(focus string) *Classifier {
	c := NewClassifier(focus)
	c.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestClassify_Registry(t *testing.T) {
	c := fixedClassifier("recent_activity")

	cand := c.Classify(
		"https://search.sunbiz.org/Inquiry/CorporationSearch/SearchResultDetail?id=P200000012345",
		"SUNRISE AUTO SALES LLC - Detail by Entity Name",
		"Florida Limited Liability Company",
		"Sunrise Auto Sales", 0,
	)

	assert.Equal(t, model.SourceRegistry, cand.SourceType)
	assert.GreaterOrEqual(t, cand.RelevanceScore, 10.0)
}

func TestClassify_RegistryBeatsOfficialHeuristic(t *testing.T) {
	c := fixedClassifier("")

	// Domain contains company tokens but is a known registry.
	cand := c.Classify(
		"https://www.bizapedia.com/fl/sunrise-auto-sales-llc.html",
		"Sunrise Auto Sales LLC in Tampa FL",
		"Company profile",
		"Sunrise Auto Sales", 0,
	)

	assert.Equal(t, model.SourceRegistry, cand.SourceType)
}

func TestClassify_OfficialTwoDomainTokens(t *testing.T) {
	c := fixedClassifier("")

	cand := c.Classify(
		"https://www.sunriseautosales.com/inventory",
		"Used Cars Tampa FL",
		"Browse our inventory",
		"Sunrise Auto Sales", 1,
	)

	assert.Equal(t, model.SourceOfficial, cand.SourceType)
}

func TestClassify_OfficialOneDomainTokenPlusTitle(t *testing.T) {
	c := fixedClassifier("")

	cand := c.Classify(
		"https://www.sunrisecars.net/",
		"Sunrise Auto Sales | Home",
		"Welcome",
		"Sunrise Auto Sales", 0,
	)

	assert.Equal(t, model.SourceOfficial, cand.SourceType)
}

func TestClassify_ShortTokensIgnored(t *testing.T) {
	c := fixedClassifier("")

	// "Bob" and "Car" are too short to count as matches; "Lot" too.
	cand := c.Classify(
		"https://www.bobcarlot.com/",
		"Some unrelated page",
		"",
		"Bob Car Lot", 0,
	)

	assert.NotEqual(t, model.SourceOfficial, cand.SourceType)
}

func TestClassify_SocialPlatforms(t *testing.T) {
	c := fixedClassifier("")

	li := c.Classify("https://www.linkedin.com/company/sunrise-auto-sales", "Sunrise Auto Sales | LinkedIn", "", "Sunrise Auto Sales", 0)
	assert.Equal(t, model.SourceSocial, li.SourceType)
	assert.Equal(t, "linkedin", li.Platform)

	fb := c.Classify("https://www.facebook.com/sunriseautofl", "Sunrise Auto Sales - Facebook", "", "Sunrise Auto Sales", 1)
	assert.Equal(t, model.SourceSocial, fb.SourceType)
	assert.Equal(t, "facebook", fb.Platform)

	// LinkedIn outranks other social platforms.
	assert.Greater(t, li.RelevanceScore, fb.RelevanceScore)
}

func TestClassify_ReviewAndDirectory(t *testing.T) {
	c := fixedClassifier("")

	yelp := c.Classify("https://www.yelp.com/biz/sunrise-auto-sales-tampa", "Sunrise Auto Sales - Yelp", "", "Sunrise Auto Sales", 0)
	assert.Equal(t, model.SourceReview, yelp.SourceType)

	yp := c.Classify("https://www.yellowpages.com/tampa-fl/mip/sunrise-auto-sales", "Sunrise Auto Sales", "", "Sunrise Auto Sales", 1)
	assert.Equal(t, model.SourceDirectory, yp.SourceType)

	// Aggregator penalty keeps directories below reviews.
	assert.Greater(t, yelp.RelevanceScore, yp.RelevanceScore)
}

func TestClassify_News(t *testing.T) {
	c := fixedClassifier("")

	cand := c.Classify(
		"https://www.tampabaytimes.com/business/dealership-expands",
		"Local dealership expands to second location",
		"Sunrise Auto Sales announced a new lot",
		"Sunrise Auto Sales", 0,
	)

	assert.Equal(t, model.SourceNews, cand.SourceType)
}

func TestClassify_Irrelevant(t *testing.T) {
	c := fixedClassifier("")

	cand := c.Classify("https://www.example.org/random", "Totally unrelated", "", "Sunrise Auto Sales", 0)
	assert.Equal(t, model.SourceIrrelevant, cand.SourceType)

	bad := c.Classify("not a url", "x", "", "Sunrise Auto Sales", 1)
	assert.Equal(t, model.SourceIrrelevant, bad.SourceType)
}

func TestClassify_CompanyTokenBonus(t *testing.T) {
	c := fixedClassifier("")

	with := c.Classify("https://www.yelp.com/biz/a", "Sunrise Auto Sales reviews", "sunrise auto sales tampa", "Sunrise Auto Sales", 0)
	without := c.Classify("https://www.yelp.com/biz/b", "Car dealer reviews", "a dealer", "Sunrise Auto Sales", 1)

	assert.Greater(t, with.RelevanceScore, without.RelevanceScore)
}

func TestClassify_CampaignFocusBonus(t *testing.T) {
	focused := fixedClassifier("achievements")
	unfocused := fixedClassifier("recent_activity")

	url := "https://www.tampagazette.com/a"
	title := "Dealership recognized as best of Tampa"

	a := focused.Classify(url, title, "", "Sunrise Auto Sales", 0)
	b := unfocused.Classify(url, title, "", "Sunrise Auto Sales", 0)

	assert.Greater(t, a.RelevanceScore, b.RelevanceScore)
}

func TestClassify_RecencyBonus(t *testing.T) {
	c := fixedClassifier("")

	recent := c.Classify("https://www.tampagazette.com/a", "Dealership update 2025", "", "Sunrise Auto Sales", 0)
	stale := c.Classify("https://www.tampagazette.com/b", "Dealership update 2019", "", "Sunrise Auto Sales", 1)

	assert.Greater(t, recent.RelevanceScore, stale.RelevanceScore)
}

func TestCompanyTokens(t *testing.T) {
	assert.Equal(t, []string{"sunrise", "auto", "sales"}, companyTokens("Sunrise Auto Sales LLC."))

	// Short words dropped entirely.
	assert.Empty(t, companyTokens("A B C Co"))
}
