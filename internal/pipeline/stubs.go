package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lotleads/enrich-cli/pkg/anthropic"
	"github.com/lotleads/enrich-cli/pkg/firecrawl"
	"github.com/lotleads/enrich-cli/pkg/jina"
	"github.com/lotleads/enrich-cli/pkg/serper"
)

// Compile-time interface checks.
var (
	_ anthropic.Client = (*StubAnthropicClient)(nil)
	_ jina.Client      = (*StubJinaClient)(nil)
	_ serper.Client    = (*StubSerperClient)(nil)
	_ firecrawl.Client = (*StubFirecrawlClient)(nil)
)

// StubSerperClient returns a canned result set resembling a real dealership
// search. Used in offline mode and tests.
type StubSerperClient struct {
	Calls int
}

func (s *StubSerperClient) Search(_ context.Context, req serper.SearchRequest) (*serper.SearchResponse, error) {
	s.Calls++

	// Only the first query returns the full spread; the rest return nothing
	// new, mimicking overlapping real results.
	if s.Calls > 1 {
		return &serper.SearchResponse{}, nil
	}

	return &serper.SearchResponse{
		Organic: []serper.OrganicResult{
			{
				Title:    "Sunrise Auto Sales | Used Cars Tampa FL",
				Link:     "https://www.sunriseautosales.com/",
				Snippet:  "Family-owned used car dealership serving Tampa since 2003.",
				Position: 1,
			},
			{
				Title:    "SUNRISE AUTO SALES LLC - Detail by Entity Name",
				Link:     "https://search.sunbiz.org/Inquiry/CorporationSearch/Detail/12345",
				Snippet:  "Florida Limited Liability Company. Date Filed: 04/15/2003.",
				Position: 2,
			},
			{
				Title:    "Sunrise Auto Sales - Facebook",
				Link:     "https://www.facebook.com/sunriseautofl",
				Snippet:  "Sunrise Auto Sales, Tampa. New arrivals every week.",
				Position: 3,
			},
			{
				Title:    "Sunrise Auto Sales - Tampa - Yelp",
				Link:     "https://www.yelp.com/biz/sunrise-auto-sales-tampa",
				Snippet:  "47 reviews of Sunrise Auto Sales. Honest dealer, fair prices.",
				Position: 4,
			},
			{
				Title:    "Local dealership celebrates 20 years in business",
				Link:     "https://www.tampabaynews.com/business/sunrise-auto-20-years",
				Snippet:  "Sunrise Auto Sales announced an expansion to a second lot in 2024.",
				Position: 5,
			},
		},
		KnowledgeGraph: &serper.KnowledgeGraph{
			Title:       "Sunrise Auto Sales",
			Type:        "Used car dealer",
			Website:     "https://www.sunriseautosales.com",
			Description: "Used car dealer in Tampa, Florida",
		},
	}, nil
}

func (s *StubSerperClient) Places(_ context.Context, req serper.SearchRequest) (*serper.PlacesResponse, error) {
	return &serper.PlacesResponse{
		Places: []serper.Place{
			{
				Title:    "Sunrise Auto Sales",
				Address:  "4210 N Florida Ave, Tampa, FL 33603",
				Phone:    "(813) 555-0100",
				Website:  "https://www.sunriseautosales.com",
				Rating:   4.6,
				Reviews:  47,
				Category: "Used car dealer",
			},
		},
	}, nil
}

// StubJinaClient serves canned page content keyed by URL.
type StubJinaClient struct {
	ReadCalls int
}

func (s *StubJinaClient) Read(_ context.Context, targetURL string) (*jina.ReadResponse, error) {
	s.ReadCalls++
	return &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{
			URL:     targetURL,
			Title:   "Stubbed page",
			Content: stubContentFor(targetURL),
			Usage:   jina.ReadUsage{Tokens: 350},
		},
	}, nil
}

func (s *StubJinaClient) Search(_ context.Context, query string, _ ...jina.SearchOption) (*jina.SearchResponse, error) {
	return &jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{
				Title:       "Sunrise Auto Sales | Used Cars Tampa FL",
				URL:         "https://www.sunriseautosales.com/",
				Description: "Family-owned used car dealership serving Tampa since 2003.",
			},
			{
				Title:       "SUNRISE AUTO SALES LLC - Detail by Entity Name",
				URL:         "https://search.sunbiz.org/Inquiry/CorporationSearch/Detail/12345",
				Description: "Florida Limited Liability Company",
			},
		},
	}, nil
}

// StubFirecrawlClient mirrors StubJinaClient for the firecrawl backend.
type StubFirecrawlClient struct {
	ScrapeCalls int
}

func (s *StubFirecrawlClient) Scrape(_ context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	s.ScrapeCalls++
	return &firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			URL:      req.URL,
			Markdown: stubContentFor(req.URL),
			Metadata: firecrawl.Metadata{Title: "Stubbed page", SourceURL: req.URL, StatusCode: 200},
		},
	}, nil
}

func stubContentFor(url string) string {
	switch {
	case strings.Contains(url, "sunbiz.org"):
		return stubRegistryHTML
	case strings.Contains(url, "facebook.com"):
		return stubSocialMarkdown
	case strings.Contains(url, "yelp.com"):
		return stubReviewMarkdown
	case strings.Contains(url, "news"):
		return stubNewsMarkdown
	default:
		return stubHomepageMarkdown
	}
}

var errStubGeneration = eris.New("stub: generation disabled")

// StubAnthropicClient returns canned generation output in the line format
// the pipeline parses.
type StubAnthropicClient struct {
	Calls int
	// Fail makes every call return an error, exercising the fallback path.
	Fail bool
}

func (s *StubAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.Calls++
	if s.Fail {
		return nil, errStubGeneration
	}
	return &anthropic.MessageResponse{
		ID:    "msg_stub_01",
		Model: req.Model,
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: stubGenerationResponse},
		},
		StopReason: "end_turn",
		Usage: anthropic.TokenUsage{
			InputTokens:  1200,
			OutputTokens: 380,
		},
	}, nil
}

const stubHomepageMarkdown = `# Sunrise Auto Sales

Family-owned dealership serving Tampa since 2003. Mike Rivera, Owner, built
the lot from five cars into one of the area's most trusted independents.

## What We Offer

We offer used car sales, financing for all credit situations, trade-in
appraisals, and a full service department.

## Visit Us

4210 N Florida Ave, Tampa, FL 33603
Call (813) 555-0100 or email sales@sunriseautosales.com
Follow us: https://www.facebook.com/sunriseautofl`

const stubRegistryHTML = `<div class="detailSection corporationName">
<p>Florida Limited Liability Company</p><p>SUNRISE AUTO SALES LLC</p></div>
<div class="detailSection filingInformation"><span>Filing Information</span>
<span>Date Filed: 04/15/2003</span><span>Status: ACTIVE</span></div>
<div class="detailSection"><span>Authorized Person(s) Detail</span>
<span>Title</span> <span>MGRM</span>
<span>RIVERA, MIKE</span>
<span>4210 N FLORIDA AVE, TAMPA, FL 33603</span></div>`

const stubSocialMarkdown = `Sunrise Auto Sales - Tampa

Our team celebrated 20 years of serving the Tampa community this spring.
Thanks to everyone who came out to the anniversary event. We volunteer with
the Hillsborough youth sports league every season.`

const stubReviewMarkdown = `Sunrise Auto Sales - 47 Reviews - Tampa, FL

"Honest dealer, fair prices. Mike found me a truck within my budget."
"The financing process was painless even with my credit issues."
"Best independent lot in Tampa, hands down."`

const stubNewsMarkdown = `Local dealership celebrates 20 years in business

Sunrise Auto Sales announced an expansion to a second lot on the north side
in 2024. The dealership was recognized by the Tampa Chamber of Commerce as a
top small business.`

const stubGenerationResponse = `SUBJECT_1: 22 years strong - time for a website to match?
SUBJECT_2: Mike, about Sunrise Auto's next 20 years
SUBJECT_3: Tampa's most trusted lot deserves better leads

OPENING_1: Congratulations on two decades of Sunrise Auto Sales - not many independent lots make it that far in Tampa.
OPENING_2: I saw the Chamber of Commerce recognition and had to reach out.
OPENING_3: Your expansion to a second lot caught my attention.

VALUE_1: We help established dealerships turn their reputation into a steady stream of online leads.
VALUE_2: Your reviews already sell for you; your website should too.
VALUE_3: Independent lots we work with see more qualified financing applications within 90 days.

ICEBREAKER_1: Your anniversary event and the youth sports sponsorship say a lot about how you run the business.
ICEBREAKER_2: Forty-seven reviews calling you the honest dealer in Tampa is rare.

HOTBUTTON_1: Competing with the big-box used car chains for online visibility.
HOTBUTTON_2: Turning word-of-mouth trust into web traffic before the second lot opens.

CTA_1: Worth a 15-minute call next week to see what your current site is leaving on the table?
CTA_2: Can I send over a two-page teardown of your website's lead flow?`
