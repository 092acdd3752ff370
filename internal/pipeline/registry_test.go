package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const sunbizDetailHTML = `<!DOCTYPE html>
<html>
<body>
<div class="detailSection corporationName">
  <p>Florida Limited Liability Company</p>
  <p>SUNRISE AUTO SALES LLC</p>
</div>
<div class="detailSection filingInformation">
  <span>Filing Information</span>
  <div>
    <label>Document Number</label><span>L03000012345</span>
    <label>Date Filed</label><span>Date Filed: 04/15/2003</span>
    <label>State</label><span>FL</span>
    <label>Status</label><span>ACTIVE</span>
  </div>
</div>
<div class="detailSection">
  <span>Authorized Person(s) Detail</span>
  <span>Name &amp; Address</span>
  <span>Title</span> <span>MGRM</span>
  <span>RIVERA, MIKE JR</span>
  <span>123 MAIN ST, TAMPA, FL 33601</span>
  <span>Title</span> <span>VP</span>
  <span>SMITH, JANE A</span>
  <span>456 OAK AVE, TAMPA, FL 33602</span>
</div>
</body>
</html>`

func fixedRegistryParser() *RegistryParser {
	p := NewRegistryParser()
	p.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestRegistryParse_SunbizOwner(t *testing.T) {
	got := fixedRegistryParser().Parse(sunbizDetailHTML)

	assert.Equal(t, "Mike Rivera", got.OwnerName)
	assert.Equal(t, "Managing Member", got.OwnerTitle)
}

func TestRegistryParse_FilingDateYears(t *testing.T) {
	got := fixedRegistryParser().Parse(sunbizDetailHTML)
	assert.Equal(t, 22, got.YearsInBusiness)
}

func TestRegistryParse_SkipsNonPrimaryOfficers(t *testing.T) {
	html := `<div class="detailSection">
	  <span>Officer/Director Detail</span>
	  <span>Title</span> <span>S</span>
	  <span>JONES, PAT</span>
	  <span>Title</span> <span>P</span>
	  <span>DOE, JANE</span>
	</div>`

	got := fixedRegistryParser().Parse(html)
	assert.Equal(t, "Jane Doe", got.OwnerName)
	assert.Equal(t, "President", got.OwnerTitle)
}

func TestRegistryParse_GenericTitleNameText(t *testing.T) {
	html := `<html><body>
	<p>Registered Agent information follows.</p>
	<p>Title PRESIDENT Name DOE, JOHN</p>
	</body></html>`

	got := fixedRegistryParser().Parse(html)
	assert.Equal(t, "John Doe", got.OwnerName)
	assert.Equal(t, "President", got.OwnerTitle)
}

func TestRegistryParse_NoOfficers(t *testing.T) {
	got := fixedRegistryParser().Parse("<html><body><p>No detail here</p></body></html>")
	assert.True(t, got.IsEmpty())
}

func TestRegistryParse_EmptyInput(t *testing.T) {
	got := fixedRegistryParser().Parse("")
	assert.True(t, got.IsEmpty())
}

func TestNormalizeName(t *testing.T) {
	p := fixedRegistryParser()

	assert.Equal(t, "Mike Rivera", p.normalizeName("RIVERA, MIKE"))
	assert.Equal(t, "Mike Rivera", p.normalizeName("RIVERA, MIKE JR"))
	assert.Equal(t, "Jane A Smith", p.normalizeName("SMITH, JANE A"))
	assert.Equal(t, "John Doe", p.normalizeName("JOHN DOE"))

	// Mixed-case names pass through untouched.
	assert.Equal(t, "Mike Rivera", p.normalizeName("Mike Rivera"))
	assert.Equal(t, "", p.normalizeName("  "))
}

func TestExpandTitle(t *testing.T) {
	assert.Equal(t, "PRESIDENT", expandTitle("P"))
	assert.Equal(t, "MANAGING MEMBER", expandTitle("AMBR"))
	assert.Equal(t, "VICE PRESIDENT", expandTitle("vp"))
	assert.Equal(t, "OWNER", expandTitle("Owner"))
}

func TestIsPrimaryTitle(t *testing.T) {
	assert.True(t, isPrimaryTitle("PRESIDENT"))
	assert.True(t, isPrimaryTitle("MANAGING MEMBER"))
	assert.False(t, isPrimaryTitle("SECRETARY"))
	assert.False(t, isPrimaryTitle("VICE PRESIDENT"))
}
