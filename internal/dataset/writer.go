package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/lotleads/enrich-cli/internal/model"
)

// enrichmentHeaders are the columns appended to the input grid on output.
// Input columns are never overwritten.
var enrichmentHeaders = []string{
	"Website",
	"Owner First Name",
	"Owner Last Name",
	"Owner Email",
	"Owner Phone",
	"Email Subject",
	"Email Icebreaker",
	"Hot Button",
	"Confidence",
	"Enrichment Status",
}

func enrichmentCells(result *model.EnrichmentResult) []string {
	if result == nil {
		return make([]string, len(enrichmentHeaders))
	}

	var ownerEmail, ownerPhone string
	if len(result.Profile.Emails) > 0 {
		ownerEmail = result.Profile.Emails[0]
	}
	if len(result.Profile.Phones) > 0 {
		ownerPhone = result.Profile.Phones[0]
	}

	return []string{
		result.Profile.Website,
		result.Profile.OwnerFirstName(),
		result.Profile.OwnerLastName(),
		ownerEmail,
		ownerPhone,
		result.Content.Subject,
		result.Content.Icebreaker,
		result.Content.HotButton,
		formatConfidence(result.Confidence),
		string(result.Status),
	}
}

func formatConfidence(c float64) string {
	if c == 0 {
		return ""
	}
	return strconv.FormatFloat(c, 'f', 2, 64)
}

// WriteCSV writes the dataset with enrichment columns appended, one output
// row per input row in the original order.
func WriteCSV(path string, ds *Dataset, results map[string]*model.EnrichmentResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append(append([]string{}, ds.Headers...), enrichmentHeaders...)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}

	for i, row := range ds.Rows {
		var result *model.EnrichmentResult
		if i < len(ds.Records) {
			result = results[ds.Records[i].ID]
		}

		out := append(append([]string{}, row...), enrichmentCells(result)...)
		if err := w.Write(out); err != nil {
			return eris.Wrapf(err, "dataset: write row %d", i)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "dataset: flush")
}
