package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// letterMaxLines caps the per-AWB detail section so letters for very large
// batches stay readable; the totals always cover every finding.
const letterMaxLines = 25

// DisputeLetter drafts a plain-text claim letter for a batch, listing the
// largest findings and the total amount under dispute.
func DisputeLetter(batch *domain.Batch, findings []domain.Discrepancy, provider string) string {
	if provider == "" {
		provider = "Unknown"
	}

	var total float64
	for i := range findings {
		total += findings[i].OverchargeAmount
	}

	sorted := make([]domain.Discrepancy, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OverchargeAmount > sorted[j].OverchargeAmount
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().Format("02 January 2006"))
	fmt.Fprintf(&b, "To,\nThe Billing Department\n%s\n\n", provider)
	fmt.Fprintf(&b, "Subject: Billing discrepancy claim for invoice batch #%d\n\n", batch.ID)
	b.WriteString("Dear Sir/Madam,\n\n")
	fmt.Fprintf(&b,
		"On auditing invoice batch #%d (%d shipments), we identified %d billing discrepancies totalling INR %.2f. The significant items are listed below.\n\n",
		batch.ID, batch.TotalInvoices, len(findings), total,
	)

	b.WriteString("AWB Number        Check                       Overcharge (INR)\n")
	b.WriteString("----------------------------------------------------------------\n")
	for i := range sorted {
		if i >= letterMaxLines {
			fmt.Fprintf(&b, "... and %d further items (see attached discrepancy report).\n", len(sorted)-letterMaxLines)
			break
		}
		d := &sorted[i]
		fmt.Fprintf(&b, "%-17s %-27s %15.2f\n", d.AWBNumber, d.CheckType, d.OverchargeAmount)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "We request a credit note or adjustment of INR %.2f against our next invoice. ", total)
	b.WriteString("The full discrepancy report with expected values per our rate contract is attached. Kindly acknowledge within 7 working days.\n\n")
	b.WriteString("Yours faithfully,\nAccounts Payable\n")
	return b.String()
}
