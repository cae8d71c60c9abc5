package audit

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// Engine runs the registered check set over a batch of invoices against
// one contract. It does no I/O; loading the contract and persisting
// findings belong to the caller.
type Engine struct {
	tolerance float64
	workers   int
}

// NewEngine creates an engine with the given rupee tolerance. Pass 0 for
// the default (₹1).
func NewEngine(tolerance float64) *Engine {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return &Engine{tolerance: tolerance, workers: workers}
}

// Run audits every invoice and returns all findings in input order.
//
// Duplicate detection needs the ordered pass: the first occurrence of an
// AWB is the original, later occurrences are the duplicates. All other
// checks are pure and order-independent, so they run on a bounded worker
// pool and are joined back in input order. A panic inside one check skips
// that check for that invoice only; the batch always completes.
func (e *Engine) Run(contract *domain.Contract, invoices []domain.Invoice) ([]domain.Discrepancy, error) {
	if contract == nil {
		return nil, errors.New("audit: nil contract")
	}
	if len(invoices) == 0 {
		return nil, errors.New("audit: batch has no invoices")
	}

	// Ordered pre-pass over the batch for duplicate AWBs.
	duplicates := make([]*domain.Discrepancy, len(invoices))
	firstSeen := make(map[string]int, len(invoices))
	for i := range invoices {
		awb := invoices[i].AWBNumber
		if first, ok := firstSeen[awb]; ok {
			duplicates[i] = duplicateFinding(&invoices[i], first)
		} else {
			firstSeen[awb] = i
		}
	}

	// Parallel map: the rest of the check set, per invoice.
	perInvoice := make([][]domain.Discrepancy, len(invoices))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range invoices {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			perInvoice[i] = e.auditInvoice(contract, &invoices[i])
		}(i)
	}
	wg.Wait()

	var findings []domain.Discrepancy
	for i := range invoices {
		if d := duplicates[i]; d != nil {
			findings = append(findings, *d)
		}
		findings = append(findings, perInvoice[i]...)
	}

	log.Printf("[audit] Batch audited: %d invoices, %d findings", len(invoices), len(findings))
	return findings, nil
}

func (e *Engine) auditInvoice(c *domain.Contract, inv *domain.Invoice) []domain.Discrepancy {
	var found []domain.Discrepancy
	for _, check := range Checks {
		if d := e.runCheck(check, inv, c); d != nil {
			d.AWBNumber = inv.AWBNumber
			found = append(found, *d)
		}
	}
	return found
}

// runCheck recovers a panicking check so one bad row cannot abort the batch.
func (e *Engine) runCheck(check CheckFunc, inv *domain.Invoice, c *domain.Contract) (d *domain.Discrepancy) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[audit] WARNING: check panicked on AWB %s: %v", inv.AWBNumber, r)
			d = nil
		}
	}()
	return check(inv, c, e.tolerance)
}

func duplicateFinding(inv *domain.Invoice, firstIndex int) *domain.Discrepancy {
	return &domain.Discrepancy{
		AWBNumber: inv.AWBNumber,
		CheckType: domain.CheckDuplicateShipment,
		Severity:  domain.SeverityCritical,
		Description: fmt.Sprintf(
			"AWB %s billed more than once (first seen at row %d)",
			inv.AWBNumber, firstIndex+1,
		),
		BilledValue:      f64(inv.TotalBilled),
		ExpectedValue:    f64(0),
		OverchargeAmount: round2(inv.TotalBilled),
		ConfidenceScore:  1.0,
		ConfidenceReason: "Exact AWB match, definitive duplicate billing.",
	}
}
