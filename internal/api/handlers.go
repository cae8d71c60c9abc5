package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SrivathsanRaju/billcheck/internal/analytics"
	"github.com/SrivathsanRaju/billcheck/internal/domain"
	"github.com/SrivathsanRaju/billcheck/internal/export"
	"github.com/SrivathsanRaju/billcheck/internal/ingestion"
	"github.com/SrivathsanRaju/billcheck/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	batchRepo    *repository.BatchRepo
	invoiceRepo  *repository.InvoiceRepo
	discRepo     *repository.DiscrepancyRepo
	contractRepo *repository.ContractRepo
	alertRepo    *repository.AlertRepo
	ingestionSvc *ingestion.Service
	uploadDir    string
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// saveUpload writes one multipart file under uploadDir with a unique prefix
// so concurrent uploads of the same filename never collide.
func (h *Handlers) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(h.uploadDir, uuid.NewString()+"_"+filepath.Base(filename))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

// --- Upload ---

func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	invFile, invHeader, err := r.FormFile("invoice_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invoice_file field is required: "+err.Error())
		return
	}
	defer invFile.Close()

	// The contract comes either as a second file or as a saved contract id.
	// Resolve it before writing anything to disk so a rejected request
	// leaves no orphaned upload behind.
	var contractName string
	var savedContract *domain.Contract

	conFile, conHeader, conErr := r.FormFile("contract_file")
	switch {
	case conErr == nil:
		defer conFile.Close()
		contractName = conHeader.Filename
	case r.FormValue("saved_contract_id") != "":
		id, parseErr := strconv.ParseInt(r.FormValue("saved_contract_id"), 10, 64)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid saved_contract_id")
			return
		}
		sc, getErr := h.contractRepo.GetByID(id)
		if getErr != nil {
			writeError(w, http.StatusNotFound, "saved contract not found")
			return
		}
		contract := sc.Extracted
		if contract.Provider == "" {
			contract.Provider = sc.Provider
		}
		savedContract = &contract
		contractName = sc.Name
	default:
		writeError(w, http.StatusBadRequest, "either contract_file or saved_contract_id is required")
		return
	}

	invPath, err := h.saveUpload(invFile, invHeader.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var contractPath string
	if conFile != nil {
		contractPath, err = h.saveUpload(conFile, conHeader.Filename)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	batch := &domain.Batch{
		InvoiceFile:  invHeader.Filename,
		ContractFile: contractName,
		Status:       domain.BatchPending,
	}
	batchID, err := h.batchRepo.Create(batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go h.ingestionSvc.ProcessBatch(batchID, invPath, contractPath, savedContract)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id": batchID,
		"status":   domain.BatchPending,
	})
}

// --- Batches ---

func (h *Handlers) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batchRepo.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if batches == nil {
		batches = []domain.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *Handlers) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	batch, err := h.batchRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (h *Handlers) GetBatchReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	discs, err := h.discRepo.GetByBatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if discs == nil {
		discs = []domain.Discrepancy{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id":      id,
		"discrepancies": discs,
	})
}

func (h *Handlers) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	if err := h.batchRepo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// --- Downloads ---

func (h *Handlers) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	batch, err := h.batchRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	discs, err := h.discRepo.GetByBatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var content []byte
	var filename string
	switch dlType := chi.URLParam(r, "dlType"); dlType {
	case "discrepancy":
		content, err = export.DiscrepancyCSV(discs)
		filename = fmt.Sprintf("discrepancies_batch_%d.csv", id)
	case "summary":
		content, err = export.SummaryCSV(batch, discs)
		filename = fmt.Sprintf("summary_batch_%d.csv", id)
	case "payout":
		var invoices []domain.Invoice
		invoices, err = h.invoiceRepo.GetByBatch(id)
		if err == nil {
			content, err = export.PayoutCSV(invoices, discs)
		}
		filename = fmt.Sprintf("payout_batch_%d.csv", id)
	default:
		writeError(w, http.StatusBadRequest, "invalid download type "+strconv.Quote(dlType))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *Handlers) GetDisputeLetter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	batch, err := h.batchRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	discs, err := h.discRepo.GetByBatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	letter := export.DisputeLetter(batch, discs, batch.ProviderName)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("dispute_letter_batch_%d.txt", id)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, letter)
}

// --- Disputes ---

func (h *Handlers) ListBatchDisputes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	filter := repository.DiscrepancyFilter{
		BatchID:   id,
		CheckType: r.URL.Query().Get("check_type"),
		Severity:  r.URL.Query().Get("severity"),
		Status:    r.URL.Query().Get("status"),
	}
	discs, err := h.discRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if discs == nil {
		discs = []domain.Discrepancy{}
	}
	writeJSON(w, http.StatusOK, discs)
}

type disputeUpdate struct {
	DisputeStatus string `json:"dispute_status"`
	DisputeNotes  string `json:"dispute_notes"`
}

var validDisputeStatuses = map[domain.DisputeStatus]bool{
	domain.DisputePending:      true,
	domain.DisputeRaised:       true,
	domain.DisputeAcknowledged: true,
	domain.DisputeResolved:     true,
	domain.DisputeRejected:     true,
}

func (h *Handlers) UpdateDispute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid discrepancy id")
		return
	}

	var payload disputeUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	status := domain.DisputeStatus(strings.ToLower(payload.DisputeStatus))
	if !validDisputeStatuses[status] {
		writeError(w, http.StatusBadRequest, "invalid dispute_status "+strconv.Quote(payload.DisputeStatus))
		return
	}

	disc, err := h.discRepo.UpdateDispute(id, status, payload.DisputeNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "discrepancy not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, disc)
}

func (h *Handlers) BulkRaiseDisputes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	n, err := h.discRepo.RaisePending(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"raised": n})
}

// --- Analytics ---

func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batchRepo.ListCompleted()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	discs, err := h.discRepo.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics.Build(batches, discs))
}

// --- Saved contracts ---

func (h *Handlers) SaveContract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	name := r.FormValue("name")
	provider := r.FormValue("provider")
	if name == "" || provider == "" {
		writeError(w, http.StatusBadRequest, "name and provider are required")
		return
	}

	file, header, err := r.FormFile("contract_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "contract_file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	contract, err := ingestion.ParseContractCSV(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "parse contract: "+err.Error())
		return
	}
	if contract.Provider == "" {
		contract.Provider = provider
	}

	path, err := h.saveUpload(strings.NewReader(string(data)), header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	saved := &domain.SavedContract{
		Name:      name,
		Provider:  provider,
		FilePath:  path,
		Extracted: *contract,
	}
	if _, err := h.contractRepo.Save(saved); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handlers) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contracts == nil {
		contracts = []domain.SavedContract{}
	}
	writeJSON(w, http.StatusOK, contracts)
}

func (h *Handlers) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	if err := h.contractRepo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contract not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// --- Alerts ---

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handlers) AlertCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.alertRepo.UnreadCount()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handlers) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := h.alertRepo.MarkRead(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) MarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.alertRepo.MarkAllRead()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}
