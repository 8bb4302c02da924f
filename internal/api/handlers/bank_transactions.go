package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/dto"
	"github.com/eshaffer321/homebudget-guard/internal/application/records"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/ingest"
)

// MaxStatementSize caps uploaded statement files.
const MaxStatementSize = 10 << 20

// BankTransactionsHandler handles imported bank transactions.
type BankTransactionsHandler struct {
	*Base
	records *records.Service
}

// NewBankTransactionsHandler creates a new bank transactions handler.
func NewBankTransactionsHandler(svc *records.Service, logger *slog.Logger) *BankTransactionsHandler {
	return &BankTransactionsHandler{
		Base:    NewBase(logger),
		records: svc,
	}
}

// Create handles POST /api/bank-transactions.
func (h *BankTransactionsHandler) Create(c *gin.Context) {
	var req dto.BankTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	bank, err := h.records.CreateBankTransaction(c.Request.Context(), owner(c), in)
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.FromBankTransaction(bank))
}

// CreateBulk handles POST /api/bank-transactions/bulk.
func (h *BankTransactionsHandler) CreateBulk(c *gin.Context) {
	var reqs []dto.BankTransactionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	inputs := make([]model.BankTransactionInput, 0, len(reqs))
	for i, req := range reqs {
		in, err := req.ToInput()
		if err != nil {
			h.HandleError(c, fmt.Errorf("item %d: %w", i, err), "bank transaction")
			return
		}
		inputs = append(inputs, in)
	}

	banks, err := h.records.CreateBankTransactions(c.Request.Context(), owner(c), inputs)
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.FromBankTransactions(banks))
}

// List handles GET /api/bank-transactions. filter_type (date, month, year or
// week) and filter_value restrict the listing to a calendar period.
func (h *BankTransactionsHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	opts := records.ListOptions{
		UnmatchedOnly: ParseBoolParam(c, "unmatched", false),
		Period: records.Period{
			Kind:  records.PeriodKind(c.Query("filter_type")),
			Value: c.Query("filter_value"),
		},
		Limit:  limit,
		Offset: offset,
	}

	banks, err := h.records.ListBankTransactions(c.Request.Context(), owner(c), opts)
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	response := dto.BankTransactionListResponse{
		BankTransactions: dto.FromBankTransactions(banks),
		Limit:            limit,
		Offset:           offset,
	}
	response.Count = len(response.BankTransactions)

	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/bank-transactions/:id.
func (h *BankTransactionsHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	bank, err := h.records.GetBankTransaction(c.Request.Context(), id, owner(c))
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromBankTransaction(bank))
}

// Update handles PUT /api/bank-transactions/:id.
func (h *BankTransactionsHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.BankTransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	bank, err := h.records.UpdateBankTransaction(c.Request.Context(), id, owner(c), update)
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromBankTransaction(bank))
}

// Delete handles DELETE /api/bank-transactions/:id.
func (h *BankTransactionsHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.records.DeleteBankTransaction(c.Request.Context(), id, owner(c)); err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.OKResponse{OK: true})
}

// Upload handles POST /api/bank-transactions/upload (multipart: file,
// bank_name, account_number). The whole statement is imported or nothing is.
func (h *BankTransactionsHandler) Upload(c *gin.Context) {
	bankName := strings.TrimSpace(c.PostForm("bank_name"))
	accountNumber := strings.TrimSpace(c.PostForm("account_number"))

	rows, ok := h.readStatement(c)
	if !ok {
		return
	}

	result, err := h.records.ImportStatement(c.Request.Context(), owner(c), rows, bankName, accountNumber)
	if err != nil {
		h.HandleError(c, err, "bank transaction")
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.ImportResponse{
		BatchID:          result.BatchID,
		BankTransactions: dto.FromBankTransactions(result.BankTransactions),
		Count:            len(result.BankTransactions),
	})
}

// Preview handles POST /api/bank-transactions/preview (multipart: file). It
// reports which statement rows already have a transaction without storing
// anything.
func (h *BankTransactionsHandler) Preview(c *gin.Context) {
	rows, ok := h.readStatement(c)
	if !ok {
		return
	}

	preview, err := h.records.PreviewStatement(c.Request.Context(), owner(c), rows)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.PreviewResponse{
		Matched:   dto.FromStatementRows(preview.Matched),
		Unmatched: dto.FromStatementRows(preview.Unmatched),
	})
}

// UnmatchedReport handles GET /api/bank-transactions/unmatched/report and
// streams the owner's unmatched records as a CSV attachment.
func (h *BankTransactionsHandler) UnmatchedReport(c *gin.Context) {
	report, err := h.records.Unmatched(c.Request.Context(), owner(c))
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	filename := fmt.Sprintf("unmatched_transactions_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := ingest.WriteUnmatchedCSV(c.Writer, report.Transactions, report.BankTransactions); err != nil {
		_ = c.Error(err)
		h.logger.Error("Failed to write unmatched report", "error", err)
	}
}

// readStatement parses the uploaded "file" field, writing a 400 on failure.
func (h *BankTransactionsHandler) readStatement(c *gin.Context) ([]model.StatementRow, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("file is required"))
		return nil, false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("only CSV files are allowed"))
		return nil, false
	}
	if header.Size > MaxStatementSize {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("file is too large"))
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err, "file")
		return nil, false
	}
	defer f.Close()

	rows, err := ingest.ParseCSV(f)
	if err != nil {
		h.HandleError(c, err, "file")
		return nil, false
	}
	return rows, true
}
