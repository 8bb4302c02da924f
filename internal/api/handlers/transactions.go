package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/dto"
	"github.com/eshaffer321/homebudget-guard/internal/application/records"
)

// TransactionsHandler handles user-reported transactions.
type TransactionsHandler struct {
	*Base
	records *records.Service
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *records.Service, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		Base:    NewBase(logger),
		records: svc,
	}
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	tx, err := h.records.CreateTransaction(c.Request.Context(), owner(c), in)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.FromTransaction(tx))
}

// List handles GET /api/transactions - returns a page of transactions by date.
func (h *TransactionsHandler) List(c *gin.Context) {
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

	txs, err := h.records.ListTransactions(c.Request.Context(), owner(c), opts)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txs)),
		Limit:        limit,
		Offset:       offset,
	}
	for _, tx := range txs {
		response.Transactions = append(response.Transactions, dto.FromTransaction(tx))
	}
	response.Count = len(response.Transactions)

	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/transactions/:id.
func (h *TransactionsHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	tx, err := h.records.GetTransaction(c.Request.Context(), id, owner(c))
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromTransaction(tx))
}

// Update handles PUT /api/transactions/:id.
func (h *TransactionsHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.TransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	tx, err := h.records.UpdateTransaction(c.Request.Context(), id, owner(c), update)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromTransaction(tx))
}

// Delete handles DELETE /api/transactions/:id.
func (h *TransactionsHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.records.DeleteTransaction(c.Request.Context(), id, owner(c)); err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.OKResponse{OK: true})
}
