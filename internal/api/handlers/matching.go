package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/dto"
	"github.com/eshaffer321/homebudget-guard/internal/application/reconcile"
	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// MatchingHandler exposes the reconciliation workflow.
type MatchingHandler struct {
	*Base
	reconcile *reconcile.Service
}

// NewMatchingHandler creates a new matching handler.
func NewMatchingHandler(svc *reconcile.Service, logger *slog.Logger) *MatchingHandler {
	return &MatchingHandler{
		Base:      NewBase(logger),
		reconcile: svc,
	}
}

// Propose handles POST /api/matching/match - stores pending rows for exact pairs.
func (h *MatchingHandler) Propose(c *gin.Context) {
	created, err := h.reconcile.ProposeExactMatches(c.Request.Context(), owner(c))
	if err != nil {
		h.HandleError(c, err, "match")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromMatches(created))
}

// ListCandidates handles GET /api/matching/matches.
func (h *MatchingHandler) ListCandidates(c *gin.Context) {
	matches, err := h.reconcile.ListCandidates(c.Request.Context(), owner(c))
	if err != nil {
		h.HandleError(c, err, "match")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromMatches(matches))
}

// ListConfirmed handles GET /api/matching/confirmed.
func (h *MatchingHandler) ListConfirmed(c *gin.Context) {
	matches, err := h.reconcile.ListConfirmed(c.Request.Context(), owner(c))
	if err != nil {
		h.HandleError(c, err, "match")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromMatches(matches))
}

// Suggestions handles GET /api/matching/suggestions (?min_confidence=).
func (h *MatchingHandler) Suggestions(c *gin.Context) {
	minConfidence, set, err := parseFloatParam(c, "min_confidence")
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}
	var threshold *float64
	if set {
		threshold = &minConfidence
	}

	suggestions, err := h.reconcile.SuggestMatches(c.Request.Context(), owner(c), threshold)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	response := dto.SuggestionListResponse{
		Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions)),
	}
	for _, s := range suggestions {
		item := dto.SuggestionResponse{
			Transaction: dto.FromTransaction(s.Transaction),
			Candidates:  make([]dto.CandidateResponse, 0, len(s.Candidates)),
		}
		for _, cand := range s.Candidates {
			item.Candidates = append(item.Candidates, dto.CandidateResponse{
				BankTransaction: dto.FromBankTransaction(cand.BankTransaction),
				Score:           cand.Score,
			})
		}
		response.Suggestions = append(response.Suggestions, item)
	}
	response.Count = len(response.Suggestions)

	h.WriteJSON(c, http.StatusOK, response)
}

// Potential handles GET /api/matching/potential/:id
// (?time_window_days=&amount_tolerance=&amount_mode=). Omitted parameters use
// the configured window.
func (h *MatchingHandler) Potential(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	opts, err := h.windowOptions(c)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	matches, err := h.reconcile.PotentialMatches(c.Request.Context(), id, owner(c), opts)
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.FromMatches(matches))
}

func (h *MatchingHandler) windowOptions(c *gin.Context) (matcher.WindowOptions, error) {
	opts := h.reconcile.DefaultWindow()

	if raw := c.Query("time_window_days"); raw != "" {
		days := ParseIntParam(c, "time_window_days", -1)
		if days < 0 {
			return opts, model.Invalid("time_window_days", "must be a non-negative integer")
		}
		opts.Days = days
	}

	tolerance, set, err := parseFloatParam(c, "amount_tolerance")
	if err != nil {
		return opts, err
	}
	if set {
		opts.AmountTolerance = tolerance
	}

	if mode := c.Query("amount_mode"); mode != "" {
		opts.Mode = matcher.AmountMode(mode)
	}
	return opts, nil
}

// CreateMatch handles POST /api/matching/confirm - links a pair directly.
func (h *MatchingHandler) CreateMatch(c *gin.Context) {
	var req dto.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	tx, bank, err := h.reconcile.CreateMatch(c.Request.Context(), req.TransactionID, req.BankTransactionID, owner(c))
	if err != nil {
		h.HandleError(c, err, "transaction or bank transaction")
		return
	}

	bankResp := dto.FromBankTransaction(bank)
	h.WriteJSON(c, http.StatusOK, dto.LinkResponse{
		Transaction:     dto.FromTransaction(tx),
		BankTransaction: &bankResp,
	})
}

// Confirm handles POST /api/matching/matches/:id/confirm.
func (h *MatchingHandler) Confirm(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.reconcile.Confirm(c.Request.Context(), id, owner(c)); err != nil {
		h.HandleError(c, err, "match")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.OKResponse{OK: true})
}

// Delete handles DELETE /api/matching/matches/:id.
func (h *MatchingHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.reconcile.Delete(c.Request.Context(), id, owner(c)); err != nil {
		h.HandleError(c, err, "match")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.OKResponse{OK: true})
}

// Unmatch handles POST /api/matching/unmatch/:id where id is a transaction.
func (h *MatchingHandler) Unmatch(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	tx, bank, err := h.reconcile.Unmatch(c.Request.Context(), id, owner(c))
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	response := dto.LinkResponse{Transaction: dto.FromTransaction(tx)}
	if bank != nil {
		bankResp := dto.FromBankTransaction(bank)
		response.BankTransaction = &bankResp
	}
	h.WriteJSON(c, http.StatusOK, response)
}

// Summary handles GET /api/matching/summary.
func (h *MatchingHandler) Summary(c *gin.Context) {
	summary, err := h.reconcile.Summary(c.Request.Context(), owner(c))
	if err != nil {
		h.HandleError(c, err, "transaction")
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.SummaryResponse{
		TotalTransactions:     summary.TotalTransactions,
		MatchedCount:          summary.MatchedTransactions,
		UnmatchedCount:        summary.UnmatchedTransactions,
		MatchPercentage:       summary.MatchPercentage,
		TotalBankTransactions: summary.TotalBankTransactions,
		UnmatchedBankCount:    summary.UnmatchedBank,
		PendingMatches:        summary.PendingMatches,
	})
}
