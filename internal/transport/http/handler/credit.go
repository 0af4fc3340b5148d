package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indexpulse/core/internal/domain"
)

// creditUsecaser is the subset of CreditLedger the handler needs.
type creditUsecaser interface {
	Balance(ctx context.Context, userID string) (int, error)
	ListTransactions(ctx context.Context, userID string, limit int, cursor string) ([]*domain.CreditTransaction, string, error)
}

type CreditHandler struct {
	credits creditUsecaser
	logger  *slog.Logger
}

func NewCreditHandler(credits creditUsecaser, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{
		credits: credits,
		logger:  logger.With("component", "credit_handler"),
	}
}

// GET /credits/balance
func (h *CreditHandler) Balance(c *gin.Context) {
	balance, err := h.credits.Balance(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.Error("get balance", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GET /credits/transactions?limit=&cursor=
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	txns, next, err := h.credits.ListTransactions(c.Request.Context(), c.GetString("userID"), limit, c.Query("cursor"))
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "next_cursor": next})
}
