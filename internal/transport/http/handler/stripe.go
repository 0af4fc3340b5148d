package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	stripeapi "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/indexpulse/core/internal/domain"
)

// credGranter is the subset of CreditLedger the webhook needs.
type credGranter interface {
	Grant(ctx context.Context, userID string, amount int, kind domain.TransactionKind) error
}

// StripeHandler verifies and processes Stripe Checkout webhooks, the
// system's one path for crediting a purchase, grounded on the pack's
// payment-service webhook parser.
type StripeHandler struct {
	credits       credGranter
	webhookSecret string
	logger        *slog.Logger
}

func NewStripeHandler(credits credGranter, webhookSecret string, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{
		credits:       credits,
		webhookSecret: webhookSecret,
		logger:        logger.With("component", "stripe_handler"),
	}
}

// POST /webhooks/stripe
func (h *StripeHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("stripe signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		c.Status(http.StatusOK)
		return
	}

	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("decode checkout session", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	userID, amount, err := grantFromMetadata(session.Metadata)
	if err != nil {
		h.logger.Error("checkout session missing credit metadata", "session_id", session.ID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.credits.Grant(c.Request.Context(), userID, amount, domain.TransactionPurchase); err != nil {
		h.logger.Error("grant purchased credits", "session_id", session.ID, "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusOK)
}

func grantFromMetadata(metadata map[string]string) (userID string, amount int, err error) {
	userID = metadata["user_id"]
	if userID == "" {
		return "", 0, errors.New("checkout session metadata missing user_id")
	}
	raw := metadata["credit_amount"]
	if raw == "" {
		return "", 0, errors.New("checkout session metadata missing credit_amount")
	}
	amount, err = strconv.Atoi(raw)
	if err != nil || amount <= 0 {
		return "", 0, fmt.Errorf("checkout session metadata has invalid credit_amount %q", raw)
	}
	return userID, amount, nil
}
