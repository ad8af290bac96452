package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/webhook"
	"github.com/craftkart/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const signatureHeader = "X-Api-HMAC-SHA256"

// maxBodySize caps inbound delivery bodies; real payloads are a few
// kilobytes, so 1 MiB leaves generous headroom.
const maxBodySize = 1 << 20

type SignatureVerifier interface {
	Verify(body []byte, signature string) error
}

type WebhookService interface {
	CreateFromWebhook(ctx context.Context, p webhook.Payload) (entities.Order, bool, error)
	CancelByExternalID(ctx context.Context, externalID, reason string) (entities.Order, error)
	ApplyShipmentUpdate(ctx context.Context, p webhook.Payload) error
	HandleFailed(ctx context.Context, p webhook.Payload) error
}

type WebhookHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	verifier SignatureVerifier
	svc      WebhookService
}

func NewWebhookHandler(logger *slog.Logger, verifier SignatureVerifier, svc WebhookService) *WebhookHandler {
	return &WebhookHandler{
		logger:   logger.With(slog.String("handler", "webhook")),
		validate: validator.New(),
		verifier: verifier,
		svc:      svc,
	}
}

func (h *WebhookHandler) Init(r chi.Router) {
	r.Post("/webhooks/shiprocket", h.Handle)
}

// Handle verifies the delivery against the raw body before any
// parsing, classifies it, and dispatches to the reconciler. Not-found
// and validation failures return non-2xx so the provider's retry
// redelivers; unknown event kinds are acknowledged to stop pointless
// retries.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() { webhookDuration.Observe(time.Since(start).Seconds()) }()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		webhooksRejected.Inc()
		utils.WriteError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(signatureHeader)); err != nil {
		webhooksRejected.Inc()
		h.logger.WarnContext(ctx, "rejected webhook with bad signature", slog.Any("error", err))
		utils.WriteError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		webhooksRejected.Inc()
		utils.WriteError(w, "malformed payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		webhooksRejected.Inc()
		utils.WriteValidationError(w, err)
		return
	}

	kind := webhook.Classify(payload)
	webhooksReceived.WithLabelValues(string(kind)).Inc()

	switch kind {
	case webhook.EventOrderSuccess:
		h.handleSuccess(ctx, w, payload)

	case webhook.EventOrderCancelled:
		if _, err := h.svc.CancelByExternalID(ctx, payload.ExternalID(), "cancelled by provider"); err != nil {
			h.writeServiceError(ctx, w, kind, err)
			return
		}
		utils.WriteJSON(w, AckResponse{Status: "cancelled"}, http.StatusOK)

	case webhook.EventOrderStatusUpdate:
		if err := h.svc.ApplyShipmentUpdate(ctx, payload); err != nil {
			h.writeServiceError(ctx, w, kind, err)
			return
		}
		utils.WriteJSON(w, AckResponse{Status: "updated"}, http.StatusOK)

	case webhook.EventOrderFailed:
		if err := h.svc.HandleFailed(ctx, payload); err != nil {
			h.writeServiceError(ctx, w, kind, err)
			return
		}
		utils.WriteJSON(w, AckResponse{Status: "acknowledged"}, http.StatusOK)

	default:
		// ORDER_INITIATED and UNKNOWN are log-only.
		h.logger.InfoContext(ctx, "acknowledging webhook without action",
			slog.String("kind", string(kind)),
			slog.String("external_id", payload.ExternalID()),
		)
		utils.WriteJSON(w, AckResponse{Status: "acknowledged"}, http.StatusOK)
	}
}

func (h *WebhookHandler) handleSuccess(ctx context.Context, w http.ResponseWriter, payload webhook.Payload) {
	order, created, err := h.svc.CreateFromWebhook(ctx, payload)
	if err != nil {
		h.writeServiceError(ctx, w, webhook.EventOrderSuccess, err)
		return
	}
	if !created {
		if order.ExternalID == "" {
			utils.WriteJSON(w, AckResponse{Status: "ignored"}, http.StatusOK)
			return
		}
		webhookDuplicates.Inc()
	}
	utils.WriteJSON(w, AckResponse{Status: "ok", OrderNumber: order.OrderNumber}, http.StatusOK)
}

func (h *WebhookHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, kind webhook.EventKind, err error) {
	webhooksFailed.WithLabelValues(string(kind)).Inc()

	var stockErr *entities.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		stockConflicts.Inc()
		utils.WriteError(w, stockErr.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrVariantNotFound),
		errors.Is(err, entities.ErrProductNotFound):
		utils.WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entities.ErrEmptyCart),
		errors.Is(err, entities.ErrMissingOrderID),
		errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "webhook processing failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
