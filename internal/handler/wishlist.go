package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type WishlistService interface {
	List(ctx context.Context, customerID string) ([]entities.WishlistEntry, error)
	Add(ctx context.Context, customerID string, variantID int64) error
	Remove(ctx context.Context, customerID string, variantID int64) error
}

type WishlistHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      WishlistService
}

func NewWishlistHandler(logger *slog.Logger, svc WishlistService) *WishlistHandler {
	return &WishlistHandler{
		logger:   logger.With(slog.String("handler", "wishlist")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *WishlistHandler) Init(r chi.Router) {
	r.Get("/wishlist/{customer_id}", h.List)
	r.Post("/wishlist/{customer_id}", h.Add)
	r.Delete("/wishlist/{customer_id}/{variant_id}", h.Remove)
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customer_id")

	entries, err := h.svc.List(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list wishlist", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]WishlistEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, WishlistEntry{VariantID: e.VariantID, AddedAt: e.AddedAt})
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customer_id")

	var req WishlistRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	if err := h.svc.Add(ctx, customerID, req.VariantID); err != nil {
		h.logger.ErrorContext(ctx, "failed to add wishlist entry", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customer_id")

	variantID, err := strconv.ParseInt(chi.URLParam(r, "variant_id"), 10, 64)
	if err != nil {
		utils.WriteError(w, "invalid variant id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Remove(ctx, customerID, variantID); err != nil {
		h.logger.ErrorContext(ctx, "failed to remove wishlist entry", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
