package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/repo"
	"github.com/craftkart/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderReader interface {
	GetByNumber(ctx context.Context, orderNumber string) (entities.Order, error)
	List(ctx context.Context, f repo.OrderFilter) ([]entities.Order, error)
	Cancel(ctx context.Context, orderNumber, reason string) (entities.Order, error)
}

type OrdersHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderReader
}

func NewOrdersHandler(logger *slog.Logger, svc OrderReader) *OrdersHandler {
	return &OrdersHandler{
		logger:   logger.With(slog.String("handler", "orders")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *OrdersHandler) Init(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{order_number}", h.GetByNumber)
	r.Post("/orders/{order_number}/cancel", h.Cancel)
}

func (h *OrdersHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderNumber := chi.URLParam(r, "order_number")

	if err := h.validate.Var(orderNumber, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.GetByNumber(ctx, orderNumber)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err), slog.String("order_number", orderNumber))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := repo.OrderFilter{
		Phone:  q.Get("phone"),
		Email:  q.Get("email"),
		Status: entities.OrderStatus(q.Get("status")),
		Limit:  limit,
	}

	orders, err := h.svc.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list orders", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]Order, 0, len(orders))
	for _, o := range orders {
		res = append(res, OrderEntityToJSON(o))
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderNumber := chi.URLParam(r, "order_number")

	var req CancelRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.Cancel(ctx, orderNumber, req.Reason)
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	case errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to cancel order", slog.Any("error", err), slog.String("order_number", orderNumber))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}
