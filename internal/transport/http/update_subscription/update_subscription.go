package updatesubscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/dal/interfaces/iorderrepo"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/defent/order-intake/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type service interface {
	SetSubscription(ctx context.Context, orderID uuid.UUID, isActive bool) (*order.Order, error)
}

type updateSubscriptionRequest struct {
	IsActive bool `json:"isActive"`
}

// UpdateSubscription handles the subscription lifecycle request.
func UpdateSubscription(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Order ID is required")

		return
	}

	req := updateSubscriptionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request body for update subscription", "error", err)

		return
	}

	updated, err := service.SetSubscription(r.Context(), orderID, req.IsActive)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Order not found")

			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		slog.Error("Error updating subscription", "order_id", orderID, "error", err)

		return
	}

	response.OK(w, updated, "Subscription updated")
}
