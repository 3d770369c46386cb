package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/service/services/ordersvc"
	"github.com/defent/order-intake/internal/transport/http/response"
	"github.com/gorilla/schema"
)

type service interface {
	ListRecent(ctx context.Context, page, limit int) (*ordersvc.RecentOrders, error)
}

type queryOrdersRequest struct {
	Page  int `schema:"page,omitempty"`
	Limit int `schema:"limit,omitempty"`
}

// ListOrders handles the recent-orders listing request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.ListRecent(r.Context(), query.Page, query.Limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		slog.Error("Error getting orders", "error", err)

		return
	}

	response.OK(w, orders, "Orders fetched successfully")
}
