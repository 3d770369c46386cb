package listreports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/defent/order-intake/internal/service/services/reportsvc"
	"github.com/defent/order-intake/internal/transport/http/response"
	"github.com/gorilla/schema"
)

type service interface {
	List(ctx context.Context, filter report.QueryReportsModel) (*reportsvc.ReportPage, error)
}

type queryReportsRequest struct {
	Status     string `schema:"status,omitempty"`
	State      string `schema:"state,omitempty"`
	Medication string `schema:"medication,omitempty"`
	Age        int    `schema:"age,omitempty"`
	Source     string `schema:"source,omitempty"`
	Search     string `schema:"q,omitempty"`
	Page       int    `schema:"page,omitempty"`
	Limit      int    `schema:"limit,omitempty"`
}

func (q *queryReportsRequest) toModel() report.QueryReportsModel {
	return report.QueryReportsModel{
		Status:     q.Status,
		State:      q.State,
		Medication: q.Medication,
		Age:        q.Age,
		Source:     q.Source,
		Search:     q.Search,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}

// ListReports handles the filtered reports listing request.
func ListReports(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryReportsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request", "error", err)

		return
	}

	page, err := service.List(r.Context(), query.toModel())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		slog.Error("Error listing reports", "error", err)

		return
	}

	response.OK(w, page, "Filtered reports information")
}
