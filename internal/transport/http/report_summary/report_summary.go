package reportsummary

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/service/services/reportsvc"
	"github.com/defent/order-intake/internal/transport/http/response"
)

type service interface {
	Summarize(ctx context.Context) (*reportsvc.Summary, error)
}

// ReportSummary handles the aggregated tallies request.
func ReportSummary(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Summarize(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		slog.Error("Error summarizing reports", "error", err)

		return
	}

	response.OK(w, summary, "Report summary")
}
