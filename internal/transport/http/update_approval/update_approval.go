package updateapproval

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/dal/interfaces/ireportrepo"
	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/defent/order-intake/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type service interface {
	SetApproval(ctx context.Context, reportID uuid.UUID, status string) (*report.Report, error)
}

type updateApprovalRequest struct {
	IsApproved string `json:"isApproved"`
}

// UpdateApproval handles the report qualification update request.
func UpdateApproval(w http.ResponseWriter, r *http.Request, service service) {
	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Approval status and report ID are required")

		return
	}

	req := updateApprovalRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request body for update approval", "error", err)

		return
	}
	if req.IsApproved == "" {
		response.Error(w, http.StatusBadRequest, "Approval status and report ID are required")

		return
	}

	updated, err := service.SetApproval(r.Context(), reportID, req.IsApproved)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrInvalidStatus):
			response.Error(w, http.StatusBadRequest, "Mismatched in isApproved value")
		case errors.Is(err, ireportrepo.ErrNotFound):
			response.Error(w, http.StatusNotFound, "Report not found")
		default:
			response.Error(w, http.StatusInternalServerError, "Failed to update the report")
			slog.Error("Error updating report approval", "report_id", reportID, "error", err)
		}

		return
	}

	response.OK(w, updated, "Report has been approved/rejected")
}
