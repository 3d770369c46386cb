package createreport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/defent/order-intake/internal/service/services/reportsvc"
	"github.com/defent/order-intake/internal/transport/http/response"
)

type service interface {
	Create(ctx context.Context, req reportsvc.CreateReportRequest) (*report.Report, error)
}

type createReportRequest struct {
	Age          int    `json:"age"`
	Medication   string `json:"medication"`
	State        string `json:"state"`
	City         string `json:"city"`
	Source       string `json:"source"`
	CaptchaToken string `json:"captchaToken"`
}

// CreateReport handles the report submission request.
func CreateReport(w http.ResponseWriter, r *http.Request, service service) {
	req := createReportRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request body for create report", "error", err)

		return
	}

	created, err := service.Create(r.Context(), reportsvc.CreateReportRequest{
		Age:          req.Age,
		Medication:   req.Medication,
		State:        req.State,
		City:         req.City,
		Source:       req.Source,
		CaptchaToken: req.CaptchaToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, reportsvc.ErrFieldsRequired):
			response.Rejected(w, "All fields are required.")
		case errors.Is(err, reportsvc.ErrCaptchaFailed):
			response.Rejected(w, "Captcha verification failed")
		default:
			response.Error(w, http.StatusInternalServerError, "Failed to create the report")
			slog.Error("Error creating report", "error", err)
		}

		return
	}

	response.OK(w, created, "Report added.")
}
