package ireportrepo

import (
	"context"
	"errors"

	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a report id does not resolve.
var ErrNotFound = errors.New("report not found")

// IReportRepository is an interface for the report repository.
type IReportRepository interface {
	Insert(ctx context.Context, r report.Report) (*report.Report, error)
	Query(ctx context.Context, filter *report.QueryReportsModel) ([]report.Report, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status report.Status) (*report.Report, error)
	Summarize(ctx context.Context) (*report.Summary, error)
}
