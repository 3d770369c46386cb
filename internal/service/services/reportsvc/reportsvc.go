package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/defent/order-intake/internal/captcha"
	"github.com/defent/order-intake/internal/dal/interfaces/ireportrepo"
	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/google/uuid"
)

// ErrFieldsRequired is returned when a submission misses required fields.
var ErrFieldsRequired = errors.New("all fields are required")

// ErrCaptchaFailed is returned when the captcha token is rejected.
var ErrCaptchaFailed = errors.New("captcha verification failed")

// captchaVerifier checks submission tokens.
type captchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token string) (captcha.Result, error)
}

// ReportService manages intake reports for the analytics subsystem.
type ReportService struct {
	repo    ireportrepo.IReportRepository
	captcha captchaVerifier
	now     func() time.Time
}

// option is a function that configures the ReportService.
type option func(*ReportService)

// MustNewReportService creates a new ReportService.
func MustNewReportService(opts ...option) *ReportService {
	s := &ReportService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("reportsvc: repository is required")
	}

	return s
}

// WithRepository sets the report repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo ireportrepo.IReportRepository) option {
	return func(s *ReportService) {
		s.repo = repo
	}
}

// WithCaptcha sets the captcha verifier. A nil verifier disables captcha
// checks.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCaptcha(v captchaVerifier) option {
	return func(s *ReportService) {
		s.captcha = v
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *ReportService) {
		s.now = now
	}
}

// CreateReportRequest carries one inbound report submission.
type CreateReportRequest struct {
	Age          int
	Medication   string
	State        string
	City         string
	Source       string
	CaptchaToken string
}

// Create validates and persists a report. The qualification status starts as
// new; location is derived from state and city.
func (s *ReportService) Create(
	ctx context.Context,
	req CreateReportRequest,
) (*report.Report, error) {
	if strings.TrimSpace(req.Medication) == "" ||
		strings.TrimSpace(req.State) == "" ||
		strings.TrimSpace(req.City) == "" {
		return nil, ErrFieldsRequired
	}

	if err := s.verifyCaptcha(ctx, req.CaptchaToken); err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Insert(ctx, report.Report{
		Age:        req.Age,
		Medication: req.Medication,
		State:      req.State,
		City:       req.City,
		Location:   req.State + " " + req.City,
		Source:     req.Source,
		IsQualify:  report.StatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return created, nil
}

// verifyCaptcha checks the token when a verifier is configured. A transport
// failure is logged and does not block the submission; an explicit refusal
// does.
func (s *ReportService) verifyCaptcha(ctx context.Context, token string) error {
	if s.captcha == nil || !s.captcha.Enabled() {
		return nil
	}

	result, err := s.captcha.Verify(ctx, token)
	if err != nil {
		slog.Error("Captcha verification unavailable", "error", err)

		return nil
	}
	if !result.Success {
		slog.Info("Captcha rejected", "error_codes", result.ErrorCodes)

		return ErrCaptchaFailed
	}

	return nil
}

// ReportPage is one page of filtered reports.
type ReportPage struct {
	Reports     []report.Report `json:"reports"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
	Total       int64           `json:"total"`
	TotalPages  int64           `json:"totalPages"`
	HasNextPage bool            `json:"hasNextPage"`
	HasPrevPage bool            `json:"hasPrevPage"`
}

// List returns reports matching the filter with pagination metadata.
func (s *ReportService) List(
	ctx context.Context,
	filter report.QueryReportsModel,
) (*ReportPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	reports, total, err := s.repo.Query(ctx, &filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	if totalPages == 0 {
		totalPages = 1
	}

	return &ReportPage{
		Reports:     reports,
		Page:        filter.Page,
		Limit:       filter.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: int64(filter.Page) < totalPages,
		HasPrevPage: filter.Page > 1,
	}, nil
}

// SetApproval updates a report's qualification status.
func (s *ReportService) SetApproval(
	ctx context.Context,
	reportID uuid.UUID,
	status string,
) (*report.Report, error) {
	parsed, err := report.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, reportID, parsed)
	if err != nil {
		if errors.Is(err, ireportrepo.ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	return updated, nil
}

// Summary returns aggregated tallies with percentages.
type Summary struct {
	Total       int64           `json:"total"`
	Medications []SummaryBucket `json:"medications"`
	States      []SummaryBucket `json:"states"`
}

// SummaryBucket is one aggregation bucket with its share of the total.
type SummaryBucket struct {
	Name       string  `json:"name"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summarize aggregates all reports by medication and state.
func (s *ReportService) Summarize(ctx context.Context) (*Summary, error) {
	raw, err := s.repo.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reports: %w", err)
	}

	summary := &Summary{Total: raw.Total}
	for _, m := range raw.Medications {
		summary.Medications = append(summary.Medications, SummaryBucket{
			Name:       m.Medication,
			Count:      m.Count,
			Percentage: percentage(m.Count, raw.Total),
		})
	}
	for _, st := range raw.States {
		summary.States = append(summary.States, SummaryBucket{
			Name:       st.State,
			Count:      st.Count,
			Percentage: percentage(st.Count, raw.Total),
		})
	}

	return summary, nil
}

func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}

	return float64(count) / float64(total) * 100
}
