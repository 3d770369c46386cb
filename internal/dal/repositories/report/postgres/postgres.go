package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/defent/order-intake/internal/dal/interfaces/ireportrepo"
	"github.com/defent/order-intake/internal/dal/postgres"
	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var reportColumns = []string{
	"id",
	"age",
	"medication",
	"state",
	"city",
	"location",
	"source",
	"is_qualify",
	"created_at",
	"updated_at",
}

// ReportDal represents the report data access layer model.
type ReportDal struct {
	Id         uuid.UUID `db:"id"`
	Age        int       `db:"age"`
	Medication string    `db:"medication"`
	State      string    `db:"state"`
	City       string    `db:"city"`
	Location   string    `db:"location"`
	Source     string    `db:"source"`
	IsQualify  string    `db:"is_qualify"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts ReportDal to the service layer Report model.
func (r *ReportDal) ToModel() (*report.Report, error) {
	status, err := report.ParseStatus(r.IsQualify)
	if err != nil {
		return nil, err
	}

	return &report.Report{
		ID:         r.Id,
		Age:        r.Age,
		Medication: r.Medication,
		State:      r.State,
		City:       r.City,
		Location:   r.Location,
		Source:     r.Source,
		IsQualify:  status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var dal ReportDal
	err := row.Scan(
		&dal.Id,
		&dal.Age,
		&dal.Medication,
		&dal.State,
		&dal.City,
		&dal.Location,
		&dal.Source,
		&dal.IsQualify,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// PostgresReportRepository implements the report repository for PostgreSQL.
type PostgresReportRepository struct {
	client *postgres.Client
}

// NewPostgresReportRepository creates a new report repository.
func NewPostgresReportRepository(client *postgres.Client) *PostgresReportRepository {
	return &PostgresReportRepository{
		client: client,
	}
}

// Insert persists a new report and returns it with the generated id.
func (r *PostgresReportRepository) Insert(
	ctx context.Context,
	rep report.Report,
) (*report.Report, error) {
	query, args, err := sq.Insert("reports").
		Columns(
			"age",
			"medication",
			"state",
			"city",
			"location",
			"source",
			"is_qualify",
			"created_at",
			"updated_at",
		).
		Values(
			rep.Age,
			rep.Medication,
			rep.State,
			rep.City,
			rep.Location,
			rep.Source,
			rep.IsQualify.String(),
			rep.CreatedAt,
			rep.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(reportColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanReport(r.client.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	return inserted, nil
}

// Query lists reports matching the filter, newest first, with the total
// count.
func (r *PostgresReportRepository) Query(
	ctx context.Context,
	filter *report.QueryReportsModel,
) ([]report.Report, int64, error) {
	conditions := buildConditions(filter)

	countBuilder := sq.Select("COUNT(*)").From("reports")
	for _, c := range conditions {
		countBuilder = countBuilder.Where(c)
	}

	countQuery, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.client.Pool().QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * filter.Limit
	}

	builder := sq.Select(reportColumns...).From("reports")
	for _, c := range conditions {
		builder = builder.Where(c)
	}

	query, args, err := builder.
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var result []report.Report
	for rows.Next() {
		model, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, total, nil
}

func buildConditions(filter *report.QueryReportsModel) []sq.Sqlizer {
	var conditions []sq.Sqlizer

	if filter.Status != "" {
		conditions = append(conditions, sq.Eq{"is_qualify": filter.Status})
	}
	if filter.State != "" {
		conditions = append(conditions, sq.ILike{"state": filter.State})
	}
	if filter.Medication != "" {
		conditions = append(conditions, sq.ILike{"medication": filter.Medication})
	}
	if filter.Age > 0 {
		conditions = append(conditions, sq.Eq{"age": filter.Age})
	}
	if filter.Source != "" {
		conditions = append(conditions, sq.ILike{"source": filter.Source})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, sq.Or{
			sq.ILike{"medication": pattern},
			sq.ILike{"city": pattern},
			sq.ILike{"location": pattern},
		})
	}

	return conditions
}

// UpdateStatus sets the qualification status of a report.
func (r *PostgresReportRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status report.Status,
) (*report.Report, error) {
	query, args, err := sq.Update("reports").
		Set("is_qualify", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(reportColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanReport(r.client.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ireportrepo.ErrNotFound
		}

		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	return updated, nil
}

// Summarize tallies reports by medication and by state.
func (r *PostgresReportRepository) Summarize(ctx context.Context) (*report.Summary, error) {
	summary := &report.Summary{}

	countQuery, _, err := sq.Select("COUNT(*)").From("reports").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	if err := r.client.Pool().QueryRow(ctx, countQuery).Scan(&summary.Total); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	medQuery, _, err := sq.Select("medication", "COUNT(*)").
		From("reports").
		GroupBy("medication").
		OrderBy("COUNT(*) DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build medication query: %w", err)
	}

	medRows, err := r.client.Pool().Query(ctx, medQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query medication counts: %w", err)
	}
	defer medRows.Close()

	for medRows.Next() {
		var bucket report.MedicationCount
		if err := medRows.Scan(&bucket.Medication, &bucket.Count); err != nil {
			return nil, fmt.Errorf("failed to scan medication count: %w", err)
		}
		summary.Medications = append(summary.Medications, bucket)
	}
	if err = medRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	stateQuery, _, err := sq.Select("state", "COUNT(*)").
		From("reports").
		GroupBy("state").
		OrderBy("COUNT(*) DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build state query: %w", err)
	}

	stateRows, err := r.client.Pool().Query(ctx, stateQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query state counts: %w", err)
	}
	defer stateRows.Close()

	for stateRows.Next() {
		var bucket report.StateCount
		if err := stateRows.Scan(&bucket.State, &bucket.Count); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		summary.States = append(summary.States, bucket)
	}
	if err = stateRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summary, nil
}
