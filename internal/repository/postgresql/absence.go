package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
)

const absenceColumns = `ar.id, ar.employee_email, ar.date::text, ar.kind, ar.justification, ar.document_link,
	ar.status, ar.submitted_at, ar.reviewed_at, ar.reviewer_email, ar.rejection_reason, u.name`

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepositoryImpl{db: db}
}

func scanAbsence(row pgx.Row) (absence.Request, error) {
	var req absence.Request
	err := row.Scan(
		&req.ID,
		&req.EmployeeEmail,
		&req.Date,
		&req.Kind,
		&req.Justification,
		&req.DocumentLink,
		&req.Status,
		&req.SubmittedAt,
		&req.ReviewedAt,
		&req.ReviewerEmail,
		&req.RejectionReason,
		&req.EmployeeName,
	)
	return req, err
}

func (r *absenceRepositoryImpl) Create(ctx context.Context, req absence.Request) (absence.Request, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = newID()
	}

	query := `
		WITH ar AS (
			INSERT INTO absence_requests (id, employee_email, date, kind, justification, document_link, status, submitted_at)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT ` + absenceColumns + ` FROM ar LEFT JOIN users u ON u.email = ar.employee_email`

	created, err := scanAbsence(q.QueryRow(ctx, query,
		req.ID,
		req.EmployeeEmail,
		req.Date,
		req.Kind,
		req.Justification,
		req.DocumentLink,
		req.Status,
		req.SubmittedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return absence.Request{}, absence.ErrDuplicateForDate
		}
		return absence.Request{}, storeErr("create absence request", err)
	}
	return created, nil
}

func (r *absenceRepositoryImpl) GetByID(ctx context.Context, id string) (absence.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanAbsence(q.QueryRow(ctx, `
		SELECT `+absenceColumns+`
		FROM absence_requests ar LEFT JOIN users u ON u.email = ar.employee_email
		WHERE ar.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.Request{}, absence.ErrRequestNotFound
		}
		return absence.Request{}, storeErr("get absence request", err)
	}
	return req, nil
}

func (r *absenceRepositoryImpl) ExistsForDate(ctx context.Context, employeeEmail string, date string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM absence_requests WHERE employee_email = $1 AND date = $2::date)`,
		employeeEmail, date).Scan(&exists)
	if err != nil {
		return false, storeErr("check absence request", err)
	}
	return exists, nil
}

func (r *absenceRepositoryImpl) UpdateReview(ctx context.Context, req absence.Request) (absence.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH ar AS (
			UPDATE absence_requests
			SET status = $2, reviewed_at = $3, reviewer_email = $4, rejection_reason = $5
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		)
		SELECT ` + absenceColumns + ` FROM ar LEFT JOIN users u ON u.email = ar.employee_email`

	updated, err := scanAbsence(q.QueryRow(ctx, query,
		req.ID,
		req.Status,
		req.ReviewedAt,
		req.ReviewerEmail,
		req.RejectionReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, req.ID); getErr != nil {
				return absence.Request{}, getErr
			}
			return absence.Request{}, absence.ErrNotPending
		}
		return absence.Request{}, storeErr("review absence request", err)
	}
	return updated, nil
}

func (r *absenceRepositoryImpl) List(ctx context.Context, filter absence.AbsenceFilter) ([]absence.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var where whereBuilder
	if filter.Emails != nil {
		where.add("ar.employee_email = ANY($%d)", filter.Emails)
	}
	if filter.EmployeeEmail != nil {
		where.add("ar.employee_email = $%d", *filter.EmployeeEmail)
	}
	if filter.Status != nil {
		where.add("ar.status = $%d", *filter.Status)
	}
	if filter.Kind != nil {
		where.add("ar.kind = $%d", *filter.Kind)
	}
	if filter.StartDate != nil {
		where.add("ar.date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		where.add("ar.date <= $%d::date", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM absence_requests ar`+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count absence requests", err)
	}

	query := `SELECT ` + absenceColumns + `
		FROM absence_requests ar LEFT JOIN users u ON u.email = ar.employee_email` +
		where.clause() + ` ORDER BY ar.date DESC, ar.submitted_at DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + where.next(filter.Limit) + " OFFSET " + where.next((filter.Page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, storeErr("list absence requests", err)
	}
	defer rows.Close()

	var requests []absence.Request
	for rows.Next() {
		req, err := scanAbsence(rows)
		if err != nil {
			return nil, 0, storeErr("scan absence request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list absence requests", err)
	}
	return requests, total, nil
}
