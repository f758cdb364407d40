package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
)

const attendanceColumns = `a.id, a.employee_email, a.date::text,
	a.entry_time, a.lunch_start_time, a.lunch_end_time, a.htp_start_time, a.htp_end_time, a.exit_time,
	a.total_worked_duration, a.lunch_duration, a.locations, a.flags, a.version,
	a.created_at, a.updated_at, u.name`

const attendanceFrom = ` FROM attendance_records a LEFT JOIN users u ON u.email = a.employee_email`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var (
		rec       attendance.Record
		locations []byte
		flags     []string
	)
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeEmail,
		&rec.Date,
		&rec.EntryTime,
		&rec.LunchStartTime,
		&rec.LunchEndTime,
		&rec.HTPStartTime,
		&rec.HTPEndTime,
		&rec.ExitTime,
		&rec.TotalWorkedDuration,
		&rec.LunchDuration,
		&locations,
		&flags,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.EmployeeName,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &rec.Locations); err != nil {
			return attendance.Record{}, fmt.Errorf("decode locations: %w", err)
		}
	}
	if len(rec.Locations) == 0 {
		rec.Locations = nil
	}
	for _, f := range flags {
		rec.Flags = append(rec.Flags, attendance.Flag(f))
	}
	return rec, nil
}

func encodeRecordExtras(rec attendance.Record) ([]byte, []string, error) {
	locations := rec.Locations
	if locations == nil {
		locations = map[attendance.Checkpoint]attendance.Location{}
	}
	raw, err := json.Marshal(locations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode locations: %w", err)
	}
	flags := make([]string, len(rec.Flags))
	for i, f := range rec.Flags {
		flags[i] = string(f)
	}
	return raw, flags, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	if rec.ID == "" {
		rec.ID = newID()
	}
	locations, flags, err := encodeRecordExtras(rec)
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		WITH a AS (
			INSERT INTO attendance_records (
				id, employee_email, date,
				entry_time, lunch_start_time, lunch_end_time, htp_start_time, htp_end_time, exit_time,
				total_worked_duration, lunch_duration, locations, flags, version
			)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13, 1)
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a LEFT JOIN users u ON u.email = a.employee_email`

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.EmployeeEmail,
		rec.Date,
		rec.EntryTime,
		rec.LunchStartTime,
		rec.LunchEndTime,
		rec.HTPStartTime,
		rec.HTPEndTime,
		rec.ExitTime,
		rec.TotalWorkedDuration,
		rec.LunchDuration,
		locations,
		flags,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Record{}, storeErr("create attendance record", err)
	}
	return created, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	locations, flags, err := encodeRecordExtras(rec)
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		WITH a AS (
			UPDATE attendance_records
			SET entry_time = $3, lunch_start_time = $4, lunch_end_time = $5,
				htp_start_time = $6, htp_end_time = $7, exit_time = $8,
				total_worked_duration = $9, lunch_duration = $10,
				locations = $11::jsonb, flags = $12,
				version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $2
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a LEFT JOIN users u ON u.email = a.employee_email`

	updated, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.Version,
		rec.EntryTime,
		rec.LunchStartTime,
		rec.LunchEndTime,
		rec.HTPStartTime,
		rec.HTPEndTime,
		rec.ExitTime,
		rec.TotalWorkedDuration,
		rec.LunchDuration,
		locations,
		flags,
	))
	if err != nil {
		// Another request changed the record first.
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Record{}, storeErr("update attendance record", err)
	}
	return updated, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, `SELECT `+attendanceColumns+attendanceFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, storeErr("get attendance record", err)
	}
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeEmail string, date string) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx,
		`SELECT `+attendanceColumns+attendanceFrom+` WHERE a.employee_email = $1 AND a.date = $2::date`,
		employeeEmail, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get attendance record by date", err)
	}
	return &rec, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	var where whereBuilder
	if filter.Emails != nil {
		where.add("a.employee_email = ANY($%d)", filter.Emails)
	}
	if filter.EmployeeEmail != nil {
		where.add("a.employee_email = $%d", *filter.EmployeeEmail)
	}
	if filter.Date != nil && *filter.Date != "" {
		where.add("a.date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		where.add("a.date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		where.add("a.date <= $%d::date", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_records a`+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count attendance records", err)
	}

	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}
	query := `SELECT ` + attendanceColumns + attendanceFrom + where.clause() +
		fmt.Sprintf(" ORDER BY a.date %s, a.employee_email", order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", where.next(filter.Limit), where.next((filter.Page-1)*filter.Limit))
	}

	rows, err := q.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, storeErr("list attendance records", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, storeErr("scan attendance record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list attendance records", err)
	}
	return records, total, nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete attendance record", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}
