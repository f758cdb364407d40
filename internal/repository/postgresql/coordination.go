package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
)

const coordinationColumns = `c.id, c.name, c.description, c.coordinator_emails, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM users u WHERE c.id = ANY(u.coordination_ids))`

type coordinationRepositoryImpl struct {
	db *database.DB
}

func NewCoordinationRepository(db *database.DB) coordination.CoordinationRepository {
	return &coordinationRepositoryImpl{db: db}
}

func scanCoordination(row pgx.Row) (coordination.Coordination, error) {
	var c coordination.Coordination
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.CoordinatorEmails,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.MemberCount,
	)
	return c, err
}

func (r *coordinationRepositoryImpl) Create(ctx context.Context, c coordination.Coordination) (coordination.Coordination, error) {
	q := GetQuerier(ctx, r.db)

	if c.ID == "" {
		c.ID = newID()
	}

	query := `
		WITH c AS (
			INSERT INTO coordinations (id, name, description, coordinator_emails)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT ` + coordinationColumns + ` FROM c`

	created, err := scanCoordination(q.QueryRow(ctx, query, c.ID, c.Name, c.Description, nonNil(c.CoordinatorEmails)))
	if err != nil {
		if isUniqueViolation(err) {
			return coordination.Coordination{}, coordination.ErrCoordinationNameExists
		}
		return coordination.Coordination{}, storeErr("create coordination", err)
	}
	return created, nil
}

func (r *coordinationRepositoryImpl) GetByID(ctx context.Context, id string) (coordination.Coordination, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanCoordination(q.QueryRow(ctx, `SELECT `+coordinationColumns+` FROM coordinations c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coordination.Coordination{}, coordination.ErrCoordinationNotFound
		}
		return coordination.Coordination{}, storeErr("get coordination", err)
	}
	return found, nil
}

func (r *coordinationRepositoryImpl) Update(ctx context.Context, c coordination.Coordination) (coordination.Coordination, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH c AS (
			UPDATE coordinations
			SET name = $2, description = $3, coordinator_emails = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + coordinationColumns + ` FROM c`

	updated, err := scanCoordination(q.QueryRow(ctx, query, c.ID, c.Name, c.Description, nonNil(c.CoordinatorEmails)))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return coordination.Coordination{}, coordination.ErrCoordinationNotFound
		case isUniqueViolation(err):
			return coordination.Coordination{}, coordination.ErrCoordinationNameExists
		}
		return coordination.Coordination{}, storeErr("update coordination", err)
	}
	return updated, nil
}

func (r *coordinationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM coordinations WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete coordination", err)
	}
	if tag.RowsAffected() == 0 {
		return coordination.ErrCoordinationNotFound
	}
	return nil
}

func (r *coordinationRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]coordination.Coordination, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list coordinations", err)
	}
	defer rows.Close()

	var coordinations []coordination.Coordination
	for rows.Next() {
		c, err := scanCoordination(rows)
		if err != nil {
			return nil, storeErr("scan coordination", err)
		}
		coordinations = append(coordinations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list coordinations", err)
	}
	return coordinations, nil
}

func (r *coordinationRepositoryImpl) List(ctx context.Context) ([]coordination.Coordination, error) {
	return r.list(ctx, `SELECT `+coordinationColumns+` FROM coordinations c ORDER BY c.name`)
}

func (r *coordinationRepositoryImpl) ListByCoordinator(ctx context.Context, email string) ([]coordination.Coordination, error) {
	return r.list(ctx, `SELECT `+coordinationColumns+` FROM coordinations c WHERE $1 = ANY(c.coordinator_emails) ORDER BY c.name`, email)
}
