package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
)

const userColumns = `id, email, name, roles, active_role, status, is_teacher,
	coordination_ids::text[], password_hash, google_id, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u     user.User
		roles []string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&roles,
		&u.ActiveRole,
		&u.Status,
		&u.IsTeacher,
		&u.CoordinationIDs,
		&u.PasswordHash,
		&u.GoogleID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	u.Roles = user.ToRoles(roles)
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func roleNames(roles []user.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *userRepositoryImpl) getOne(ctx context.Context, op string, query string, args ...interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, storeErr(op, err)
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		newUser.ID = newID()
	}

	query := `
		INSERT INTO users (
			id, email, name, roles, active_role, status, is_teacher,
			coordination_ids, password_hash, google_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid[], $9, $10)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.Name,
		roleNames(newUser.Roles),
		newUser.ActiveRole,
		newUser.Status,
		newUser.IsTeacher,
		nonNil(newUser.CoordinationIDs),
		newUser.PasswordHash,
		newUser.GoogleID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, storeErr("create user", err)
	}

	return created, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, storeErr("check user email", err)
	}
	return exists, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	return r.getOne(ctx, "link google account", `
		UPDATE users
		SET google_id = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING `+userColumns, email, googleID)
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $2, roles = $3, active_role = $4, status = $5, is_teacher = $6,
			coordination_ids = $7::uuid[], updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		u.ID,
		u.Name,
		roleNames(u.Roles),
		u.ActiveRole,
		u.Status,
		u.IsTeacher,
		nonNil(u.CoordinationIDs),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, storeErr("update user", err)
	}
	return updated, nil
}

func (r *userRepositoryImpl) exec(ctx context.Context, op string, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateActiveRole implements user.UserRepository.
func (r *userRepositoryImpl) UpdateActiveRole(ctx context.Context, id string, role user.Role) error {
	return r.exec(ctx, "update active role",
		`UPDATE users SET active_role = $2, updated_at = NOW() WHERE id = $1`, id, role)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, "update password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var where whereBuilder
	if filter.Emails != nil {
		where.add("email = ANY($%d)", filter.Emails)
	}
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}
	if filter.Role != nil {
		where.add("$%d = ANY(roles)", *filter.Role)
	}
	if filter.CoordinationID != nil {
		where.add("$%d::uuid = ANY(coordination_ids)", *filter.CoordinationID)
	}
	if filter.Search != nil && *filter.Search != "" {
		where.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count users", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where.clause() + ` ORDER BY name, email`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", where.next(filter.Limit), where.next((filter.Page-1)*filter.Limit))
	}

	rows, err := q.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, storeErr("list users", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, storeErr("scan users", err)
	}
	return users, total, nil
}

// ListByCoordinations implements user.UserRepository.
func (r *userRepositoryImpl) ListByCoordinations(ctx context.Context, coordinationIDs []string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE coordination_ids && $1::uuid[]
		ORDER BY name, email`, nonNil(coordinationIDs))
	if err != nil {
		return nil, storeErr("list users by coordinations", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, storeErr("scan users", err)
	}
	return users, nil
}

// ListByEmails implements user.UserRepository.
func (r *userRepositoryImpl) ListByEmails(ctx context.Context, emails []string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = ANY($1) ORDER BY name, email`, nonNil(emails))
	if err != nil {
		return nil, storeErr("list users by emails", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, storeErr("scan users", err)
	}
	return users, nil
}
