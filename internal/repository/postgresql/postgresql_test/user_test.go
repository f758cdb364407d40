package postgresql_test

import (
	"context"
	"testing"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(email string, roles ...user.Role) user.User {
	if len(roles) == 0 {
		roles = []user.Role{user.RoleColaborador}
	}
	return user.User{
		Email:      email,
		Name:       email,
		Roles:      roles,
		ActiveRole: roles[0],
		Status:     user.StatusActive,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	u := newTestUser("ana@escola.edu.br", user.RoleCoordenador, user.RoleColaborador)
	u.IsTeacher = true
	created, err := repo.Create(ctx, u)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []user.Role{user.RoleCoordenador, user.RoleColaborador}, created.Roles)
	assert.True(t, created.IsTeacher)

	byEmail, err := repo.GetByEmail(ctx, "ana@escola.edu.br")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	_, err = repo.Create(ctx, newTestUser("ana@escola.edu.br"))
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	_, err = repo.GetByEmail(ctx, "ghost@escola.edu.br")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	exists, err := repo.ExistsByEmail(ctx, "ana@escola.edu.br")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_UpdateAndRoles(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	created, err := repo.Create(ctx, newTestUser("caio@escola.edu.br", user.RoleCoordenador, user.RoleColaborador))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateActiveRole(ctx, created.ID, user.RoleColaborador))
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleColaborador, got.ActiveRole)

	got.Name = "Caio Souza"
	got.Status = user.StatusInactive
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Caio Souza", updated.Name)
	assert.Equal(t, user.StatusInactive, updated.Status)

	linked, err := repo.LinkGoogleAccount(ctx, "google-123", "caio@escola.edu.br")
	require.NoError(t, err)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "google-123", *linked.GoogleID)
}

func TestUserRepository_ListByCoordinations(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(db)
	coordinations := postgresql.NewCoordinationRepository(db)

	fund, err := coordinations.Create(ctx, coordination.Coordination{Name: "Fundamental", CoordinatorEmails: []string{"bia@escola.edu.br"}})
	require.NoError(t, err)

	member := newTestUser("ana@escola.edu.br")
	member.CoordinationIDs = []string{fund.ID}
	_, err = users.Create(ctx, member)
	require.NoError(t, err)
	_, err = users.Create(ctx, newTestUser("caio@escola.edu.br"))
	require.NoError(t, err)

	members, err := users.ListByCoordinations(ctx, []string{fund.ID})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "ana@escola.edu.br", members[0].Email)

	list, total, err := users.List(ctx, user.ListUsersFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = users.List(ctx, user.ListUsersFilter{Emails: []string{"caio@escola.edu.br"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "caio@escola.edu.br", list[0].Email)
}
