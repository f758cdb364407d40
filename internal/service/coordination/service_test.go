package coordination

import (
	"context"
	"slices"
	"testing"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{ calls int }

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type memoryCoordinations struct {
	items map[string]coordination.Coordination
}

func (m *memoryCoordinations) Create(_ context.Context, c coordination.Coordination) (coordination.Coordination, error) {
	for _, existing := range m.items {
		if existing.Name == c.Name {
			return coordination.Coordination{}, coordination.ErrCoordinationNameExists
		}
	}
	if c.ID == "" {
		c.ID = "0190f5a4-0000-7000-8000-0000000000c9"
	}
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryCoordinations) GetByID(_ context.Context, id string) (coordination.Coordination, error) {
	c, ok := m.items[id]
	if !ok {
		return coordination.Coordination{}, coordination.ErrCoordinationNotFound
	}
	return c, nil
}

func (m *memoryCoordinations) Update(_ context.Context, c coordination.Coordination) (coordination.Coordination, error) {
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryCoordinations) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *memoryCoordinations) List(context.Context) ([]coordination.Coordination, error) {
	out := make([]coordination.Coordination, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCoordinations) ListByCoordinator(_ context.Context, email string) ([]coordination.Coordination, error) {
	var out []coordination.Coordination
	for _, c := range m.items {
		if c.IsCoordinator(email) {
			out = append(out, c)
		}
	}
	return out, nil
}

// memoryUsers implements only what the coordination service reads.
type memoryUsers struct {
	user.UserRepository
	users []user.User
}

func (m *memoryUsers) ListByCoordinations(_ context.Context, ids []string) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		for _, id := range ids {
			if u.InCoordination(id) {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (m *memoryUsers) ListByEmails(_ context.Context, emails []string) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		if slices.Contains(emails, u.Email) {
			out = append(out, u)
		}
	}
	return out, nil
}

const (
	anosIniciais = "0190f5a4-0000-7000-8000-0000000000a1"
	anosFinais   = "0190f5a4-0000-7000-8000-0000000000a2"
	vazia        = "0190f5a4-0000-7000-8000-0000000000a3"
)

func person(email string, active user.Role, coordinations ...string) user.User {
	return user.User{
		ID:              email,
		Email:           email,
		Roles:           []user.Role{active},
		ActiveRole:      active,
		Status:          user.StatusActive,
		CoordinationIDs: coordinations,
	}
}

var (
	admin     = person("admin@escola.edu.br", user.RoleAdministrador)
	beatriz   = person("beatriz@escola.edu.br", user.RoleCoordenador, anosFinais)
	ana       = person("ana@escola.edu.br", user.RoleColaborador, anosIniciais)
	bruno     = person("bruno@escola.edu.br", user.RoleColaborador, anosIniciais, anosFinais)
	carla     = person("carla@escola.edu.br", user.RoleColaborador, anosFinais)
	outsider  = person("davi@escola.edu.br", user.RoleColaborador)
	allPeople = []user.User{admin, beatriz, ana, bruno, carla, outsider}
)

func newService() (*CoordinationServiceImpl, *memoryCoordinations, *passthroughTx) {
	coords := &memoryCoordinations{items: map[string]coordination.Coordination{
		anosIniciais: {ID: anosIniciais, Name: "Anos iniciais", CoordinatorEmails: []string{beatriz.Email}},
		anosFinais:   {ID: anosFinais, Name: "Anos finais"},
		vazia:        {ID: vazia, Name: "Vazia", CoordinatorEmails: []string{beatriz.Email}},
	}}
	tx := &passthroughTx{}
	svc := NewCoordinationService(tx, coords, &memoryUsers{users: allPeople}).(*CoordinationServiceImpl)
	return svc, coords, tx
}

func TestTeamScope(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	scope, err := svc.TeamScope(ctx, admin)
	require.NoError(t, err)
	assert.True(t, scope.All)

	scope, err = svc.TeamScope(ctx, beatriz)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.ElementsMatch(t, []string{ana.Email, bruno.Email}, scope.Emails)
	assert.False(t, scope.Includes(carla.Email))

	scope, err = svc.TeamScope(ctx, carla)
	require.NoError(t, err)
	assert.Equal(t, []string{carla.Email}, scope.Emails)

	inactive := admin
	inactive.Status = user.StatusInactive
	scope, err = svc.TeamScope(ctx, inactive)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Empty(t, scope.Emails)

	forged := carla
	forged.ActiveRole = user.RoleAdministrador
	scope, err = svc.TeamScope(ctx, forged)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Empty(t, scope.Emails)
}

func TestTeamScope_CoordinatorWithoutCoordinations(t *testing.T) {
	svc, _, _ := newService()
	lonely := person("lonely@escola.edu.br", user.RoleCoordenador)

	scope, err := svc.TeamScope(context.Background(), lonely)
	require.NoError(t, err)
	assert.NotNil(t, scope.Emails)
	assert.Empty(t, scope.Emails)
}

func TestCreate_RequiresCoordinatorRole(t *testing.T) {
	svc, coords, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, coordination.CreateCoordinationRequest{
		Name:              "Educação infantil",
		CoordinatorEmails: []string{beatriz.Email, ana.Email},
	})
	assert.ErrorIs(t, err, coordination.ErrCoordinatorRoleMissing)
	assert.Len(t, coords.items, 3)

	_, err = svc.Create(ctx, coordination.CreateCoordinationRequest{
		Name:              "Educação infantil",
		CoordinatorEmails: []string{"ghost@escola.edu.br"},
	})
	assert.ErrorIs(t, err, coordination.ErrCoordinatorRoleMissing)

	resp, err := svc.Create(ctx, coordination.CreateCoordinationRequest{
		Name:              "Educação infantil",
		CoordinatorEmails: []string{" Beatriz@Escola.edu.br "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{beatriz.Email}, resp.CoordinatorEmails)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, coords, _ := newService()
	name := "Fundamental II"

	resp, err := svc.Update(context.Background(), coordination.UpdateCoordinationRequest{ID: anosFinais, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Fundamental II", resp.Name)
	assert.Equal(t, "Fundamental II", coords.items[anosFinais].Name)

	emails := []string{carla.Email}
	_, err = svc.Update(context.Background(), coordination.UpdateCoordinationRequest{ID: anosFinais, CoordinatorEmails: &emails})
	assert.ErrorIs(t, err, coordination.ErrCoordinatorRoleMissing)
}

func TestDelete(t *testing.T) {
	svc, coords, tx := newService()
	ctx := context.Background()

	err := svc.Delete(ctx, anosIniciais)
	assert.ErrorIs(t, err, coordination.ErrCoordinationNotEmpty)
	assert.Contains(t, coords.items, anosIniciais)

	require.NoError(t, svc.Delete(ctx, vazia))
	assert.NotContains(t, coords.items, vazia)
	assert.Equal(t, 2, tx.calls)

	assert.ErrorIs(t, svc.Delete(ctx, vazia), coordination.ErrCoordinationNotFound)
}

func TestGetAndMembers_Visibility(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Get(ctx, beatriz, anosIniciais)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, beatriz, anosFinais)
	assert.ErrorIs(t, err, user.ErrOutsideCoordination)

	_, err = svc.Get(ctx, admin, anosFinais)
	assert.NoError(t, err)

	members, err := svc.Members(ctx, beatriz, anosIniciais)
	require.NoError(t, err)
	emails := make([]string, 0, len(members))
	for _, m := range members {
		emails = append(emails, m.Email)
	}
	assert.ElementsMatch(t, []string{ana.Email, bruno.Email}, emails)
}

func TestList_ByViewer(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(ctx, beatriz)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := svc.List(ctx, ana)
	require.NoError(t, err)
	assert.Empty(t, none)
}
