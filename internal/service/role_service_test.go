package service

import (
	"context"
	"testing"

	"backend/internal/repository"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleFixture(t *testing.T) (RoleService, *fakePermissionClient) {
	t.Helper()
	db := newTestDB(t)
	permissions := &fakePermissionClient{permissions: map[string]rpcclient.PermissionRef{}}
	svc := NewRoleService(repository.NewRoleRepository(db), permissions, newTestAudit(t, db))
	return svc, permissions
}

func registerPermission(permissions *fakePermissionClient, code string) string {
	id := uuid.NewString()
	permissions.permissions[id] = rpcclient.PermissionRef{ID: id, Code: code, Name: code, Group: "test"}
	return id
}

func TestRoleCreate(t *testing.T) {
	svc, permissions := newRoleFixture(t)

	p1 := registerPermission(permissions, "purchase_orders.approve")
	role, err := svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{
		Name:          "procurement-lead",
		PermissionIDs: []string{p1, p1},
	})
	require.NoError(t, err)
	assert.Len(t, role.PermissionIDs, 1, "duplicate ids collapse on create")

	_, err = svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{Name: "procurement-lead"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRoleEnrichment(t *testing.T) {
	t.Run("resolves every live permission", func(t *testing.T) {
		svc, permissions := newRoleFixture(t)

		ids := make([]string, 0, 20)
		for i := 0; i < 20; i++ {
			ids = append(ids, registerPermission(permissions, "perm"))
		}

		role, err := svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{
			Name:          "qa-manager",
			PermissionIDs: ids,
		})
		require.NoError(t, err)
		assert.Len(t, role.Permissions, 20)
	})

	t.Run("dead permission is omitted, not an error", func(t *testing.T) {
		svc, permissions := newRoleFixture(t)

		live := registerPermission(permissions, "quality.review")
		dead := uuid.NewString() // never registered with the permission store

		role, err := svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{
			Name:          "qa-analyst",
			PermissionIDs: []string{live, dead},
		})
		require.NoError(t, err)

		assert.Len(t, role.PermissionIDs, 2, "stored ids keep the dead reference")
		require.Len(t, role.Permissions, 1, "reply carries only resolvable permissions")
		assert.Equal(t, live, role.Permissions[0].ID)
	})
}

func TestRoleAddPermission(t *testing.T) {
	svc, permissions := newRoleFixture(t)

	role, err := svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{Name: "operator"})
	require.NoError(t, err)

	p1 := registerPermission(permissions, "batches.execute_step")

	withPerm, err := svc.AddPermission(context.Background(), testCaller, testTracing, role.ID.String(), RolePermissionDTO{PermissionID: p1})
	require.NoError(t, err)
	assert.Equal(t, []string{p1}, withPerm.PermissionIDs)

	// Adding again keeps the list deduplicated.
	again, err := svc.AddPermission(context.Background(), testCaller, testTracing, role.ID.String(), RolePermissionDTO{PermissionID: p1})
	require.NoError(t, err)
	assert.Equal(t, []string{p1}, again.PermissionIDs)

	_, err = svc.AddPermission(context.Background(), testCaller, testTracing, role.ID.String(), RolePermissionDTO{PermissionID: uuid.NewString()})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRoleRemovePermission(t *testing.T) {
	svc, permissions := newRoleFixture(t)

	p1 := registerPermission(permissions, "drugs.approve")
	p2 := registerPermission(permissions, "drugs.reject")

	role, err := svc.Create(context.Background(), testCaller, testTracing, CreateRoleDTO{
		Name:          "reviewer",
		PermissionIDs: []string{p1, p2},
	})
	require.NoError(t, err)

	trimmed, err := svc.RemovePermission(context.Background(), testCaller, testTracing, role.ID.String(), RolePermissionDTO{PermissionID: p1})
	require.NoError(t, err)
	assert.Equal(t, []string{p2}, trimmed.PermissionIDs)

	// Removing an id that is not attached is a no-op.
	same, err := svc.RemovePermission(context.Background(), testCaller, testTracing, role.ID.String(), RolePermissionDTO{PermissionID: p1})
	require.NoError(t, err)
	assert.Equal(t, []string{p2}, same.PermissionIDs)
}
