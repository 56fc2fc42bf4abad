package dispatch

import (
	"context"

	"backend/internal/rpc"
	"backend/internal/service"
)

// NewIdentityDispatcher wires the role, permission and user use-cases.
func NewIdentityDispatcher(roles service.RoleService, permissions service.PermissionService, users service.UserService) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceIdentity)

	d.Handle(rpc.RoleCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateRoleDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return roles.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.RoleList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		return roles.List(ctx)
	})

	d.Handle(rpc.RoleGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return roles.GetByID(ctx, id)
	})

	d.Handle(rpc.RoleUpdate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.UpdateRoleDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return roles.Update(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.RoleDelete, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return nil, roles.Delete(ctx, env.User, env.Tracing, id)
	})

	d.Handle(rpc.RoleAddPermission, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.RolePermissionDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return roles.AddPermission(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.RoleRemovePermission, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		var req service.RolePermissionDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return roles.RemovePermission(ctx, env.User, env.Tracing, id, req)
	})

	d.Handle(rpc.PermissionGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return permissions.GetByID(ctx, id)
	})

	d.Handle(rpc.PermissionList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		return permissions.List(ctx)
	})

	d.Handle(rpc.UsersCreate, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var req service.CreateUserDTO
		if err := env.Bind(&req); err != nil {
			return nil, err
		}
		return users.Create(ctx, env.User, env.Tracing, req)
	})

	d.Handle(rpc.UsersGetByID, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		id, err := requireID(env)
		if err != nil {
			return nil, err
		}
		return users.GetByID(ctx, id)
	})

	d.Handle(rpc.UsersList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var q rpc.ListQuery
		if err := bindFilter(env, &q); err != nil {
			return nil, err
		}
		return users.List(ctx, q.Page, q.Limit)
	})

	return d
}
