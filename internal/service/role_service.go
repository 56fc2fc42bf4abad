package service

import (
	"context"
	"log"
	"sync"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"
)

// enrichWorkers bounds the parallel permission lookups per role read.
const enrichWorkers = 8

// --- DTOs ---

type CreateRoleDTO struct {
	Name          string   `json:"name" binding:"required,min=2,max=50"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids" binding:"omitempty,dive,uuid"`
}

type UpdateRoleDTO struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=50"`
	Description string `json:"description"`
}

type RolePermissionDTO struct {
	PermissionID string `json:"permission_id" binding:"required,uuid"`
}

// EnrichedRole is a role with its permission ids resolved to entities.
// Permissions that could not be resolved are omitted, not errored.
type EnrichedRole struct {
	model.Role
	Permissions []rpcclient.PermissionRef `json:"permissions"`
}

// --- Interface ---

type RoleService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateRoleDTO) (*EnrichedRole, error)
	Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateRoleDTO) (*EnrichedRole, error)
	AddPermission(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RolePermissionDTO) (*EnrichedRole, error)
	RemovePermission(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RolePermissionDTO) (*EnrichedRole, error)
	Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error
	GetByID(ctx context.Context, id string) (*EnrichedRole, error)
	List(ctx context.Context) ([]EnrichedRole, error)
}

type roleService struct {
	repo        repository.RoleRepository
	permissions rpcclient.PermissionClient
	audit       AuditService
}

func NewRoleService(repo repository.RoleRepository, permissions rpcclient.PermissionClient, audit AuditService) RoleService {
	return &roleService{repo: repo, permissions: permissions, audit: audit}
}

// --- Implementation ---

func (s *roleService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateRoleDTO) (*EnrichedRole, error) {
	_, lookupErr := s.repo.FindByName(ctx, req.Name)
	if err := checkUnique(lookupErr, "roleNameExists", "role %s already exists", req.Name); err != nil {
		return nil, err
	}

	role := model.Role{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: dedupe(req.PermissionIDs),
	}

	if err := s.repo.Create(ctx, &role); err != nil {
		return nil, apperr.Internal("create role: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionRoleCreated, role.ID.String(), role.Name, nil)
	return s.enrich(ctx, &role), nil
}

func (s *roleService) Update(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req UpdateRoleDTO) (*EnrichedRole, error) {
	roleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFoundOr(err, "roleNotFound", "role %s not found", id)
	}

	if req.Name != "" && req.Name != role.Name {
		_, lookupErr := s.repo.FindByName(ctx, req.Name)
		if err := checkUnique(lookupErr, "roleNameExists", "role %s already exists", req.Name); err != nil {
			return nil, err
		}
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, apperr.Internal("update role: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionRoleUpdated, role.ID.String(), role.Name, nil)
	return s.enrich(ctx, role), nil
}

// AddPermission verifies the permission exists across the bus, then appends
// its id if not already present.
func (s *roleService) AddPermission(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RolePermissionDTO) (*EnrichedRole, error) {
	roleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFoundOr(err, "roleNotFound", "role %s not found", id)
	}

	if _, err := s.permissions.GetByID(ctx, req.PermissionID); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("permissionNotFound", "permission %s not found", req.PermissionID)
		}
		return nil, err
	}

	for _, pid := range role.PermissionIDs {
		if pid == req.PermissionID {
			return s.enrich(ctx, role), nil
		}
	}

	role.PermissionIDs = append(role.PermissionIDs, req.PermissionID)
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, apperr.Internal("update role: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionRolePermissionAdded, role.ID.String(), role.Name, map[string]interface{}{
		"permission_id": req.PermissionID,
	})

	return s.enrich(ctx, role), nil
}

// RemovePermission filters the id out. Removing an id that is not attached
// is a no-op.
func (s *roleService) RemovePermission(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string, req RolePermissionDTO) (*EnrichedRole, error) {
	roleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFoundOr(err, "roleNotFound", "role %s not found", id)
	}

	kept := role.PermissionIDs[:0]
	removed := false
	for _, pid := range role.PermissionIDs {
		if pid == req.PermissionID {
			removed = true
			continue
		}
		kept = append(kept, pid)
	}
	if !removed {
		return s.enrich(ctx, role), nil
	}

	role.PermissionIDs = kept
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, apperr.Internal("update role: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionRolePermissionRemoved, role.ID.String(), role.Name, map[string]interface{}{
		"permission_id": req.PermissionID,
	})

	return s.enrich(ctx, role), nil
}

func (s *roleService) Delete(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, id string) error {
	roleID, err := parseID(id, "id")
	if err != nil {
		return err
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return notFoundOr(err, "roleNotFound", "role %s not found", id)
	}
	if role.IsSystem {
		return apperr.BadRequest("systemRole", "role %s is a system role", role.Name)
	}

	if _, err := s.repo.Delete(ctx, roleID); err != nil {
		return apperr.Internal("delete role: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionRoleDeleted, role.ID.String(), role.Name, nil)
	return nil
}

func (s *roleService) GetByID(ctx context.Context, id string) (*EnrichedRole, error) {
	roleID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFoundOr(err, "roleNotFound", "role %s not found", id)
	}
	return s.enrich(ctx, role), nil
}

func (s *roleService) List(ctx context.Context) ([]EnrichedRole, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("list roles: %s", err.Error())
	}

	enriched := make([]EnrichedRole, len(roles))
	for i := range roles {
		enriched[i] = *s.enrich(ctx, &roles[i])
	}
	return enriched, nil
}

// enrich resolves permission ids over the bus with a bounded worker pool.
// Lookups are best-effort: a failed or missing permission is logged and
// dropped from the reply while the rest of the role is returned intact.
func (s *roleService) enrich(ctx context.Context, role *model.Role) *EnrichedRole {
	out := &EnrichedRole{Role: *role, Permissions: []rpcclient.PermissionRef{}}
	if len(role.PermissionIDs) == 0 {
		return out
	}

	results := make([]*rpcclient.PermissionRef, len(role.PermissionIDs))
	ids := make(chan int)

	var wg sync.WaitGroup
	workers := enrichWorkers
	if len(role.PermissionIDs) < workers {
		workers = len(role.PermissionIDs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ids {
				ref, err := s.permissions.GetByID(ctx, role.PermissionIDs[i])
				if err != nil {
					log.Printf("role %s: skipping permission %s: %v", role.Name, role.PermissionIDs[i], err)
					continue
				}
				results[i] = ref
			}
		}()
	}
	for i := range role.PermissionIDs {
		ids <- i
	}
	close(ids)
	wg.Wait()

	for _, ref := range results {
		if ref != nil {
			out.Permissions = append(out.Permissions, *ref)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
