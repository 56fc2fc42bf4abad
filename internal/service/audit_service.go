package service

import (
	"context"
	"encoding/json"
	"log"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/websocket"
	"backend/pkg/pagination"
)

// AuditService is the append-only "who did what to which aggregate when"
// sink. Record is fire-and-forget: a failed write is logged and lost, never
// surfaced to the parent command.
type AuditService interface {
	Record(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, action, entityID, entityName string, details map[string]interface{})
	List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
	hub  *websocket.Hub // optional dashboard broadcast
}

func NewAuditService(repo repository.AuditRepository, hub *websocket.Hub) AuditService {
	return &auditService{repo: repo, hub: hub}
}

func (s *auditService) Record(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, action, entityID, entityName string, details map[string]interface{}) {
	payload, _ := json.Marshal(details)

	entry := model.AuditLog{
		ActorID:    caller.ID,
		ActorName:  caller.Name,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
		RequestID:  tracing.RequestID,
	}

	if err := s.repo.Log(ctx, &entry); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
		return
	}

	if s.hub != nil {
		event, _ := json.Marshal(entry)
		s.hub.Publish(event)
	}
}

func (s *auditService) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	p := pagination.Clamp(page, limit)
	return s.repo.List(ctx, action, p.Page, p.Limit)
}
