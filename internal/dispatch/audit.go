package dispatch

import (
	"context"

	"backend/internal/rpc"
	"backend/internal/service"
	"backend/pkg/pagination"
)

// NewAuditDispatcher exposes the audit trail read side.
func NewAuditDispatcher(audit service.AuditService) *rpc.Dispatcher {
	d := rpc.NewDispatcher(rpc.ServiceAudit)

	d.Handle(rpc.AuditList, func(ctx context.Context, env rpc.Envelope) (interface{}, error) {
		var q struct {
			rpc.ListQuery
			Action string `json:"action"`
		}
		if err := bindFilter(env, &q); err != nil {
			return nil, err
		}
		logs, total, err := audit.List(ctx, q.Action, q.Page, q.Limit)
		if err != nil {
			return nil, err
		}
		p := pagination.Clamp(q.Page, q.Limit)
		return rpc.Page{Docs: logs, Limit: p.Limit, Page: p.Page, Total: total}, nil
	})

	return d
}
