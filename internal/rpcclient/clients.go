// Package rpcclient holds the typed request/reply proxies a service uses to
// reach aggregates owned by another service. Each proxy has one method per
// remote operation and is injected like a repository so tests can swap in a
// fake.
package rpcclient

import (
	"context"

	"backend/internal/rpc"
)

// PermissionRef is the slice of a Permission another service is allowed to see.
type PermissionRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// PermissionClient resolves permission ids owned by the permission store.
type PermissionClient interface {
	GetByID(ctx context.Context, id string) (*PermissionRef, error)
}

type permissionClient struct {
	bus rpc.Bus
}

func NewPermissionClient(bus rpc.Bus) PermissionClient {
	return &permissionClient{bus: bus}
}

func (c *permissionClient) GetByID(ctx context.Context, id string) (*PermissionRef, error) {
	var ref PermissionRef
	env := rpc.Envelope{ID: id}
	if err := c.bus.Request(ctx, rpc.ServiceIdentity, rpc.PermissionGetByID, env, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// MaterialRef is the slice of a Material visible across service boundaries.
type MaterialRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// MaterialClient validates material references owned by the catalog service.
type MaterialClient interface {
	GetByID(ctx context.Context, id string) (*MaterialRef, error)
}

type materialClient struct {
	bus rpc.Bus
}

func NewMaterialClient(bus rpc.Bus) MaterialClient {
	return &materialClient{bus: bus}
}

func (c *materialClient) GetByID(ctx context.Context, id string) (*MaterialRef, error) {
	var ref MaterialRef
	env := rpc.Envelope{ID: id}
	if err := c.bus.Request(ctx, rpc.ServiceCatalog, rpc.MaterialsGetByID, env, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// DrugRef is the slice of a Drug visible across service boundaries.
type DrugRef struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// DrugClient validates drug references owned by the catalog service.
type DrugClient interface {
	GetByID(ctx context.Context, id string) (*DrugRef, error)
}

type drugClient struct {
	bus rpc.Bus
}

func NewDrugClient(bus rpc.Bus) DrugClient {
	return &drugClient{bus: bus}
}

func (c *drugClient) GetByID(ctx context.Context, id string) (*DrugRef, error) {
	var ref DrugRef
	env := rpc.Envelope{ID: id}
	if err := c.bus.Request(ctx, rpc.ServiceCatalog, rpc.DrugsGetByID, env, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// CreateQCSampleCmd mirrors the quality service's create command.
type CreateQCSampleCmd struct {
	SampleNumber string `json:"sample_number"`
	SourceType   string `json:"source_type"`
	SourceID     string `json:"source_id"`
	MaterialID   string `json:"material_id,omitempty"`
	Priority     string `json:"priority,omitempty"`
}

// QCSampleRef is the reply slice of a created QC sample.
type QCSampleRef struct {
	ID           string `json:"id"`
	SampleNumber string `json:"sample_number"`
	Status       string `json:"status"`
}

// QCSampleClient creates linked QC samples in the quality service.
type QCSampleClient interface {
	Create(ctx context.Context, caller rpc.Caller, cmd CreateQCSampleCmd) (*QCSampleRef, error)
}

type qcSampleClient struct {
	bus rpc.Bus
}

func NewQCSampleClient(bus rpc.Bus) QCSampleClient {
	return &qcSampleClient{bus: bus}
}

func (c *qcSampleClient) Create(ctx context.Context, caller rpc.Caller, cmd CreateQCSampleCmd) (*QCSampleRef, error) {
	env, err := rpc.NewEnvelope(cmd)
	if err != nil {
		return nil, err
	}
	env.User = caller

	var ref QCSampleRef
	if err := c.bus.Request(ctx, rpc.ServiceQuality, rpc.QCSamplesCreate, env, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// CreatePutawayCmd mirrors the warehouse service's create command.
type CreatePutawayCmd struct {
	PutawayNumber string `json:"putaway_number"`
	BatchID       string `json:"batch_id"`
	DrugID        string `json:"drug_id"`
	Quantity      string `json:"quantity"`
	Location      string `json:"location,omitempty"`
}

// PutawayRef is the reply slice of a created putaway.
type PutawayRef struct {
	ID            string `json:"id"`
	PutawayNumber string `json:"putaway_number"`
	Status        string `json:"status"`
}

// PutawayClient registers finished goods with the warehouse service.
type PutawayClient interface {
	Create(ctx context.Context, caller rpc.Caller, cmd CreatePutawayCmd) (*PutawayRef, error)
}

type putawayClient struct {
	bus rpc.Bus
}

func NewPutawayClient(bus rpc.Bus) PutawayClient {
	return &putawayClient{bus: bus}
}

func (c *putawayClient) Create(ctx context.Context, caller rpc.Caller, cmd CreatePutawayCmd) (*PutawayRef, error) {
	env, err := rpc.NewEnvelope(cmd)
	if err != nil {
		return nil, err
	}
	env.User = caller

	var ref PutawayRef
	if err := c.bus.Request(ctx, rpc.ServiceWarehouse, rpc.PutawaysCreate, env, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
