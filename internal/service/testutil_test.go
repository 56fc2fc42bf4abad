package service

import (
	"context"
	"testing"

	"backend/internal/database"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/internal/rpcclient"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testCaller = rpc.Caller{ID: "7b6d3c2f-3a86-4a5e-9c43-111111111111", Name: "tester"}
var testTracing = rpc.Tracing{RequestID: "req-test"}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestAudit(t *testing.T, db *gorm.DB) AuditService {
	t.Helper()
	return NewAuditService(repository.NewAuditRepository(db), nil)
}

// fakeMaterialClient resolves from a fixed map, standing in for the catalog
// service across the bus.
type fakeMaterialClient struct {
	materials map[string]rpcclient.MaterialRef
}

func (f *fakeMaterialClient) GetByID(ctx context.Context, id string) (*rpcclient.MaterialRef, error) {
	ref, ok := f.materials[id]
	if !ok {
		return nil, apperr.NotFound("materialNotFound", "material %s not found", id)
	}
	return &ref, nil
}

type fakeDrugClient struct {
	drugs map[string]rpcclient.DrugRef
}

func (f *fakeDrugClient) GetByID(ctx context.Context, id string) (*rpcclient.DrugRef, error) {
	ref, ok := f.drugs[id]
	if !ok {
		return nil, apperr.NotFound("drugNotFound", "drug %s not found", id)
	}
	return &ref, nil
}

type fakePermissionClient struct {
	permissions map[string]rpcclient.PermissionRef
}

func (f *fakePermissionClient) GetByID(ctx context.Context, id string) (*rpcclient.PermissionRef, error) {
	ref, ok := f.permissions[id]
	if !ok {
		return nil, apperr.NotFound("permissionNotFound", "permission %s not found", id)
	}
	return &ref, nil
}

// fakeQCSampleClient records the commands it receives and hands back canned
// replies.
type fakeQCSampleClient struct {
	created []rpcclient.CreateQCSampleCmd
	reply   rpcclient.QCSampleRef
	err     error
}

func (f *fakeQCSampleClient) Create(ctx context.Context, caller rpc.Caller, cmd rpcclient.CreateQCSampleCmd) (*rpcclient.QCSampleRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cmd)
	reply := f.reply
	reply.SampleNumber = cmd.SampleNumber
	return &reply, nil
}

type fakePutawayClient struct {
	created []rpcclient.CreatePutawayCmd
	reply   rpcclient.PutawayRef
	err     error
}

func (f *fakePutawayClient) Create(ctx context.Context, caller rpc.Caller, cmd rpcclient.CreatePutawayCmd) (*rpcclient.PutawayRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cmd)
	reply := f.reply
	reply.PutawayNumber = cmd.PutawayNumber
	return &reply, nil
}
