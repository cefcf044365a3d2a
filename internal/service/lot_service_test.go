package service

import (
	"context"
	"testing"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	lastLot      string
	lastSupplier string
}

func (r *fakeRenderer) LotReport(lot dto.LotResponse, supplierName string) ([]byte, error) {
	r.lastLot = lot.LotNumber
	r.lastSupplier = supplierName
	return []byte("%PDF-stub"), nil
}

// conflictingLotRepo simulates a concurrent writer beating every ledger
// mutation to the version bump.
type conflictingLotRepo struct {
	*stubLotRepo
}

func (r *conflictingLotRepo) AppendAdjustment(_ context.Context, _ *model.Lot, _ *model.LotAdjustment) error {
	return repository.ErrLedgerVersionConflict
}

func (r *conflictingLotRepo) RemoveAdjustment(_ context.Context, _ *model.Lot, _ uuid.UUID) error {
	return repository.ErrLedgerVersionConflict
}

type lotFixture struct {
	lotRepo      *stubLotRepo
	supplierRepo *stubSupplierRepo
	renderer     *fakeRenderer
	svc          LotService
}

func newLotFixture() *lotFixture {
	f := &lotFixture{
		lotRepo:      newStubLotRepo(),
		supplierRepo: newStubSupplierRepo(),
		renderer:     &fakeRenderer{},
	}
	f.svc = NewLotService(f.lotRepo, f.supplierRepo, f.renderer)
	return f
}

func (f *lotFixture) seedSupplier(name string) *model.Supplier {
	s := &model.Supplier{ID: uuid.New(), Name: name, Active: true}
	f.supplierRepo.suppliers[s.ID] = s
	return s
}

func selfLotReq(number string, qty int) dto.CreateLotRequest {
	return dto.CreateLotRequest{
		LotNumber: number,
		Type:      model.LotTypeSelfManufacture,
		BasePrice: decimal.NewFromInt(10),
		Quantity:  qty,
	}
}

func TestCreateLot_RemainingStartsAtQuantity(t *testing.T) {
	f := newLotFixture()

	resp, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 100), "tester")
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Quantity)
	assert.Equal(t, 100, resp.RemainingQuantity)
	assert.Equal(t, model.LotStatusActive, resp.Status)
	assert.Empty(t, resp.Adjustments)
}

func TestCreateLot_NonPositiveQuantity(t *testing.T) {
	f := newLotFixture()

	for _, qty := range []int{0, -5} {
		_, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", qty), "tester")
		require.Error(t, err)
		assert.Equal(t, "NonPositiveQuantity", apierror.CodeOf(err))
	}
}

func TestCreateLot_SupplierRules(t *testing.T) {
	f := newLotFixture()
	sup := f.seedSupplier("Acme Textiles")

	// SUPPLIER lots must name a supplier.
	req := selfLotReq("LOT-1", 10)
	req.Type = model.LotTypeSupplier
	_, err := f.svc.Create(context.Background(), req, "tester")
	require.Error(t, err)
	assert.Equal(t, "SupplierRequired", apierror.CodeOf(err))

	unknown := uuid.New().String()
	req.SupplierID = &unknown
	_, err = f.svc.Create(context.Background(), req, "tester")
	require.Error(t, err)
	assert.Equal(t, "SupplierNotFound", apierror.CodeOf(err))

	sid := sup.ID.String()
	req.SupplierID = &sid
	resp, err := f.svc.Create(context.Background(), req, "tester")
	require.NoError(t, err)
	require.NotNil(t, resp.SupplierID)
	assert.Equal(t, sid, *resp.SupplierID)

	// Self-manufactured lots must not.
	req2 := selfLotReq("LOT-2", 10)
	req2.SupplierID = &sid
	_, err = f.svc.Create(context.Background(), req2, "tester")
	require.Error(t, err)
	assert.Equal(t, "SupplierNotAllowed", apierror.CodeOf(err))
}

func TestCreateLot_DuplicateNumber(t *testing.T) {
	f := newLotFixture()

	_, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 10), "tester")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), selfLotReq("LOT-1", 20), "tester")
	require.Error(t, err)
	assert.Equal(t, "DuplicateLotNumber", apierror.CodeOf(err))
}

func TestLotLedger_AppendAndRemoveRecomputeRemaining(t *testing.T) {
	f := newLotFixture()
	created, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 100), "tester")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 10, Reason: "production run",
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 90, resp.RemainingQuantity)
	require.Len(t, resp.Adjustments, 1)
	firstID := uuid.MustParse(resp.Adjustments[0].ID)

	resp, err = f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentDamage, Quantity: 5,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 85, resp.RemainingQuantity)
	assert.Len(t, resp.Adjustments, 2)

	// Removing the first entry restores its quantity to the balance.
	resp, err = f.svc.RemoveAdjustment(context.Background(), id, firstID)
	require.NoError(t, err)
	assert.Equal(t, 95, resp.RemainingQuantity)
	assert.Len(t, resp.Adjustments, 1)
}

func TestLotLedger_AdjustmentValidation(t *testing.T) {
	f := newLotFixture()
	created, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 10), "tester")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 0,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, "NonPositiveQuantity", apierror.CodeOf(err))

	_, err = f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 11,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, "InsufficientRemaining", apierror.CodeOf(err))

	e, ok := apierror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindInvariant, e.Kind)
}

func TestLotCompleted_FreezesLedger(t *testing.T) {
	f := newLotFixture()
	created, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 10), "tester")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 2,
	}, "tester")
	require.NoError(t, err)
	adjID := uuid.MustParse(resp.Adjustments[0].ID)

	_, err = f.svc.SetStatus(context.Background(), id, model.LotStatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 1,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, "LotCompleted", apierror.CodeOf(err))

	_, err = f.svc.RemoveAdjustment(context.Background(), id, adjID)
	require.Error(t, err)
	assert.Equal(t, "LotCompleted", apierror.CodeOf(err))

	// Completion is terminal.
	_, err = f.svc.SetStatus(context.Background(), id, model.LotStatusActive)
	require.Error(t, err)
	assert.Equal(t, "LotCompleted", apierror.CodeOf(err))
}

func TestRemoveAdjustment_NotFound(t *testing.T) {
	f := newLotFixture()
	created, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 10), "tester")
	require.NoError(t, err)

	_, err = f.svc.RemoveAdjustment(context.Background(), uuid.MustParse(created.ID), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "AdjustmentNotFound", apierror.CodeOf(err))
}

func TestLotLedger_VersionConflictMapsToConcurrentUpdate(t *testing.T) {
	f := newLotFixture()
	created, err := f.svc.Create(context.Background(), selfLotReq("LOT-1", 100), "tester")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := f.svc.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 1,
	}, "tester")
	require.NoError(t, err)
	adjID := uuid.MustParse(resp.Adjustments[0].ID)

	conflicted := NewLotService(&conflictingLotRepo{f.lotRepo}, f.supplierRepo, f.renderer)

	_, err = conflicted.AppendAdjustment(context.Background(), id, dto.AppendAdjustmentRequest{
		Type: model.AdjustmentUsed, Quantity: 1,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, "ConcurrentLedgerUpdate", apierror.CodeOf(err))

	e, ok := apierror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)

	_, err = conflicted.RemoveAdjustment(context.Background(), id, adjID)
	require.Error(t, err)
	assert.Equal(t, "ConcurrentLedgerUpdate", apierror.CodeOf(err))
}

func TestLotReport_RendersWithSupplierName(t *testing.T) {
	f := newLotFixture()
	sup := f.seedSupplier("Acme Textiles")
	sid := sup.ID.String()

	req := selfLotReq("LOT-1", 10)
	req.Type = model.LotTypeSupplier
	req.SupplierID = &sid
	created, err := f.svc.Create(context.Background(), req, "tester")
	require.NoError(t, err)

	out, err := f.svc.Report(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "LOT-1", f.renderer.lastLot)
	assert.Equal(t, "Acme Textiles", f.renderer.lastSupplier)
}
