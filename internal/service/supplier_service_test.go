package service

import (
	"context"
	"testing"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierCRUD(t *testing.T) {
	repo := newStubSupplierRepo()
	svc := NewSupplierService(repo, newStubLotRepo())

	created, err := svc.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme Textiles"})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme Textiles"})
	require.Error(t, err)
	assert.Equal(t, "DuplicateSupplierName", apierror.CodeOf(err))

	phone := "555-0101"
	updated, err := svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSupplierRequest{Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSupplierDelete_BlockedByLots(t *testing.T) {
	repo := newStubSupplierRepo()
	lotRepo := newStubLotRepo()
	svc := NewSupplierService(repo, lotRepo)

	created, err := svc.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme Textiles"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	lotRepo.lots[uuid.New()] = &model.Lot{
		ID: uuid.New(), LotNumber: "LOT-1", Type: model.LotTypeSupplier,
		SupplierID: &id, Quantity: 10, RemainingQuantity: 10,
		Status: model.LotStatusActive,
	}

	err = svc.Delete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "ReferencedByLots", apierror.CodeOf(err))

	e, ok := apierror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindDependency, e.Kind)
}

func TestSupplierDelete_RemovesUnreferenced(t *testing.T) {
	repo := newStubSupplierRepo()
	svc := NewSupplierService(repo, newStubLotRepo())

	created, err := svc.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme Textiles"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.Delete(context.Background(), id))
	_, err = svc.Get(context.Background(), id)
	assert.Equal(t, "SupplierNotFound", apierror.CodeOf(err))
}
