package service

import (
	"testing"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocalityNameIsNormalised(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAddressServices(db).Localities

	loc, err := svc.Create(&CreateLocalityRequest{Name: "  san   martin "}, "")
	require.NoError(t, err)
	assert.Equal(t, "San Martin", loc.Name)

	_, err = svc.Create(&CreateLocalityRequest{Name: "123"}, "")
	requireCode(t, err, apperror.CodeValidation, "name")

	_, err = svc.Create(&CreateLocalityRequest{}, "")
	requireCode(t, err, apperror.CodeInvalidInput, "name")
}

func TestLocalityDeleteIsRestricted(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewAddressServices(db)

	loc, err := s.Localities.Create(&CreateLocalityRequest{Name: "Centro"}, "")
	require.NoError(t, err)
	nb, err := s.Neighborhoods.Create(&CreateNeighborhoodRequest{Name: "Norte", LocalityID: loc.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, "Centro", nb.Locality.Name)

	err = s.Localities.Delete(loc.ID, "")
	requireCode(t, err, apperror.CodeIntegrity, "id")
	assert.EqualValues(t, 1, testutil.Count[model.Locality](t, db))

	require.NoError(t, s.Neighborhoods.Delete(nb.ID, ""))
	require.NoError(t, s.Localities.Delete(loc.ID, ""))
	assert.Zero(t, testutil.Count[model.Locality](t, db))

	err = s.Localities.Delete(loc.ID, "")
	requireCode(t, err, apperror.CodeNotFound, "id")
}

func TestLocalityConcurrentCreate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAddressServices(db).Localities

	errs := make([]error, 2)
	var g errgroup.Group
	for i := range errs {
		i := i
		g.Go(func() error {
			_, errs[i] = svc.Create(&CreateLocalityRequest{Name: "Centro"}, "")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	require.Len(t, failed, 1)
	requireCode(t, failed[0], apperror.CodeIntegrity, "name")
	assert.EqualValues(t, 1, testutil.Count[model.Locality](t, db))
}

func TestNeighborhoodUniqueWithinLocality(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewAddressServices(db)
	a := testutil.Create(t, db, &model.Locality{Name: "Centro"})
	b := testutil.Create(t, db, &model.Locality{Name: "Sur"})

	_, err := s.Neighborhoods.Create(&CreateNeighborhoodRequest{Name: "Norte", LocalityID: a.ID}, "")
	require.NoError(t, err)
	_, err = s.Neighborhoods.Create(&CreateNeighborhoodRequest{Name: "Norte", LocalityID: b.ID}, "")
	require.NoError(t, err)

	_, err = s.Neighborhoods.Create(&CreateNeighborhoodRequest{Name: "Norte", LocalityID: a.ID}, "")
	requireCode(t, err, apperror.CodeIntegrity, "name, locality")
}

func TestAddressUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewAddressServices(db)
	addr := testutil.Address(t, db)

	_, err := s.Addresses.Update(addr.ID, &UpdateAddressRequest{}, "")
	requireCode(t, err, apperror.CodeInvalidInput, "")

	out, err := s.Addresses.Update(addr.ID, &UpdateAddressRequest{Details: ptr("  Calle 9 #12 ")}, "")
	require.NoError(t, err)
	assert.Equal(t, "Calle 9 #12", out.Details)
	require.NotNil(t, out.Neighborhood)
	assert.NotNil(t, out.Neighborhood.Locality)
}
