package repository_test

import (
	"testing"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoDeleteRestrict(t *testing.T) {
	db := testutil.NewDB(t)
	localities := repository.NewRepo[model.Locality](db, "Locality")
	neighborhoods := repository.NewRepo[model.Neighborhood](db, "Neighborhood")

	loc := testutil.Create(t, db, &model.Locality{Name: "Centro"})
	nb := testutil.Create(t, db, &model.Neighborhood{Name: "Norte", LocalityID: loc.ID})
	guard := repository.Restrict(&model.Neighborhood{}, "locality_id", "neighborhoods")

	err := localities.Delete(loc.ID, guard)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeIntegrity, apperror.As(err).First().Code)
	assert.EqualValues(t, 1, testutil.Count[model.Locality](t, db))

	require.NoError(t, neighborhoods.Delete(nb.ID))
	require.NoError(t, localities.Delete(loc.ID, guard))
	assert.EqualValues(t, 0, testutil.Count[model.Locality](t, db))
}

func TestRepoNotFoundNamesField(t *testing.T) {
	db := testutil.NewDB(t)
	localities := repository.NewRepo[model.Locality](db, "Locality")

	_, err := localities.Get("locality_id", uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.FieldError{Code: apperror.CodeNotFound, Message: "Locality not found", Field: "locality_id"}, apperror.As(err).First())

	err = localities.Delete(uuid.New())
	assert.Equal(t, apperror.CodeNotFound, apperror.As(err).First().Code)
}

func TestRepoGetMany(t *testing.T) {
	db := testutil.NewDB(t)
	types := repository.NewRepo[model.CarType](db, "CarType")
	a := testutil.Create(t, db, &model.CarType{Name: "Sedan"})
	b := testutil.Create(t, db, &model.CarType{Name: "Pickup"})

	rows, err := types.GetMany("type_ids", []uuid.UUID{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = types.GetMany("type_ids", []uuid.UUID{a.ID, uuid.New()})
	assert.Equal(t, "type_ids", apperror.As(err).First().Field)
}

func TestRepoCreateTranslatesDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	localities := repository.NewRepo[model.Locality](db, "Locality")

	require.NoError(t, localities.Create(&model.Locality{Name: "Centro"}))
	err := localities.Create(&model.Locality{Name: "Centro"})
	require.Error(t, err)
	first := apperror.As(err).First()
	assert.Equal(t, apperror.CodeIntegrity, first.Code)
	assert.Equal(t, "name", first.Field)
}

func TestSeedDefaults(t *testing.T) {
	db := testutil.NewDB(t)
	perms := repository.NewPermissionRepo(db)
	groups := repository.NewGroupRepo(db)

	require.NoError(t, perms.SeedDefaults())
	require.NoError(t, groups.SeedDefaults())
	// idempotent
	require.NoError(t, perms.SeedDefaults())
	require.NoError(t, groups.SeedDefaults())

	all, err := perms.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultPermissions()))

	admin, err := groups.FindByName(model.GroupAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Permissions, len(all))

	client, err := groups.FindByName(model.GroupClient)
	require.NoError(t, err)
	assert.Len(t, client.Permissions, len(model.DefaultGroupPermissions(model.GroupClient)))

	list, err := groups.FindAll()
	require.NoError(t, err)
	assert.Len(t, list, len(model.DefaultGroupNames))
}

func TestUserRepoDeactivate(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	u := testutil.User(t, db, "a@b.co", "Secret#123")

	require.NoError(t, users.Deactivate(u.ID, "tester"))
	got, err := users.FindByID(u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.NotEmpty(t, got.TokenVersion)
}
