package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"go-carpet-shop/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDBNotFound(t *testing.T) {
	err := FromDB(gorm.ErrRecordNotFound, "Locality")
	assert.Equal(t, fiber.StatusNotFound, err.Status)
	assert.Equal(t, FieldError{Code: CodeNotFound, Message: "Locality not found", Field: "id"}, err.First())
}

func TestFromDBPostgresUnique(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.co) already exists."}
	err := FromDB(pgErr, "Supplier")
	assert.Equal(t, fiber.StatusConflict, err.Status)
	assert.Equal(t, CodeIntegrity, err.First().Code)
	assert.Equal(t, "email", err.First().Field)
	assert.Equal(t, "Supplier with this email already exists", err.First().Message)
}

func TestFromDBPostgresForeignKey(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", Detail: `Key (locality_id)=(x) is still referenced from table "neighborhoods".`}
	err := FromDB(pgErr, "Locality")
	assert.Equal(t, CodeIntegrity, err.First().Code)
	assert.Equal(t, "locality", err.First().Field)
}

func TestFromDBSqliteUnique(t *testing.T) {
	err := FromDB(errors.New("UNIQUE constraint failed: car_models.name, car_models.year"), "CarModel")
	assert.Equal(t, CodeIntegrity, err.First().Code)
	assert.Equal(t, "name, year", err.First().Field)
	assert.Equal(t, "CarModel with this name and year already exists", err.First().Message)
}

func TestFromDBMasksUnknownDriverErrors(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := FromDB(cause, "Locality")
	assert.Equal(t, CodeDatabase, err.First().Code)
	assert.NotContains(t, err.First().Message, "connection reset")
	assert.ErrorIs(t, err, cause)
}

func TestFromDBPassesThroughAppErrors(t *testing.T) {
	orig := Validation("stock", "must be at least 0")
	assert.Same(t, orig, FromDB(orig, "InventoryItem"))
}

func TestFromValidator(t *testing.T) {
	type request struct {
		Name  string `json:"name" validate:"required"`
		Stock int    `json:"stock" validate:"gte=0"`
	}
	err := FromValidator(validator.ValidateStruct(&request{Stock: -1}))
	require.NotNil(t, err)
	require.Len(t, err.Errors, 2)
	assert.Equal(t, FieldError{Code: CodeInvalidInput, Message: "this field is required", Field: "name"}, err.Errors[0])
	assert.Equal(t, FieldError{Code: CodeValidation, Message: "must be at least 0", Field: "stock"}, err.Errors[1])

	assert.Nil(t, Check(&request{Name: "ok"}))
}

func TestJoin(t *testing.T) {
	err := Join(nil, Invalid("a", "x"), Validation("b", "y"))
	assert.Equal(t, fiber.StatusBadRequest, err.Status)
	assert.Len(t, err.Errors, 2)
	assert.True(t, err.Has(CodeValidation))
	assert.Nil(t, Join(nil, nil))
}

func TestRespondHidesUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Respond(c, errors.New("pq: secret internal detail"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, CodeUnknown, payload.Errors[0].Code)
	assert.NotContains(t, string(body), "secret")
}
