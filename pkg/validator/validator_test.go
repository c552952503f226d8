package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/pkg/validator"
)

type orderData struct {
	ClientEmail string `json:"client_email" validate:"required,email"`
	ClientName  string `json:"client_name" validate:"max=10"`
	Internal    string `json:"-" validate:"required"`
}

type levels struct {
	Current *int   `json:"currentLevel" validate:"required,gte=0,lte=500"`
	Nivel   string `json:"nivel" validate:"required,oneof=4 6 8"`
}

func intPtr(v int) *int { return &v }

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		err := validator.Struct(orderData{ClientEmail: "ana@school.cl", Internal: "x"})
		assert.NoError(t, err)
	})

	t.Run("uses json names", func(t *testing.T) {
		t.Parallel()
		err := validator.Struct(orderData{ClientEmail: "nope", ClientName: "a very long name", Internal: "x"})
		require.Error(t, err)

		var ve validator.Errors
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"must be a valid email address"}, ve["client_email"])
		assert.Equal(t, []string{"must be at most 10 characters"}, ve["client_name"])
	})

	t.Run("required and ranges", func(t *testing.T) {
		t.Parallel()
		err := validator.Struct(levels{})
		var ve validator.Errors
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"is required"}, ve["currentLevel"])
		assert.Equal(t, []string{"is required"}, ve["nivel"])

		err = validator.Struct(levels{Current: intPtr(900), Nivel: "5"})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"must be less than or equal to 500"}, ve["currentLevel"])
		assert.Equal(t, []string{"must be one of: 4, 6, 8"}, ve["nivel"])
	})

	t.Run("zero pointer value passes required", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Struct(levels{Current: intPtr(0), Nivel: "4"}))
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()
	e := validator.Errors{}
	e.Add("subject", "is required")
	e.Add("schoolName", "is required")
	assert.Equal(t, "validation failed: schoolName: is required; subject: is required", e.Error())
	assert.Equal(t, map[string][]string(e), e.FieldErrors())
	assert.Equal(t, "validation failed", validator.Errors{}.Error())
}
