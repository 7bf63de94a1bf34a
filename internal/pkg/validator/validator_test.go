package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type gameForm struct {
	Name      string `json:"name" validate:"required"`
	Location  string `json:"location" validate:"location"`
	SortOrder string `json:"sort_order" validate:"sort_order"`
	Tokens    int    `json:"tokens" validate:"gt=0"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(gameForm{Location: "moon", SortOrder: "sideways"})

	assert.Equal(t, "This field is required", errs["name"])
	assert.Equal(t, "Invalid location. Must be: downtown, uptown, mall, airport", errs["location"])
	assert.Equal(t, "Invalid sort order. Must be: asc or desc", errs["sort_order"])
	assert.Equal(t, "Value must be greater than 0", errs["tokens"])
}

func TestValidatePasses(t *testing.T) {
	assert.Nil(t, Validate(gameForm{Name: "Pinball", Location: "mall", Tokens: 5}))
}

func TestValidateVarRole(t *testing.T) {
	assert.NoError(t, ValidateVar("cashier", "role"))
	assert.Error(t, ValidateVar("owner", "role"))
	assert.Error(t, ValidateVar("", "role"))
}
