package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	Name    string  `validate:"required,min=3"`
	Address *string `validate:"omitnil,notblank"`
	Kind    string  `validate:"omitempty,probe_kind"`
}

func init() {
	RegisterValidation("probe_kind", func(v string) bool { return v == "a" || v == "b" })
}

func strPtr(s string) *string { return &s }

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&probe{Name: "abc"}))
	assert.NoError(t, ValidateStruct(&probe{Name: "abc", Address: strPtr("Dock 4"), Kind: "b"}))

	err := ValidateStruct(&probe{Name: "ab"})
	require.Error(t, err)
	assert.Equal(t, "Name: min=3", ValidationMessage(err))

	err = ValidateStruct(&probe{Name: "abc", Address: strPtr("   ")})
	require.Error(t, err)
	assert.Equal(t, "Address: notblank", ValidationMessage(err))

	err = ValidateStruct(&probe{Name: "abc", Kind: "z"})
	require.Error(t, err)
	assert.Equal(t, "Kind: probe_kind", ValidationMessage(err))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;bob&lt;/b&gt;", SanitizeString("  <b>bob</b> "))
	assert.Nil(t, SanitizeOptional(nil))
	assert.Equal(t, "Pier 9", *SanitizeOptional(strPtr("Pier\x00 9")))
}
