package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"notblank,simpleemail"`
	Note  string `json:"note" validate:"max=5"`
}

func TestIsEmail(t *testing.T) {
	valid := []string{"asha@example.org", "a.b+c@college.ac.in", "x@y.z"}
	invalid := []string{"", "asha", "asha@example", "as ha@example.org", "@example.org", "asha@.org x"}

	for _, s := range valid {
		assert.Truef(t, IsEmail(s), "%q should be valid", s)
	}
	for _, s := range invalid {
		assert.Falsef(t, IsEmail(s), "%q should be invalid", s)
	}
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(sample{Name: "Asha", Email: "asha@example.org"}))

	err := v.Validate(sample{Name: "   ", Email: "not-an-email", Note: "too long"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	assert.Equal(t, "notblank", ve.Rules["name"])
	assert.Equal(t, "simpleemail", ve.Rules["email"])
	assert.Equal(t, "Must be at most 5 characters long", ve.Errors["note"])
	assert.True(t, ve.Failed("simpleemail"))
	assert.False(t, ve.Failed("url"))
	assert.Contains(t, err.Error(), "field 'email'")
}
