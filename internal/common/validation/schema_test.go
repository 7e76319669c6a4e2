package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"activityName", "email"},
		Properties: map[string]Property{
			"activityName": {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(100)},
			"email":        {Type: "string", Format: "email", MaxLength: IntPtr(254)},
		},
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"ana@mergington.edu", "first.last+club@school.example.org"}
	invalid := []string{"", "ana", "ana@", "@mergington.edu", "ana@mergington", "ana @mergington.edu"}

	for _, e := range valid {
		assert.True(t, ValidateEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidateEmail(e), e)
	}
}

func TestValidateInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"activityName": "Chess Club",
			"email":        "ana@mergington.edu",
		}, signupSchema())
		assert.True(t, res.Valid)
		assert.Nil(t, res.FirstError())
	})

	t.Run("blank email is reported once as missing", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"activityName": "Chess Club",
			"email":        "   ",
		}, signupSchema())
		require.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.True(t, res.HasErrors("email"))
		assert.True(t, res.HasCode("REQUIRED_FIELD_MISSING"))
	})

	t.Run("malformed email", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"activityName": "Chess Club",
			"email":        "not-an-email",
		}, signupSchema())
		require.False(t, res.Valid)
		assert.True(t, res.HasCode("INVALID_EMAIL"))
		assert.Equal(t, []string{"email: value must be an email address"}, res.GetErrorMessages())
	})

	t.Run("extra field rejected", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"activityName": "Chess Club",
			"email":        "ana@mergington.edu",
			"role":         "admin",
		}, signupSchema())
		assert.False(t, res.Valid)
		assert.True(t, res.HasCode("EXTRA_FIELD"))
	})

	t.Run("wrong type", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"activityName": 42,
			"email":        "ana@mergington.edu",
		}, signupSchema())
		assert.False(t, res.Valid)
		assert.True(t, res.HasCode("INVALID_TYPE"))
	})
}
