package validation

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *SchemaValidator {
	t.Helper()
	sv, err := NewSchemaValidator()
	require.NoError(t, err)
	return sv
}

func TestSchemaValidator_FoodRecord(t *testing.T) {
	sv := newValidator(t)

	tests := []struct {
		name  string
		doc   string
		valid bool
		field string
	}{
		{
			name:  "minimal record",
			doc:   `{"id":"f1","name":"닭가슴살 도시락","calories":450,"protein":32,"fat":9,"carbs":55,"price":5900,"tags":["고단백"]}`,
			valid: true,
		},
		{
			name:  "optional fields may be null",
			doc:   `{"id":"f2","name":"샐러드","calories":180,"protein":6,"fat":4,"carbs":20,"price":4500,"tags":[],"sodium":null,"allergies":null}`,
			valid: true,
		},
		{
			name:  "missing price",
			doc:   `{"id":"f3","name":"김밥","calories":400,"protein":10,"fat":8,"carbs":60,"tags":[]}`,
			valid: false,
			field: "(root)",
		},
		{
			name:  "negative calories",
			doc:   `{"id":"f4","name":"x","calories":-1,"protein":1,"fat":1,"carbs":1,"price":1000,"tags":[]}`,
			valid: false,
			field: "calories",
		},
		{
			name:  "numeric id",
			doc:   `{"id":12,"name":"x","calories":1,"protein":1,"fat":1,"carbs":1,"price":1000,"tags":[]}`,
			valid: false,
			field: "id",
		},
		{
			name:  "score out of range",
			doc:   `{"id":"f5","name":"x","calories":1,"protein":1,"fat":1,"carbs":1,"price":1000,"tags":[],"score":1.5}`,
			valid: false,
			field: "score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateFoodRecord([]byte(tt.doc))
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.NoError(t, result.Err())
				assert.Nil(t, result.ToAPIError())
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Error(t, result.Err())
		})
	}
}

func TestSchemaValidator_MalformedDocument(t *testing.T) {
	sv := newValidator(t)

	result := sv.ValidateFoodRecord("{not json")
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "MALFORMED_DOCUMENT", result.Errors[0].Code)
}

func TestSchemaValidator_UserProfile(t *testing.T) {
	sv := newValidator(t)

	valid := map[string]interface{}{
		"gender":         "female",
		"age":            28,
		"height_cm":      162,
		"weight_kg":      55,
		"activity_level": "medium",
		"goal":           "maintain",
		"meal_count":     3,
		"budget":         60000,
		"budget_period":  "week",
		"allergies":      []string{"갑각류"},
	}
	assert.True(t, sv.ValidateUserProfile(valid).Valid)

	invalid := map[string]interface{}{
		"gender":         "female",
		"age":            12,
		"height_cm":      162,
		"weight_kg":      55,
		"activity_level": "medium",
		"goal":           "maintain",
		"meal_count":     3,
		"budget":         8000,
	}
	result := sv.ValidateUserProfile(invalid)
	assert.False(t, result.Valid)

	apiErr := result.ToAPIError()
	require.NotNil(t, apiErr)
	errBody := apiErr["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	sv := newValidator(t)

	result := sv.validate("missing", "{}")
	assert.False(t, result.Valid)
	assert.Equal(t, "SCHEMA_NOT_FOUND", result.Errors[0].Code)
	assert.Equal(t, []string{FoodRecordSchema, UserProfileSchema}, sv.GetAvailableSchemas())
}

func TestSchemaValidator_LoadSchemaFromFS(t *testing.T) {
	sv := newValidator(t)

	permissive := []byte(`{"type":"object"}`)
	fsys := fstest.MapFS{
		"custom/food-record.json":  {Data: permissive},
		"custom/user-profile.json": {Data: permissive},
	}
	require.NoError(t, sv.LoadSchemaFromFS(fsys, "custom"))
	assert.True(t, sv.ValidateFoodRecord(`{"anything":true}`).Valid)

	err := sv.LoadSchemaFromFS(fstest.MapFS{}, "custom")
	assert.Error(t, err)
}
