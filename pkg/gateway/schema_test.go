package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribeDescriptor() *ToolDescriptor {
	return &ToolDescriptor{
		Name:        "add_subscribe",
		Description: "Create a subscription for a media title.",
		Handler:     noopHandler,
		Parameters: []Parameter{
			{Name: "title", Type: "string", Description: "Media title", Required: true},
			{Name: "year", Type: "string", Description: "Release year", Required: true},
			{Name: "media_type", Type: "string", Description: "Kind of media", Required: true, Enum: []string{"movie", "tv"}},
			{Name: "season", Type: "integer", Description: "Season number"},
			{Name: "sites", Type: "array", Description: "Site ids", Items: "integer"},
			{Name: "meta", Type: "object", Description: "Extra metadata"},
		},
	}
}

func TestValidateArgumentsAllMissingFieldsReported(t *testing.T) {
	d := subscribeDescriptor()

	_, err := ValidateArguments(d, map[string]interface{}{}, false)
	require.Error(t, err)
	assert.Equal(t, FailureValidation, KindOf(err))
	// All missing required fields are named, not just the first.
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "year")
	assert.Contains(t, err.Error(), "media_type")
}

func TestValidateArgumentsMissingBeforeTypeChecks(t *testing.T) {
	d := subscribeDescriptor()

	// year is both missing and title is ill-typed; the missing-field error
	// wins because presence is checked first.
	_, err := ValidateArguments(d, map[string]interface{}{
		"title":      42.0,
		"media_type": "movie",
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
	assert.Contains(t, err.Error(), "year")
}

func TestValidateArgumentsTypeChecks(t *testing.T) {
	d := subscribeDescriptor()

	base := func() map[string]interface{} {
		return map[string]interface{}{
			"title":      "Parasite",
			"year":       "2019",
			"media_type": "movie",
		}
	}

	tests := []struct {
		name    string
		mutate  func(args map[string]interface{})
		wantErr string
	}{
		{
			name:    "string field with number value",
			mutate:  func(args map[string]interface{}) { args["title"] = 42.0 },
			wantErr: `field "title" must be of type string`,
		},
		{
			name:    "integer field with fraction",
			mutate:  func(args map[string]interface{}) { args["season"] = 1.5 },
			wantErr: `field "season" must be of type integer`,
		},
		{
			name:    "enum violation",
			mutate:  func(args map[string]interface{}) { args["media_type"] = "music" },
			wantErr: `field "media_type" must be one of`,
		},
		{
			name:    "array field with scalar",
			mutate:  func(args map[string]interface{}) { args["sites"] = "1,2" },
			wantErr: `field "sites" must be of type array`,
		},
		{
			name:    "array element type",
			mutate:  func(args map[string]interface{}) { args["sites"] = []interface{}{1.0, "two"} },
			wantErr: `element 1 is not of type integer`,
		},
		{
			name:    "object field with array",
			mutate:  func(args map[string]interface{}) { args["meta"] = []interface{}{} },
			wantErr: `field "meta" must be of type object`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := base()
			tt.mutate(args)
			_, err := ValidateArguments(d, args, false)
			require.Error(t, err)
			assert.Equal(t, FailureValidation, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateArgumentsAcceptsWellTyped(t *testing.T) {
	d := subscribeDescriptor()

	args, err := ValidateArguments(d, map[string]interface{}{
		"title":      "Parasite",
		"year":       "2019",
		"media_type": "movie",
		"season":     2.0,
		"sites":      []interface{}{1.0, 2.0},
		"meta":       map[string]interface{}{"source": "tmdb"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Parasite", args["title"])
	assert.Equal(t, 2.0, args["season"])
}

func TestValidateArgumentsTrimsStrings(t *testing.T) {
	d := subscribeDescriptor()

	args, err := ValidateArguments(d, map[string]interface{}{
		"title":      "  Parasite \n",
		"year":       "2019",
		"media_type": " movie ",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Parasite", args["title"])
	// Trimming happens before the enum check.
	assert.Equal(t, "movie", args["media_type"])
}

func TestValidateArgumentsUnknownFields(t *testing.T) {
	d := subscribeDescriptor()

	args := map[string]interface{}{
		"title":      "Parasite",
		"year":       "2019",
		"media_type": "movie",
		"zz_extra":   true,
		"aa_extra":   1.0,
	}

	// Permissive by default: unknown fields pass through untouched.
	out, err := ValidateArguments(d, args, false)
	require.NoError(t, err)
	assert.Equal(t, true, out["zz_extra"])

	// Strict mode rejects them, named in lexicographic order.
	_, err = ValidateArguments(d, args, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fields: aa_extra, zz_extra")
}

func TestValidateArgumentsNilArguments(t *testing.T) {
	d := &ToolDescriptor{
		Name:        "noargs",
		Description: "takes nothing",
		Handler:     noopHandler,
	}

	out, err := ValidateArguments(d, nil, false)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInputSchemaShape(t *testing.T) {
	d := subscribeDescriptor()

	schema := d.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"title", "year", "media_type"}, schema["required"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, props, 6)

	mediaType := props["media_type"].(map[string]interface{})
	assert.Equal(t, "string", mediaType["type"])
	assert.Equal(t, []string{"movie", "tv"}, mediaType["enum"])

	sites := props["sites"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"type": "integer"}, sites["items"])
}

func TestInputSchemaEmptyRequiredIsPresent(t *testing.T) {
	d := &ToolDescriptor{
		Name:        "noargs",
		Description: "takes nothing",
		Handler:     noopHandler,
	}

	schema := d.InputSchema()
	require.Contains(t, schema, "required")
	assert.Equal(t, []string{}, schema["required"])
}
