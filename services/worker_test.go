package services

import (
	"encoding/json"
	"testing"

	"template-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesFieldSurvivesMetadataRoundTrip(t *testing.T) {
	// Job metadata travels through Redis as JSON; the override map comes
	// back as map[string]interface{} and must decode into typed entries.
	stored, err := json.Marshal(map[string]interface{}{
		"status": "pending",
		"export_overrides": map[string]models.ExportOverride{
			"row-2": {Images: []string{"a.jpg"}, Categories: []string{"col:Main Image"}},
		},
	})
	require.NoError(t, err)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(stored, &meta))

	got := overridesField(meta, "export_overrides")
	require.Contains(t, got, "row-2")
	assert.Equal(t, []string{"a.jpg"}, got["row-2"].Images)
	assert.Equal(t, []string{"col:Main Image"}, got["row-2"].Categories)

	assert.Nil(t, overridesField(meta, "missing"))
}

func TestOverridesFieldIgnoresMalformedValue(t *testing.T) {
	meta := map[string]interface{}{"export_overrides": "not-a-map"}
	assert.Nil(t, overridesField(meta, "export_overrides"))
}
