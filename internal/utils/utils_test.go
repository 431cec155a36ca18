package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Parte string `json:"parte"`
}

func TestScanJSONB(t *testing.T) {
	var dest []sample
	require.NoError(t, ScanJSONB([]byte(`[{"parte":"capot"}]`), &dest, "sample"))
	assert.Equal(t, []sample{{Parte: "capot"}}, dest)

	require.NoError(t, ScanJSONB(`[]`, &dest, "sample"))
	assert.Empty(t, dest)

	before := []sample{{Parte: "faro"}}
	require.NoError(t, ScanJSONB(nil, &before, "sample"))
	assert.Len(t, before, 1)

	assert.Error(t, ScanJSONB(42, &dest, "sample"))
}

func TestJSONBValue(t *testing.T) {
	v, err := JSONBValue(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v.([]byte)))
}

func TestCreateErrorResponse(t *testing.T) {
	resp := CreateErrorResponse("VALIDATION_ERROR", "Se requieren evidencia_id, imagen_url y siniestro_id")
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "Se requieren evidencia_id, imagen_url y siniestro_id", resp.Error)
}
