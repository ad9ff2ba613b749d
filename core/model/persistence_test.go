package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDescription struct {
	Name    string
	Borders []float32
	Leaves  []float64
}

func TestSaveLoadModel(t *testing.T) {
	original := testDescription{Name: "forest", Borders: []float32{0.5, 1.5}, Leaves: []float64{10, 20}}
	path := filepath.Join(t.TempDir(), "model.gob")

	require.NoError(t, SaveModel(&original, path))

	var loaded testDescription
	require.NoError(t, LoadModel(&loaded, path))
	assert.Equal(t, original, loaded)
}

func TestSaveModelToWriter(t *testing.T) {
	var buf bytes.Buffer
	original := testDescription{Name: "w", Leaves: []float64{1}}
	require.NoError(t, SaveModelToWriter(original, &buf))

	var loaded testDescription
	require.NoError(t, LoadModelFromReader(&loaded, &buf))
	assert.Equal(t, original, loaded)
}

func TestLoadModelErrors(t *testing.T) {
	var loaded testDescription
	assert.Error(t, LoadModel(&loaded, filepath.Join(t.TempDir(), "missing.gob")))
	assert.Error(t, LoadModelFromReader(&loaded, bytes.NewReader([]byte{0x01, 0x02})))
}
