package oblivious

import (
	"io"

	coremodel "github.com/YuminosukeSato/symforest/core/model"
)

// SaveModel writes m to path in gob form.
func SaveModel(m *Model, path string) error {
	return coremodel.SaveModel(m, path)
}

// WriteModel writes m to w in gob form.
func WriteModel(m *Model, w io.Writer) error {
	return coremodel.SaveModelToWriter(m, w)
}

// LoadModel reads a model written by SaveModel and validates it.
func LoadModel(path string) (*Model, error) {
	var m Model
	if err := coremodel.LoadModel(&m, path); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadModel reads a model written by WriteModel and validates it.
func ReadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := coremodel.LoadModelFromReader(&m, r); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
