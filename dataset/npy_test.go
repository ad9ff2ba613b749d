package dataset

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

func TestMatrixRoundTrip(t *testing.T) {
	want := mat.NewDense(3, 2, []float64{0.5, -1, 2, 3.25, 0, 1e9})

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, want))
	got, err := ReadMatrix(&buf)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))

	path := filepath.Join(t.TempDir(), "x.npy")
	require.NoError(t, SaveMatrix(path, want))
	got, err = LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}

func TestReadMatrixConvertsDtype(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []float32{1.5, 2, -4}))

	got, err := ReadMatrix(&buf)
	require.NoError(t, err)
	rows, cols := got.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, []float64{1.5, 2, -4}, mat.Col(nil, 0, got))

	buf.Reset()
	require.NoError(t, npyio.Write(&buf, []int64{7, 8}))
	got, err = ReadMatrix(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8}, mat.Col(nil, 0, got))
}

func TestReadMatrixErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []float64{}))
	_, err := ReadMatrix(&buf)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	buf.Reset()
	require.NoError(t, npyio.Write(&buf, []uint8{1, 2}))
	_, err = ReadMatrix(&buf)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	_, err = ReadMatrix(bytes.NewReader([]byte("not an npy file")))
	assert.Error(t, err)

	_, err = LoadMatrix(filepath.Join(t.TempDir(), "missing.npy"))
	assert.Error(t, err)

	assert.Error(t, WriteMatrix(&buf, nil))
}

func TestReadHashes(t *testing.T) {
	t.Run("one column from a 1-D array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, npyio.Write(&buf, []int32{-5, 0, 1 << 30}))

		got, err := ReadHashes(&buf)
		require.NoError(t, err)
		assert.Equal(t, [][]int32{{-5}, {0}, {1 << 30}}, got)
	})

	t.Run("rows from a matrix", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cats.npy")
		require.NoError(t, SaveMatrix(path, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))

		got, err := LoadHashes(path)
		require.NoError(t, err)
		assert.Equal(t, [][]int32{{1, 2, 3}, {4, 5, 6}}, got)
	})
}

func TestReadHashesRejectsOverflow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []int64{1, 1 << 31}))
	_, err := ReadHashes(&buf)
	var valErr *errors.ValueError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "overflows int32")

	buf.Reset()
	require.NoError(t, npyio.Write(&buf, []float64{-3e9}))
	_, err = ReadHashes(&buf)
	assert.True(t, errors.As(err, &valErr))

	buf.Reset()
	require.NoError(t, npyio.Write(&buf, []int64{math.MinInt32, math.MaxInt32}))
	got, err := ReadHashes(&buf)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{math.MinInt32}, {math.MaxInt32}}, got)
}

func TestRowMajor(t *testing.T) {
	// Column-major 2x3 [[1 2 3] [4 5 6]].
	got := rowMajor([]int{1, 4, 2, 5, 3, 6}, 2, 3, true)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)

	c := []int{1, 2, 3}
	assert.Equal(t, c, rowMajor(c, 1, 3, true))
	assert.Equal(t, c, rowMajor(c, 3, 1, false))
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "(2, 3, 4)", shapeString([]int{2, 3, 4}))
	assert.Equal(t, "()", shapeString(nil))
}
