// Package dataset reads and writes the NumPy .npy arrays used as model input
// and prediction output.
//
// Float features come as a 2-D float array (one row per example); categorical
// hashes come as a 2-D int32 array with one column per categorical feature.
// A 1-D array is read as a single column.
package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

type number interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// ReadMatrix reads a 1-D or 2-D numeric array into a dense matrix.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read npy header")
	}
	rows, cols, err := shape(npy)
	if err != nil {
		return nil, err
	}
	values, err := readValues[float64](npy)
	if err != nil {
		return nil, err
	}
	if rows == 0 || cols == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	return mat.NewDense(rows, cols, rowMajor(values, rows, cols, npy.Header.Descr.Fortran)), nil
}

// LoadMatrix is ReadMatrix on the file at path.
func LoadMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	m, err := ReadMatrix(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return m, nil
}

// ReadHashes reads an integer array of categorical hashes, one row per
// example. Float arrays are accepted and truncated toward zero. Values outside
// the int32 range are rejected with a ValueError.
func ReadHashes(r io.Reader) ([][]int32, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read npy header")
	}
	rows, cols, err := shape(npy)
	if err != nil {
		return nil, err
	}
	wide, err := readValues[int64](npy)
	if err != nil {
		return nil, err
	}
	values := make([]int32, len(wide))
	for i, v := range wide {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, errors.NewValueError("ReadHashes", fmt.Sprintf("hash %d at position %d overflows int32", v, i))
		}
		values[i] = int32(v)
	}
	values = rowMajor(values, rows, cols, npy.Header.Descr.Fortran)

	out := make([][]int32, rows)
	for i := range out {
		out[i] = values[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out, nil
}

// LoadHashes is ReadHashes on the file at path.
func LoadHashes(path string) ([][]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	h, err := ReadHashes(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return h, nil
}

// WriteMatrix writes m as a 2-D float64 array.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	if m == nil {
		return errors.NewValueError("WriteMatrix", "nil matrix")
	}
	if err := npyio.Write(w, m); err != nil {
		return errors.Wrap(err, "write npy")
	}
	return nil
}

// SaveMatrix writes m to path, replacing any existing file.
func SaveMatrix(path string, m mat.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return WriteMatrix(f, m)
}

func shape(npy *npyio.Reader) (rows, cols int, err error) {
	switch s := npy.Header.Descr.Shape; len(s) {
	case 1:
		return s[0], 1, nil
	case 2:
		return s[0], s[1], nil
	default:
		return 0, 0, errors.NewValueError("npy", "expected a 1-D or 2-D array, got shape "+shapeString(s))
	}
}

func shapeString(s []int) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// readValues reads the whole array in its stored dtype and converts it to T.
func readValues[T number](npy *npyio.Reader) ([]T, error) {
	switch dtype := strings.TrimLeft(npy.Header.Descr.Type, "<>|="); dtype {
	case "f8":
		return readAs[float64, T](npy)
	case "f4":
		return readAs[float32, T](npy)
	case "i8":
		return readAs[int64, T](npy)
	case "i4":
		return readAs[int32, T](npy)
	default:
		return nil, errors.NewValueError("npy", "unsupported dtype "+npy.Header.Descr.Type)
	}
}

func readAs[S, T number](npy *npyio.Reader) ([]T, error) {
	var src []S
	if err := npy.Read(&src); err != nil {
		return nil, errors.Wrap(err, "read npy data")
	}
	dst := make([]T, len(src))
	for i, v := range src {
		dst[i] = T(v)
	}
	return dst, nil
}

// rowMajor returns values in C order.
func rowMajor[T any](values []T, rows, cols int, fortran bool) []T {
	if !fortran || rows < 2 || cols < 2 {
		return values
	}
	out := make([]T, len(values))
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out[i*cols+j] = values[j*rows+i]
		}
	}
	return out
}
