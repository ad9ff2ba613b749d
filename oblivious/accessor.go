package oblivious

import (
	"gonum.org/v1/gonum/mat"
)

// FloatAccessor returns the raw value of a float feature for an absolute
// example index. It is called once per (feature, example) during binarization.
type FloatAccessor interface {
	Float(feature *FloatFeature, doc int) float32
}

// FloatAccessorFunc adapts a function to FloatAccessor.
type FloatAccessorFunc func(feature *FloatFeature, doc int) float32

// Float calls f.
func (f FloatAccessorFunc) Float(feature *FloatFeature, doc int) float32 {
	return f(feature, doc)
}

// CatAccessor returns the hash of the categorical feature at position catPos
// of Model.CatFeatures for an absolute example index.
type CatAccessor interface {
	Hash(catPos, doc int) int32
}

// CatAccessorFunc adapts a function to CatAccessor.
type CatAccessorFunc func(catPos, doc int) int32

// Hash calls f.
func (f CatAccessorFunc) Hash(catPos, doc int) int32 {
	return f(catPos, doc)
}

// MatrixFloats reads float features from the rows of X using each feature's
// FlatFeatureIndex as the column.
func MatrixFloats(X mat.Matrix) FloatAccessor {
	if raw, ok := X.(mat.RawMatrixer); ok {
		blas := raw.RawMatrix()
		return FloatAccessorFunc(func(feature *FloatFeature, doc int) float32 {
			return float32(blas.Data[doc*blas.Stride+feature.FlatFeatureIndex])
		})
	}
	return FloatAccessorFunc(func(feature *FloatFeature, doc int) float32 {
		return float32(X.At(doc, feature.FlatFeatureIndex))
	})
}

// FloatRows reads float features from row-major slices indexed by
// FlatFeatureIndex.
func FloatRows(rows [][]float32) FloatAccessor {
	return FloatAccessorFunc(func(feature *FloatFeature, doc int) float32 {
		return rows[doc][feature.FlatFeatureIndex]
	})
}

// HashRows reads categorical hashes from rows[doc][catPos].
func HashRows(rows [][]int32) CatAccessor {
	return CatAccessorFunc(func(catPos, doc int) int32 {
		return rows[doc][catPos]
	})
}

// MatrixHashes reads categorical hashes stored as numbers in the flat columns
// of X that model's categorical features point at.
func MatrixHashes(X mat.Matrix, model *Model) CatAccessor {
	columns := make([]int, len(model.CatFeatures))
	for pos, c := range model.CatFeatures {
		columns[pos] = c.FlatFeatureIndex
	}
	return CatAccessorFunc(func(catPos, doc int) int32 {
		return int32(X.At(doc, columns[catPos]))
	})
}
