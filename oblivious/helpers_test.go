package oblivious

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/symforest/pkg/log"
)

// modelShape describes a random model for property tests.
type modelShape struct {
	floats   int
	cats     int
	oneHots  int
	ctrs     int
	trees    int
	maxDepth int
	dim      int
}

// depthOneModel has borders [0.5, 1.5] and one tree splitting on 0.5 with
// leaves [10, 20].
func depthOneModel() *Model {
	return &Model{
		FloatFeatures: []FloatFeature{{FeatureIndex: 0, FlatFeatureIndex: 0, Borders: []float32{0.5, 1.5}}},
		Trees: []Tree{{
			Splits:     []Split{{Type: FloatSplit, FeatureIdx: 0, BorderIdx: 0}},
			LeafValues: []float64{10, 20},
		}},
		ApproxDimension: 1,
	}
}

func randomBorders(rng *rand.Rand, n int, from float32) []float32 {
	borders := make([]float32, n)
	b := from
	for i := range borders {
		b += 0.05 + rng.Float32()*0.45
		borders[i] = b
	}
	return borders
}

func randomModel(rng *rand.Rand, shape modelShape) *Model {
	m := &Model{ApproxDimension: shape.dim}
	for i := 0; i < shape.floats; i++ {
		m.FloatFeatures = append(m.FloatFeatures, FloatFeature{
			FeatureIndex:     i,
			FlatFeatureIndex: i,
			Borders:          randomBorders(rng, 1+rng.Intn(10), -1),
		})
	}
	for i := 0; i < shape.cats; i++ {
		m.CatFeatures = append(m.CatFeatures, CatFeature{
			FeatureIndex:     i,
			FlatFeatureIndex: shape.floats + i,
		})
	}
	for i := 0; i < shape.oneHots; i++ {
		perm := rng.Perm(6)[:1+rng.Intn(4)]
		values := make([]int32, len(perm))
		for j, v := range perm {
			values[j] = int32(v)
		}
		m.OneHotFeatures = append(m.OneHotFeatures, OneHotFeature{
			CatFeatureIndex: i % shape.cats,
			Values:          values,
		})
	}
	for i := 0; i < shape.ctrs; i++ {
		borders := make([]float32, 1+rng.Intn(4))
		for j := range borders {
			borders[j] = rng.Float32()
		}
		sort.Slice(borders, func(a, b int) bool { return borders[a] < borders[b] })
		borders = dedupBorders(borders)
		m.CtrFeatures = append(m.CtrFeatures, CtrFeature{
			Ctr:     ModelCtr{Projection: []int{i % shape.cats}, Type: "Borders"},
			Borders: borders,
		})
	}

	var types []SplitType
	if shape.floats > 0 {
		types = append(types, FloatSplit)
	}
	if shape.oneHots > 0 {
		types = append(types, OneHotSplit)
	}
	if shape.ctrs > 0 {
		types = append(types, CtrSplit)
	}
	for t := 0; t < shape.trees; t++ {
		depth := rng.Intn(shape.maxDepth + 1)
		tree := Tree{Splits: make([]Split, depth)}
		for d := range tree.Splits {
			st := types[rng.Intn(len(types))]
			var feature, limit int
			switch st {
			case FloatSplit:
				feature = rng.Intn(shape.floats)
				limit = len(m.FloatFeatures[feature].Borders)
			case OneHotSplit:
				feature = rng.Intn(shape.oneHots)
				limit = len(m.OneHotFeatures[feature].Values)
			case CtrSplit:
				feature = rng.Intn(shape.ctrs)
				limit = len(m.CtrFeatures[feature].Borders)
			}
			tree.Splits[d] = Split{Type: st, FeatureIdx: feature, BorderIdx: rng.Intn(limit)}
		}
		tree.LeafValues = make([]float64, tree.LeafCount()*shape.dim)
		for i := range tree.LeafValues {
			tree.LeafValues[i] = rng.NormFloat64()
		}
		m.Trees = append(m.Trees, tree)
	}
	return m
}

func dedupBorders(borders []float32) []float32 {
	out := borders[:1]
	for _, b := range borders[1:] {
		if b > out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

// randomData draws float rows around the borders, sometimes hitting a border
// exactly, and small categorical hashes.
func randomData(rng *rand.Rand, m *Model, docCount int) ([][]float32, [][]int32) {
	floats := make([][]float32, docCount)
	hashes := make([][]int32, docCount)
	for doc := range floats {
		floats[doc] = make([]float32, len(m.FloatFeatures))
		for i, f := range m.FloatFeatures {
			if rng.Intn(5) == 0 {
				floats[doc][i] = f.Borders[rng.Intn(len(f.Borders))]
			} else {
				floats[doc][i] = rng.Float32()*5 - 1.5
			}
		}
		hashes[doc] = make([]int32, len(m.CatFeatures))
		for i := range hashes[doc] {
			hashes[doc][i] = int32(rng.Intn(8))
		}
	}
	return floats, hashes
}

// testCtr is the statistic the test provider computes for a hash.
func testCtr(hash int32) float32 {
	return float32(hash%5) / 5
}

// testCtrProvider computes testCtr of the first projected feature. Test
// models use FeatureIndex == position for categorical features.
func testCtrProvider() CtrProvider {
	return CtrProviderFunc(func(ctrs []ModelCtr, _ []byte, hashes []int32, docCount int, out []float32) error {
		for i, ctr := range ctrs {
			pos := ctr.Projection[0]
			for doc := 0; doc < docCount; doc++ {
				out[i*docCount+doc] = testCtr(hashes[pos*docCount+doc])
			}
		}
		return nil
	})
}

// naiveScores evaluates every tree directly from raw values.
func naiveScores(m *Model, floats [][]float32, hashes [][]int32, treeStart, treeEnd int) []float64 {
	dim := m.ApproxDimension
	out := make([]float64, len(floats)*dim)
	catPos := make(map[int]int)
	for pos, c := range m.CatFeatures {
		catPos[c.FeatureIndex] = pos
	}
	for doc := range floats {
		for t := treeStart; t < treeEnd; t++ {
			tree := &m.Trees[t]
			idx := 0
			for d, s := range tree.Splits {
				var right bool
				switch s.Type {
				case FloatSplit:
					f := m.FloatFeatures[s.FeatureIdx]
					right = floats[doc][f.FlatFeatureIndex] > f.Borders[s.BorderIdx]
				case OneHotSplit:
					oh := m.OneHotFeatures[s.FeatureIdx]
					right = hashes[doc][catPos[oh.CatFeatureIndex]] == oh.Values[s.BorderIdx]
				case CtrSplit:
					c := m.CtrFeatures[s.FeatureIdx]
					v := testCtr(hashes[doc][catPos[c.Ctr.Projection[0]]])
					right = v > c.Borders[s.BorderIdx]
				}
				if right {
					idx |= 1 << d
				}
			}
			for k := 0; k < dim; k++ {
				out[doc*dim+k] += tree.LeafValues[idx*dim+k]
			}
		}
	}
	return out
}

// shifted exposes examples [offset, ...) of the accessors as [0, ...).
func shifted(floats FloatAccessor, cats CatAccessor, offset int) (FloatAccessor, CatAccessor) {
	fs := FloatAccessorFunc(func(f *FloatFeature, doc int) float32 {
		return floats.Float(f, offset+doc)
	})
	cs := CatAccessorFunc(func(pos, doc int) int32 {
		return cats.Hash(pos, offset+doc)
	})
	return fs, cs
}

func newTestEvaluator(t *testing.T, m *Model, opts ...Option) *Evaluator {
	t.Helper()
	opts = append([]Option{WithLogger(log.Nop())}, opts...)
	if len(m.CtrFeatures) > 0 {
		opts = append(opts, WithCtrProvider(testCtrProvider()))
	}
	e, err := NewEvaluator(m, opts...)
	require.NoError(t, err)
	return e
}

var testShapes = map[string]modelShape{
	"float only":      {floats: 3, trees: 20, maxDepth: 4, dim: 1},
	"float multi":     {floats: 3, trees: 15, maxDepth: 3, dim: 3},
	"one-hot":         {floats: 2, cats: 2, oneHots: 2, trees: 20, maxDepth: 4, dim: 1},
	"one-hot multi":   {floats: 2, cats: 2, oneHots: 3, trees: 12, maxDepth: 5, dim: 2},
	"ctr":             {floats: 2, cats: 2, ctrs: 2, trees: 20, maxDepth: 4, dim: 1},
	"ctr and one-hot": {floats: 1, cats: 3, oneHots: 2, ctrs: 2, trees: 25, maxDepth: 6, dim: 1},
}

func denseFromRows(rows [][]float64) *mat.Dense {
	X := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		X.SetRow(i, row)
	}
	return X
}
