package oblivious

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

const (
	// MaxBorders is the largest border count a feature may have; bins are bytes.
	MaxBorders = 255
	// MaxOneHotValues is the largest candidate list of a one-hot feature.
	MaxOneHotValues = 255
	// MaxTreeDepth bounds the number of splits per tree.
	MaxTreeDepth = 16
)

// FloatFeature is a continuous feature binarized against sorted borders.
type FloatFeature struct {
	FeatureIndex     int       // Position among the model's float features
	FlatFeatureIndex int       // Column in a flat feature row
	Borders          []float32 // Strictly ascending split borders
}

// CatFeature is a categorical feature fed to the model as an integer hash.
type CatFeature struct {
	FeatureIndex     int // Position among the model's categorical features
	FlatFeatureIndex int // Column in a flat feature row
}

// OneHotFeature encodes a categorical feature by membership in Values.
type OneHotFeature struct {
	CatFeatureIndex int     // FeatureIndex of the source CatFeature
	Values          []int32 // Candidate hashes; a match on Values[i] bins to i+1
}

// ModelCtr identifies one categorical statistic. It is opaque to the
// evaluator and only forwarded to the CtrProvider.
type ModelCtr struct {
	Projection      []int  // FeatureIndex values of the categorical features combined
	Type            string // Statistic kind, e.g. "Borders" or "Counter"
	TargetBorderIdx int
}

// String renders the ctr as a stable key.
func (c ModelCtr) String() string {
	parts := make([]string, len(c.Projection))
	for i, p := range c.Projection {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s[%s]@%d", c.Type, strings.Join(parts, ","), c.TargetBorderIdx)
}

// CtrFeature is a statistic value binarized like a float feature.
type CtrFeature struct {
	Ctr     ModelCtr
	Borders []float32
}

// SplitType selects which feature list a Split refers to.
type SplitType uint8

const (
	// FloatSplit tests FloatFeatures[FeatureIdx] > Borders[BorderIdx].
	FloatSplit SplitType = iota
	// OneHotSplit tests hash == OneHotFeatures[FeatureIdx].Values[BorderIdx].
	OneHotSplit
	// CtrSplit tests CtrFeatures[FeatureIdx] > Borders[BorderIdx].
	CtrSplit
)

func (s SplitType) String() string {
	switch s {
	case FloatSplit:
		return "float"
	case OneHotSplit:
		return "one_hot"
	case CtrSplit:
		return "ctr"
	default:
		return "unknown"
	}
}

// Split is one level of an oblivious tree.
type Split struct {
	Type       SplitType
	FeatureIdx int // Index into the list selected by Type
	BorderIdx  int // Border index, or candidate index for one-hot splits
}

// Tree is an oblivious tree: Splits[d] is tested at depth d and contributes
// bit d of the leaf index. LeafValues holds ApproxDimension values per leaf,
// leaf-major.
type Tree struct {
	Splits     []Split
	LeafValues []float64
}

// Depth is the number of splits of the tree.
func (t *Tree) Depth() int {
	return len(t.Splits)
}

// LeafCount is 2^Depth.
func (t *Tree) LeafCount() int {
	return 1 << len(t.Splits)
}

// Model is an ensemble of oblivious trees together with the feature
// descriptions needed to binarize raw input. A Model is never modified by
// the evaluator and may be shared between goroutines.
type Model struct {
	FloatFeatures   []FloatFeature
	CatFeatures     []CatFeature
	OneHotFeatures  []OneHotFeature
	CtrFeatures     []CtrFeature
	Trees           []Tree
	ApproxDimension int
}

// BinaryFeatureCount is the number of byte planes of the packed buffer.
func (m *Model) BinaryFeatureCount() int {
	return len(m.FloatFeatures) + len(m.OneHotFeatures) + len(m.CtrFeatures)
}

// TreeCount returns the number of trees.
func (m *Model) TreeCount() int {
	return len(m.Trees)
}

// TreeDepth returns the depth of the deepest tree.
func (m *Model) TreeDepth() int {
	depth := 0
	for t := range m.Trees {
		depth = max(depth, m.Trees[t].Depth())
	}
	return depth
}

// FlatFeatureCount is one past the largest FlatFeatureIndex, i.e. the width
// of a flat feature row the model can read.
func (m *Model) FlatFeatureCount() int {
	n := 0
	for _, f := range m.FloatFeatures {
		if f.FlatFeatureIndex+1 > n {
			n = f.FlatFeatureIndex + 1
		}
	}
	for _, f := range m.CatFeatures {
		if f.FlatFeatureIndex+1 > n {
			n = f.FlatFeatureIndex + 1
		}
	}
	return n
}

// Validate checks the structural invariants the evaluator relies on.
func (m *Model) Validate() error {
	const op = "Validate"
	if m.ApproxDimension < 1 {
		return errors.NewValidationError("ApproxDimension", "must be at least 1", m.ApproxDimension)
	}
	if m.BinaryFeatureCount() > 1<<16 {
		return errors.NewModelError(op, "too many binary features", fmt.Errorf("%d planes", m.BinaryFeatureCount()))
	}
	// A flat column feeds exactly one feature.
	columns := make(map[int]struct{}, len(m.FloatFeatures)+len(m.CatFeatures))
	useColumn := func(what string, i, column int) error {
		if column < 0 {
			return errors.NewModelError(op, fmt.Sprintf("%s %d", what, i), fmt.Errorf("negative flat feature index %d", column))
		}
		if _, dup := columns[column]; dup {
			return errors.NewModelError(op, fmt.Sprintf("%s %d", what, i), fmt.Errorf("duplicate flat feature index %d", column))
		}
		columns[column] = struct{}{}
		return nil
	}

	for i, f := range m.FloatFeatures {
		if err := useColumn("float feature", i, f.FlatFeatureIndex); err != nil {
			return err
		}
		if err := validateBorders(f.Borders); err != nil {
			return errors.NewModelError(op, fmt.Sprintf("float feature %d", i), err)
		}
	}

	catIndexes := make(map[int]struct{}, len(m.CatFeatures))
	for i, c := range m.CatFeatures {
		if err := useColumn("categorical feature", i, c.FlatFeatureIndex); err != nil {
			return err
		}
		if _, dup := catIndexes[c.FeatureIndex]; dup {
			return errors.NewModelError(op, "duplicate categorical feature", fmt.Errorf("feature index %d", c.FeatureIndex))
		}
		catIndexes[c.FeatureIndex] = struct{}{}
	}
	for i, oh := range m.OneHotFeatures {
		if _, ok := catIndexes[oh.CatFeatureIndex]; !ok {
			return errors.NewModelError(op, fmt.Sprintf("one-hot feature %d", i), fmt.Errorf("unknown categorical feature %d", oh.CatFeatureIndex))
		}
		if len(oh.Values) > MaxOneHotValues {
			return errors.NewModelError(op, fmt.Sprintf("one-hot feature %d", i), fmt.Errorf("%d values exceed %d", len(oh.Values), MaxOneHotValues))
		}
	}
	for i, ctr := range m.CtrFeatures {
		if err := validateBorders(ctr.Borders); err != nil {
			return errors.NewModelError(op, fmt.Sprintf("ctr feature %d", i), err)
		}
		if len(ctr.Ctr.Projection) == 0 {
			return errors.NewModelError(op, fmt.Sprintf("ctr feature %d", i), fmt.Errorf("empty projection"))
		}
		for _, p := range ctr.Ctr.Projection {
			if _, ok := catIndexes[p]; !ok {
				return errors.NewModelError(op, fmt.Sprintf("ctr feature %d", i), fmt.Errorf("unknown categorical feature %d", p))
			}
		}
	}

	for t := range m.Trees {
		if err := m.validateTree(&m.Trees[t]); err != nil {
			return errors.NewModelError(op, fmt.Sprintf("tree %d", t), err)
		}
	}
	return nil
}

func (m *Model) validateTree(tree *Tree) error {
	if tree.Depth() > MaxTreeDepth {
		return fmt.Errorf("depth %d exceeds %d", tree.Depth(), MaxTreeDepth)
	}
	if want := tree.LeafCount() * m.ApproxDimension; len(tree.LeafValues) != want {
		return fmt.Errorf("expected %d leaf values, got %d", want, len(tree.LeafValues))
	}
	for d, s := range tree.Splits {
		var limit int
		switch s.Type {
		case FloatSplit:
			if s.FeatureIdx < 0 || s.FeatureIdx >= len(m.FloatFeatures) {
				return fmt.Errorf("split %d: float feature %d out of range", d, s.FeatureIdx)
			}
			limit = len(m.FloatFeatures[s.FeatureIdx].Borders)
		case OneHotSplit:
			if s.FeatureIdx < 0 || s.FeatureIdx >= len(m.OneHotFeatures) {
				return fmt.Errorf("split %d: one-hot feature %d out of range", d, s.FeatureIdx)
			}
			limit = len(m.OneHotFeatures[s.FeatureIdx].Values)
		case CtrSplit:
			if s.FeatureIdx < 0 || s.FeatureIdx >= len(m.CtrFeatures) {
				return fmt.Errorf("split %d: ctr feature %d out of range", d, s.FeatureIdx)
			}
			limit = len(m.CtrFeatures[s.FeatureIdx].Borders)
		default:
			return fmt.Errorf("split %d: unknown split type %d", d, s.Type)
		}
		if s.BorderIdx < 0 || s.BorderIdx >= limit {
			return fmt.Errorf("split %d: %s border %d out of range [0, %d)", d, s.Type, s.BorderIdx, limit)
		}
	}
	return nil
}

func validateBorders(borders []float32) error {
	if len(borders) > MaxBorders {
		return fmt.Errorf("%d borders exceed %d", len(borders), MaxBorders)
	}
	for i := 1; i < len(borders); i++ {
		if !(borders[i-1] < borders[i]) {
			return fmt.Errorf("borders not strictly ascending at %d: %v >= %v", i, borders[i-1], borders[i])
		}
	}
	return nil
}
