package oblivious

// repackedBin is a split resolved against the packed buffer: the example goes
// right at this depth iff (plane[doc] ^ xorMask) >= splitIdx.
type repackedBin struct {
	plane    uint16
	xorMask  uint8
	splitIdx uint8
}

type compiledTree struct {
	splits     []repackedBin
	leafValues []float64
}

// layout is everything derived from a Model once per Evaluator. Plane order is
// float features, then one-hot features, then ctr features.
type layout struct {
	dimension    int
	planeCount   int
	oneHotOffset int
	ctrOffset    int
	catCount     int
	hasOneHots   bool

	// oneHotCatPos[i] is the transposed-buffer position of the categorical
	// feature one-hot feature i reads.
	oneHotCatPos []int
	usedCtrs     []ModelCtr
	trees        []compiledTree
}

func newLayout(m *Model) *layout {
	l := &layout{
		dimension:    m.ApproxDimension,
		planeCount:   m.BinaryFeatureCount(),
		oneHotOffset: len(m.FloatFeatures),
		ctrOffset:    len(m.FloatFeatures) + len(m.OneHotFeatures),
		catCount:     len(m.CatFeatures),
		hasOneHots:   len(m.OneHotFeatures) > 0,
	}

	catPackedIndex := make(map[int]int, len(m.CatFeatures))
	for pos, c := range m.CatFeatures {
		catPackedIndex[c.FeatureIndex] = pos
	}
	l.oneHotCatPos = make([]int, len(m.OneHotFeatures))
	for i, oh := range m.OneHotFeatures {
		l.oneHotCatPos[i] = catPackedIndex[oh.CatFeatureIndex]
	}

	l.usedCtrs = make([]ModelCtr, len(m.CtrFeatures))
	for i, c := range m.CtrFeatures {
		l.usedCtrs[i] = c.Ctr
	}

	l.trees = make([]compiledTree, len(m.Trees))
	for t := range m.Trees {
		tree := &m.Trees[t]
		splits := make([]repackedBin, len(tree.Splits))
		for d, s := range tree.Splits {
			splits[d] = l.repack(s)
		}
		l.trees[t] = compiledTree{splits: splits, leafValues: tree.LeafValues}
	}
	return l
}

func (l *layout) repack(s Split) repackedBin {
	switch s.Type {
	case OneHotSplit:
		// bin ^ ^v == 0xFF exactly when bin == v
		v := uint8(s.BorderIdx + 1)
		return repackedBin{
			plane:    uint16(l.oneHotOffset + s.FeatureIdx),
			xorMask:  ^v,
			splitIdx: 0xFF,
		}
	case CtrSplit:
		return repackedBin{
			plane:    uint16(l.ctrOffset + s.FeatureIdx),
			splitIdx: uint8(s.BorderIdx + 1),
		}
	default:
		return repackedBin{
			plane:    uint16(s.FeatureIdx),
			splitIdx: uint8(s.BorderIdx + 1),
		}
	}
}

// blockBytes is the packed buffer size of a block of docCount examples.
func (l *layout) blockBytes(docCount int) int {
	return l.planeCount * docCount
}
