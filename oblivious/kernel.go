package oblivious

// treeCalcer accumulates trees [treeStart, treeEnd) for the docCount examples
// of a packed block into results, starting at row blockStart. indexes is
// scratch of at least docCount entries; single-example kernels ignore it.
type treeCalcer func(l *layout, blockStart int, binFeatures []byte, docCount int, indexes []uint32, treeStart, treeEnd int, results []float64)

// kernelKey selects one entry of the kernel table.
type kernelKey struct {
	multi     bool // ApproxDimension > 1
	xor       bool // model has one-hot features
	singleDoc bool // block size is 1
}

type kernel struct {
	name string
	calc treeCalcer
}

var kernels = map[kernelKey]kernel{
	{multi: false, xor: false, singleDoc: true}:  {"single-doc-scalar", singleDocKernel(false, false)},
	{multi: false, xor: true, singleDoc: true}:   {"single-doc-scalar-onehot", singleDocKernel(false, true)},
	{multi: true, xor: false, singleDoc: true}:   {"single-doc-multi", singleDocKernel(true, false)},
	{multi: true, xor: true, singleDoc: true}:    {"single-doc-multi-onehot", singleDocKernel(true, true)},
	{multi: false, xor: false, singleDoc: false}: {"blocked-scalar", blockedScalarKernel(calcIndexes)},
	{multi: false, xor: true, singleDoc: false}:  {"blocked-scalar-onehot", blockedScalarKernel(calcIndexesXor)},
	{multi: true, xor: false, singleDoc: false}:  {"blocked-multi", blockedMultiKernel(calcIndexes)},
	{multi: true, xor: true, singleDoc: false}:   {"blocked-multi-onehot", blockedMultiKernel(calcIndexesXor)},
}

// selectKernel picks the accumulation routine for a call. It is resolved once
// per call so the per-example loops carry no dimension or one-hot branches.
func selectKernel(dimension, blockSize int, hasOneHots bool) kernel {
	return kernels[kernelKey{
		multi:     dimension > 1,
		xor:       hasOneHots,
		singleDoc: blockSize == 1,
	}]
}

func singleDocKernel(multi, xor bool) treeCalcer {
	if !multi {
		return func(l *layout, blockStart int, binFeatures []byte, _ int, _ []uint32, treeStart, treeEnd int, results []float64) {
			sum := 0.0
			for t := treeStart; t < treeEnd; t++ {
				tree := &l.trees[t]
				sum += tree.leafValues[calcIndexSingle(binFeatures, tree.splits, xor)]
			}
			results[blockStart] += sum
		}
	}
	return func(l *layout, blockStart int, binFeatures []byte, _ int, _ []uint32, treeStart, treeEnd int, results []float64) {
		dim := l.dimension
		row := results[blockStart*dim : (blockStart+1)*dim]
		for t := treeStart; t < treeEnd; t++ {
			tree := &l.trees[t]
			idx := int(calcIndexSingle(binFeatures, tree.splits, xor))
			for k, v := range tree.leafValues[idx*dim : (idx+1)*dim] {
				row[k] += v
			}
		}
	}
}

type indexFunc func(binFeatures []byte, docCount int, indexes []uint32, splits []repackedBin)

func blockedScalarKernel(index indexFunc) treeCalcer {
	return func(l *layout, blockStart int, binFeatures []byte, docCount int, indexes []uint32, treeStart, treeEnd int, results []float64) {
		indexes = indexes[:docCount]
		out := results[blockStart : blockStart+docCount]
		for t := treeStart; t < treeEnd; t++ {
			tree := &l.trees[t]
			clear(indexes)
			index(binFeatures, docCount, indexes, tree.splits)
			leaves := tree.leafValues
			for doc, idx := range indexes {
				out[doc] += leaves[idx]
			}
		}
	}
}

func blockedMultiKernel(index indexFunc) treeCalcer {
	return func(l *layout, blockStart int, binFeatures []byte, docCount int, indexes []uint32, treeStart, treeEnd int, results []float64) {
		dim := l.dimension
		indexes = indexes[:docCount]
		out := results[blockStart*dim : (blockStart+docCount)*dim]
		for t := treeStart; t < treeEnd; t++ {
			tree := &l.trees[t]
			clear(indexes)
			index(binFeatures, docCount, indexes, tree.splits)
			for doc, idx := range indexes {
				leaf := tree.leafValues[int(idx)*dim : (int(idx)+1)*dim]
				row := out[doc*dim : (doc+1)*dim]
				for k, v := range leaf {
					row[k] += v
				}
			}
		}
	}
}
