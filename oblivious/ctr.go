package oblivious

// CtrProvider computes categorical statistic values for one block.
//
// ctrs lists the statistics in CtrFeatures order. binFeatures holds the planes
// binarized so far (float and one-hot), hashes the transposed categorical
// hashes (hashes[catPos*docCount+doc]). The provider writes
// out[i*docCount+doc] for statistic i. An error aborts the evaluation call and
// is returned to its caller as is.
type CtrProvider interface {
	CalcCtrs(ctrs []ModelCtr, binFeatures []byte, hashes []int32, docCount int, out []float32) error
}

// CtrProviderFunc adapts a function to CtrProvider.
type CtrProviderFunc func(ctrs []ModelCtr, binFeatures []byte, hashes []int32, docCount int, out []float32) error

// CalcCtrs calls f.
func (f CtrProviderFunc) CalcCtrs(ctrs []ModelCtr, binFeatures []byte, hashes []int32, docCount int, out []float32) error {
	return f(ctrs, binFeatures, hashes, docCount, out)
}
