package oblivious

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinarizeFloats(t *testing.T) {
	borders := []float32{0.5, 1.5}

	tests := []struct {
		name   string
		values []float32
		want   []byte
	}{
		{
			name:   "single value below",
			values: []float32{0.4},
			want:   []byte{0},
		},
		{
			name:   "equal to border is not greater",
			values: []float32{0.5, 1.5},
			want:   []byte{0, 1},
		},
		{
			name:   "full group of eight",
			values: []float32{-1, 0.4, 0.5, 0.6, 1.0, 1.5, 1.6, 100},
			want:   []byte{0, 0, 0, 1, 1, 1, 2, 2},
		},
		{
			name:   "group plus remainder",
			values: []float32{-1, 0.4, 0.5, 0.6, 1.0, 1.5, 1.6, 100, 0.51, 1.49, 1.51},
			want:   []byte{0, 0, 0, 1, 1, 1, 2, 2, 1, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]byte, len(tt.values))
			binarizeFloats(len(tt.values), func(doc int) float32 { return tt.values[doc] }, borders, out)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestBinarizeFloatsOverwritesStaleBins(t *testing.T) {
	values := []float32{0.4, 0.6, 1.6, 0.4, 0.6, 1.6, 0.4, 0.6, 1.6}
	out := make([]byte, len(values))
	for i := range out {
		out[i] = 0xAA
	}

	binarizeFloats(len(values), func(doc int) float32 { return values[doc] }, []float32{0.5, 1.5}, out)

	assert.Equal(t, []byte{0, 1, 2, 0, 1, 2, 0, 1, 2}, out)
}

func TestBinarizeFloatsNoBorders(t *testing.T) {
	out := []byte{7, 7, 7}
	binarizeFloats(3, func(int) float32 { return 42 }, nil, out)
	assert.Equal(t, []byte{0, 0, 0}, out)
}

func TestOneHotBins(t *testing.T) {
	features := []OneHotFeature{
		{CatFeatureIndex: 0, Values: []int32{7, 3, 9}},
		{CatFeatureIndex: 1, Values: []int32{5}},
	}
	const docCount = 4
	// transposed: cat 0 then cat 1
	hashes := []int32{
		7, 3, 9, 4,
		5, 6, 5, 7,
	}
	out := make([]byte, len(features)*docCount)
	for i := range out {
		out[i] = 0xFF
	}

	oneHotBins(features, []int{0, 1}, docCount, hashes, out)

	assert.Equal(t, []byte{1, 2, 3, 0}, out[:docCount])
	assert.Equal(t, []byte{1, 0, 1, 0}, out[docCount:])
}

func TestRepackOneHotSplit(t *testing.T) {
	m := &Model{
		FloatFeatures:   []FloatFeature{{Borders: []float32{0}}},
		CatFeatures:     []CatFeature{{FeatureIndex: 0}},
		OneHotFeatures:  []OneHotFeature{{CatFeatureIndex: 0, Values: []int32{10, 20, 30}}},
		ApproxDimension: 1,
	}
	l := newLayout(m)
	bin := l.repack(Split{Type: OneHotSplit, FeatureIdx: 0, BorderIdx: 1})

	assert.Equal(t, uint16(1), bin.plane)
	for v := 0; v <= 255; v++ {
		right := uint8(v)^bin.xorMask >= bin.splitIdx
		assert.Equal(t, v == 2, right, "bin %d", v)
	}
}

func TestRepackFloatAndCtrSplits(t *testing.T) {
	m := &Model{
		FloatFeatures:   []FloatFeature{{Borders: []float32{0}}, {Borders: []float32{1, 2, 3}}},
		CatFeatures:     []CatFeature{{FeatureIndex: 0}},
		OneHotFeatures:  []OneHotFeature{{CatFeatureIndex: 0, Values: []int32{1}}},
		CtrFeatures:     []CtrFeature{{Ctr: ModelCtr{Projection: []int{0}}, Borders: []float32{0.5, 0.7}}},
		ApproxDimension: 1,
	}
	l := newLayout(m)

	assert.Equal(t, repackedBin{plane: 1, splitIdx: 3}, l.repack(Split{Type: FloatSplit, FeatureIdx: 1, BorderIdx: 2}))
	assert.Equal(t, repackedBin{plane: 3, splitIdx: 2}, l.repack(Split{Type: CtrSplit, FeatureIdx: 0, BorderIdx: 1}))
	assert.Equal(t, 4, l.planeCount)
	assert.Equal(t, 2, l.oneHotOffset)
	assert.Equal(t, 3, l.ctrOffset)
}
