package oblivious

import (
	"github.com/YuminosukeSato/symforest/pkg/log"
)

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// binarizeFloats writes into out[doc] the number of borders strictly below
// value(doc), for doc in [0, docCount). Examples are read in groups of eight
// so every border is compared against eight values at once.
func binarizeFloats(docCount int, value func(doc int) float32, borders []float32, out []byte) {
	out = out[:docCount]
	docCount8 := docCount &^ 7
	for doc := 0; doc < docCount8; doc += 8 {
		val := [8]float32{
			value(doc + 0),
			value(doc + 1),
			value(doc + 2),
			value(doc + 3),
			value(doc + 4),
			value(doc + 5),
			value(doc + 6),
			value(doc + 7),
		}
		var bins [8]uint8
		for _, border := range borders {
			bins[0] += b2u8(val[0] > border)
			bins[1] += b2u8(val[1] > border)
			bins[2] += b2u8(val[2] > border)
			bins[3] += b2u8(val[3] > border)
			bins[4] += b2u8(val[4] > border)
			bins[5] += b2u8(val[5] > border)
			bins[6] += b2u8(val[6] > border)
			bins[7] += b2u8(val[7] > border)
		}
		copy(out[doc:doc+8], bins[:])
	}
	for doc := docCount8; doc < docCount; doc++ {
		val := value(doc)
		var bin uint8
		for _, border := range borders {
			bin += b2u8(val > border)
		}
		out[doc] = bin
	}
}

// oneHotBins writes one plane per one-hot feature: the 1-based index of the
// candidate equal to the example's hash, or 0.
func oneHotBins(features []OneHotFeature, catPos []int, docCount int, hashes []int32, out []byte) {
	for i := range features {
		values := features[i].Values
		column := hashes[catPos[i]*docCount : (catPos[i]+1)*docCount]
		plane := out[i*docCount : (i+1)*docCount]
		for doc, hash := range column {
			var bin uint8
			for idx, v := range values {
				if hash == v {
					bin = uint8(idx + 1)
					break
				}
			}
			plane[doc] = bin
		}
	}
}

// binarizeBlock fills bin with the packed planes of examples
// [blockStart, blockStart+docCount). hashes and ctrs are scratch sized for at
// least docCount examples.
func (e *Evaluator) binarizeBlock(floats FloatAccessor, cats CatAccessor, blockStart, docCount int, bin []byte, hashes []int32, ctrs []float32) error {
	model, l := e.model, e.layout
	bin = bin[:l.blockBytes(docCount)]

	for i := range model.FloatFeatures {
		feature := &model.FloatFeatures[i]
		binarizeFloats(docCount, func(doc int) float32 {
			return floats.Float(feature, blockStart+doc)
		}, feature.Borders, bin[i*docCount:])
	}
	e.metrics.BlockBinarized()
	if l.catCount == 0 {
		return nil
	}

	hashes = hashes[:l.catCount*docCount]
	for pos := 0; pos < l.catCount; pos++ {
		column := hashes[pos*docCount : (pos+1)*docCount]
		for doc := range column {
			column[doc] = cats.Hash(pos, blockStart+doc)
		}
	}
	oneHotBins(model.OneHotFeatures, l.oneHotCatPos, docCount, hashes, bin[l.oneHotOffset*docCount:])

	if len(model.CtrFeatures) == 0 {
		return nil
	}
	ctrs = ctrs[:len(model.CtrFeatures)*docCount]
	err := e.ctrProvider.CalcCtrs(l.usedCtrs, bin[:l.ctrOffset*docCount], hashes, docCount, ctrs)
	e.metrics.CtrCall(err)
	if err != nil {
		e.logger.Error("ctr provider failed", err,
			log.ErrorCodeKey, log.ErrorProviderFailure,
			log.ExamplesKey, docCount,
		)
		return err
	}
	for i := range model.CtrFeatures {
		values := ctrs[i*docCount : (i+1)*docCount]
		binarizeFloats(docCount, func(doc int) float32 {
			return values[doc]
		}, model.CtrFeatures[i].Borders, bin[(l.ctrOffset+i)*docCount:])
	}
	return nil
}
