package oblivious

// calcIndexes ORs into indexes[doc] bit d for every depth d whose split the
// example satisfies. indexes must be zero on entry.
func calcIndexes(binFeatures []byte, docCount int, indexes []uint32, splits []repackedBin) {
	indexes = indexes[:docCount]
	for depth, split := range splits {
		offset := int(split.plane) * docCount
		plane := binFeatures[offset : offset+docCount]
		for doc, v := range plane {
			indexes[doc] |= uint32(b2u8(v >= split.splitIdx)) << depth
		}
	}
}

// calcIndexesXor is calcIndexes with each byte flipped by the split's xor mask
// first, which turns one-hot equality tests into threshold tests.
func calcIndexesXor(binFeatures []byte, docCount int, indexes []uint32, splits []repackedBin) {
	indexes = indexes[:docCount]
	for depth, split := range splits {
		offset := int(split.plane) * docCount
		plane := binFeatures[offset : offset+docCount]
		for doc, v := range plane {
			indexes[doc] |= uint32(b2u8(v^split.xorMask >= split.splitIdx)) << depth
		}
	}
}

// calcIndexSingle computes the leaf index of the only example of a
// single-example buffer.
func calcIndexSingle(binFeatures []byte, splits []repackedBin, xor bool) uint32 {
	var idx uint32
	for depth, split := range splits {
		v := binFeatures[split.plane]
		if xor {
			v ^= split.xorMask
		}
		idx |= uint32(b2u8(v >= split.splitIdx)) << depth
	}
	return idx
}
