package pix

// Predictor estimates each channel byte from already coded neighbors. The
// residual actual-predicted (mod 256) is what gets entropy coded.
type Predictor uint8

const (
	// PredictDelta uses the previous pixel, with a zero seed before the first.
	PredictDelta Predictor = iota
	// PredictAverage uses the previous pixel; the first pixel is stored literally.
	PredictAverage
	// PredictGrid uses the left pixel on row 0, the pixel above on column 0
	// and floor((left+above)/2) elsewhere. The first pixel is literal.
	PredictGrid

	predictorCount
)

var predictorNames = [predictorCount]string{
	PredictDelta:   "delta",
	PredictAverage: "average",
	PredictGrid:    "grid",
}

func (p Predictor) String() string {
	if p < predictorCount {
		return predictorNames[p]
	}
	return "unknown"
}

// predict returns the prediction for byte i given the already known bytes in
// ref (source bytes when encoding, reconstructed bytes when decoding).
func (p Predictor) predict(ref []byte, i, width, channels int) byte {
	if i < channels {
		return 0
	}
	if p != PredictGrid || width <= 0 {
		return ref[i-channels]
	}
	px := i / channels
	row, col := px/width, px%width
	switch {
	case row == 0:
		return ref[i-channels]
	case col == 0:
		return ref[i-width*channels]
	default:
		left := int(ref[i-channels])
		up := int(ref[i-width*channels])
		return byte((left + up) / 2)
	}
}

// residuals applies p to a whole image.
func (p Predictor) residuals(data []byte, width, channels int) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] - p.predict(data, i, width, channels)
	}
	return out
}

// reconstruct reverses residuals. A short final pixel is reconstructed as far
// as it goes.
func (p Predictor) reconstruct(res []byte, width, channels int) []byte {
	out := make([]byte, len(res))
	for i := range res {
		out[i] = res[i] + p.predict(out, i, width, channels)
	}
	return out
}
