package pix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPredictorResiduals(t *testing.T) {
	// 2x2 RGB
	data := []byte{
		10, 20, 30, 40, 50, 60,
		15, 25, 35, 45, 55, 65,
	}
	for _, tc := range []struct {
		p      Predictor
		expect []byte
	}{
		{
			PredictDelta,
			[]byte{
				10, 20, 30, 30, 30, 30,
				231, 231, 231, 30, 30, 30,
			},
		},
		{
			PredictAverage,
			[]byte{
				10, 20, 30, 30, 30, 30,
				231, 231, 231, 30, 30, 30,
			},
		},
		{
			// row 0 left, column 0 above, else floor((left+above)/2)
			PredictGrid,
			[]byte{
				10, 20, 30, 30, 30, 30,
				5, 5, 5, 18, 18, 18,
			},
		},
	} {
		t.Run(tc.p.String(), func(tt *testing.T) {
			res := tc.p.residuals(data, 2, 3)
			if diff := cmp.Diff(tc.expect, res); diff != "" {
				tt.Errorf("residuals mismatch (-want +got):\n%s", diff)
			}
			if restored := tc.p.reconstruct(res, 2, 3); !cmp.Equal(restored, data) {
				tt.Errorf("%v != %v", restored, data)
			}
		})
	}
}

func TestPredictorRoundTrip(t *testing.T) {
	for p := PredictDelta; p < predictorCount; p++ {
		for _, b := range []*Buffer{
			makeTestImage(23, 17, false),
			makeTestImage(1, 10, true),
			makeTestImage(10, 1, false),
		} {
			restored := p.reconstruct(p.residuals(b.Pix, b.Width, b.Channels), b.Width, b.Channels)
			if !cmp.Equal(restored, b.Pix) {
				t.Errorf("%s %dx%d: round trip mismatch", p, b.Width, b.Height)
			}
		}
	}
}
