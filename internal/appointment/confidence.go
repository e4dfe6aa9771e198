package appointment

import (
	"math"

	"github.com/wolfman30/appointment-parser/internal/extract"
)

// Blend weights. The fixed base term keeps normalization confidence from
// collapsing to zero when either input confidence is legitimately low but
// the result is otherwise usable.
const (
	ocrWeight      = 0.4
	entitiesWeight = 0.4
	blendBase      = 0.2
)

// BlendConfidence combines acquisition and extraction confidence into the
// normalization confidence reported to the caller.
func BlendConfidence(ocrConfidence, entitiesConfidence float64) float64 {
	return extract.Clamp01(ocrWeight*ocrConfidence + entitiesWeight*entitiesConfidence + blendBase)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
