package encode

import "math"

// ResizePlan is the target pixel size for a normalize operation.
// Aspect ratio of the source is preserved up to rounding; images are
// never upscaled.
type ResizePlan struct {
	TargetWidth  int
	TargetHeight int
}

// PlanResize computes the target dimensions for a source of the given
// natural size under a maximum edge constraint.
//
// If both edges already fit within maxEdge the plan is identity.
// Otherwise the longer edge is clamped to maxEdge and the shorter edge
// scaled by the same ratio. All math happens in floating point; rounding
// occurs once, at the final assignment, so error does not compound
// across axes.
func PlanResize(width, height, maxEdge int) ResizePlan {
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return ResizePlan{TargetWidth: width, TargetHeight: height}
	}

	if width >= height {
		ratio := float64(maxEdge) / float64(width)
		return ResizePlan{
			TargetWidth:  maxEdge,
			TargetHeight: atLeastOne(math.Round(float64(height) * ratio)),
		}
	}

	ratio := float64(maxEdge) / float64(height)
	return ResizePlan{
		TargetWidth:  atLeastOne(math.Round(float64(width) * ratio)),
		TargetHeight: maxEdge,
	}
}

// atLeastOne keeps extreme aspect ratios from rounding an edge to zero.
func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// Identity reports whether the plan leaves the source size unchanged.
func (p ResizePlan) Identity(width, height int) bool {
	return p.TargetWidth == width && p.TargetHeight == height
}
