package effect

import (
	"math"
	"testing"
)

func TestPlanMergesAdjacentMatrixTransforms(t *testing.T) {
	effects := make([]Effect, 0, 10)
	for i := 0; i < 10; i++ {
		effects = append(effects, MatrixTransform{Matrix: RotateDegrees(36)})
	}

	planned := Plan(effects)
	if len(planned) != 1 {
		t.Fatalf("len(planned) = %d, want 1", len(planned))
	}
	mt, ok := planned[0].(MatrixTransform)
	if !ok {
		t.Fatalf("planned[0] = %T, want MatrixTransform", planned[0])
	}
	if !mt.Matrix.IsIdentity() {
		t.Errorf("composed matrix = %+v, want identity (full turn)", mt.Matrix)
	}
}

func TestPlanMergesColorMatrices(t *testing.T) {
	effects := []Effect{
		RGBAMatrix{Matrix: scaleColorMatrix(2)},
		RGBAMatrix{Matrix: scaleColorMatrix(0.5)},
		AlphaScale{Factor: 0.5},
	}

	planned := Plan(effects)
	if len(planned) != 1 {
		t.Fatalf("len(planned) = %d, want 1", len(planned))
	}
	m := planned[0].(RGBAMatrix).Matrix
	want := AlphaScale{Factor: 0.5}.ColorMatrix()
	for i := range m {
		if math.Abs(float64(m[i]-want[i])) > 1e-5 {
			t.Fatalf("merged matrix[%d] = %v, want %v", i, m[i], want[i])
		}
	}
}

func TestPlanDoesNotMergeAcrossKinds(t *testing.T) {
	effects := []Effect{
		MatrixTransform{Matrix: RotateDegrees(90)},
		RGBAMatrix{Matrix: IdentityColorMatrix()},
		MatrixTransform{Matrix: RotateDegrees(-90)},
	}
	planned := Plan(effects)
	if len(planned) != 3 {
		t.Errorf("len(planned) = %d, want 3 (color matrix breaks the run)", len(planned))
	}

	effects = []Effect{
		Contrast{Value: 0.5},
		HSLAdjust{HueDegrees: 90},
		AlphaScale{Factor: 0.5},
	}
	planned = Plan(effects)
	if len(planned) != 3 {
		t.Errorf("len(planned) = %d, want 3 (HSL is not matrix-expressible)", len(planned))
	}
}

func TestPlanPreservesShortLists(t *testing.T) {
	if got := Plan(nil); len(got) != 0 {
		t.Errorf("Plan(nil) = %v, want empty", got)
	}
	one := []Effect{FrameCache{Capacity: 3}}
	if got := Plan(one); len(got) != 1 || got[0] != one[0] {
		t.Errorf("Plan(one) = %v, want unchanged", got)
	}
}

// scaleColorMatrix scales RGB channels by s.
func scaleColorMatrix(s float32) ColorMatrix {
	return ColorMatrix{
		s, 0, 0, 0, 0,
		0, s, 0, 0, 0,
		0, 0, s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

func TestColorMatrixConcatScaleInverse(t *testing.T) {
	m := scaleColorMatrix(0.5).Concat(scaleColorMatrix(2))
	id := IdentityColorMatrix()
	for i := range m {
		if math.Abs(float64(m[i]-id[i])) > 1e-5 {
			t.Fatalf("scale*invScale matrix[%d] = %v, want %v", i, m[i], id[i])
		}
	}
}

func TestColorMatrixConcatBias(t *testing.T) {
	// invert twice is identity: the second inversion must run the first
	// result's bias through its own linear part.
	invert := ColorMatrix{
		-1, 0, 0, 0, 255,
		0, -1, 0, 0, 255,
		0, 0, -1, 0, 255,
		0, 0, 0, 1, 0,
	}
	m := invert.Concat(invert)
	id := IdentityColorMatrix()
	for i := range m {
		if math.Abs(float64(m[i]-id[i])) > 1e-4 {
			t.Fatalf("invert^2 matrix[%d] = %v, want %v", i, m[i], id[i])
		}
	}
}
