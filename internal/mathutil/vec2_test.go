package mathutil

import (
	"math"
	"testing"
)

func TestVec2_RotateQuarterMatchesRotate(t *testing.T) {
	v := Vec2{0.3, -1.7}
	for q := -4; q <= 5; q++ {
		exact := v.RotateQuarter(q)
		trig := v.Rotate(QuarterRadians(q))
		if !exact.ApproxEqual(trig, 1e-9) {
			t.Errorf("q=%d: RotateQuarter=%v Rotate=%v", q, exact, trig)
		}
	}
}

func TestVec2_CrossSign(t *testing.T) {
	up := Vec2{0, 1}
	right := Vec2{1, 0}
	if got := right.Cross(up); got != 1 {
		t.Errorf("right x up = %v, want 1", got)
	}
	if got := up.Cross(right); got != -1 {
		t.Errorf("up x right = %v, want -1", got)
	}
}

func TestVec2_NormalizeZero(t *testing.T) {
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("Normalize(0) = %v, want zero", got)
	}
	n := Vec2{3, 4}.Normalize()
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("len = %v, want 1", n.Len())
	}
}
