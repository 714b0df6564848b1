package bridge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBlendState_FullFactorReplaces(t *testing.T) {
	current := DefaultVisualState()
	update := VisualUpdate{
		TranslateX: Float(40),
		TranslateY: Float(-8),
		Scale:      Float(1.5),
		Rotation:   Float(90),
		Opacity:    Float(0.25),
		Brightness: Float(1.2),
		Blur:       Float(3),
	}

	got := BlendState(current, update, 1)
	want := VisualState{
		Transform:  Transform{TranslateX: 40, TranslateY: -8, Scale: 1.5, Rotation: 90},
		Opacity:    0.25,
		Brightness: 1.2,
		Blur:       3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BlendState mismatch (-want +got):\n%s", diff)
	}
}

func TestBlendState_AbsentFieldsUntouched(t *testing.T) {
	current := VisualState{
		Transform:  Transform{TranslateX: 10, Scale: 2},
		Opacity:    0.5,
		Brightness: 1,
	}

	got := BlendState(current, VisualUpdate{TranslateX: Float(20)}, 0.5)

	if got.Transform.TranslateX != 15 {
		t.Errorf("TranslateX = %v, want 15", got.Transform.TranslateX)
	}
	if got.Transform.Scale != 2 {
		t.Errorf("Scale changed to %v, want untouched 2", got.Transform.Scale)
	}
	if got.Opacity != 0.5 {
		t.Errorf("Opacity changed to %v, want untouched 0.5", got.Opacity)
	}
}

func TestBlendState_Halfway(t *testing.T) {
	current := DefaultVisualState()
	got := BlendState(current, VisualUpdate{Opacity: Float(0)}, 0.5)
	if got.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", got.Opacity)
	}
}

func TestBlendState_CustomKeys(t *testing.T) {
	current := VisualState{Custom: map[string]float64{"glow": 1, "tilt": 4}}
	update := VisualUpdate{Custom: map[string]float64{"glow": 3, "warp": 2}}

	got := BlendState(current, update, 0.5)

	if got.Custom["glow"] != 2 {
		t.Errorf("glow = %v, want 2", got.Custom["glow"])
	}
	// Missing current key defaults to 0 before blending.
	if got.Custom["warp"] != 1 {
		t.Errorf("warp = %v, want 1", got.Custom["warp"])
	}
	// Keys not mentioned in the update are untouched.
	if got.Custom["tilt"] != 4 {
		t.Errorf("tilt = %v, want untouched 4", got.Custom["tilt"])
	}
}

func TestBlendState_NoClamping(t *testing.T) {
	got := BlendState(DefaultVisualState(), VisualUpdate{Opacity: Float(4)}, 1)
	if got.Opacity != 4 {
		t.Errorf("Opacity = %v, want unclamped 4", got.Opacity)
	}
}

func TestBlendState_DoesNotMutateInput(t *testing.T) {
	current := VisualState{Custom: map[string]float64{"glow": 1}}
	BlendState(current, VisualUpdate{Custom: map[string]float64{"glow": 5}}, 1)
	if current.Custom["glow"] != 1 {
		t.Errorf("input state mutated: glow = %v", current.Custom["glow"])
	}
}
