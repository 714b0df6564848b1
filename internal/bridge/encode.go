package bridge

import (
	"fmt"
	"strings"
)

// TransformString encodes a state's transform as a ready-to-apply CSS
// transform expression. The template always emits every component, even
// at default values, so the string is deterministic given the state.
// translate3d is used so the renderer can composite on the GPU.
func TransformString(s VisualState) string {
	t := s.Transform
	return fmt.Sprintf("translate3d(%.2fpx, %.2fpx, 0) scale(%.4f) rotate(%.2fdeg)",
		t.TranslateX, t.TranslateY, t.Scale, t.Rotation)
}

// FilterString encodes a state's appearance as a CSS filter expression.
// A brightness term is included only when brightness differs from 1 and a
// blur term only when blur is positive. When neither applies the literal
// "none" is returned, avoiding a no-op filter that can still trigger
// compositing costs on some renderers.
func FilterString(s VisualState) string {
	var parts []string
	if s.Brightness != 1 {
		parts = append(parts, fmt.Sprintf("brightness(%.4f)", s.Brightness))
	}
	if s.Blur > 0 {
		parts = append(parts, fmt.Sprintf("blur(%.2fpx)", s.Blur))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
