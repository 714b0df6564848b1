package bridge

// lerp linearly interpolates from a to b by factor t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// BlendState merges a visual state toward a partial update using linear
// interpolation per field. Fields absent from the update are left
// unchanged, never reset to defaults. Transform components blend
// independently. Custom keys present in the update blend against the
// current value for that key, defaulting a missing current key to 0;
// keys not mentioned are untouched. No clamping is performed.
//
// The bridge uses this in two places with two meanings: merging mapped
// and predicted states into a target (factor = damped confidence), and
// easing the displayed state toward the target each frame (factor =
// smoothing factor).
func BlendState(current VisualState, update VisualUpdate, factor float64) VisualState {
	out := current.Clone()

	if update.TranslateX != nil {
		out.Transform.TranslateX = lerp(current.Transform.TranslateX, *update.TranslateX, factor)
	}
	if update.TranslateY != nil {
		out.Transform.TranslateY = lerp(current.Transform.TranslateY, *update.TranslateY, factor)
	}
	if update.Scale != nil {
		out.Transform.Scale = lerp(current.Transform.Scale, *update.Scale, factor)
	}
	if update.Rotation != nil {
		out.Transform.Rotation = lerp(current.Transform.Rotation, *update.Rotation, factor)
	}
	if update.Opacity != nil {
		out.Opacity = lerp(current.Opacity, *update.Opacity, factor)
	}
	if update.Brightness != nil {
		out.Brightness = lerp(current.Brightness, *update.Brightness, factor)
	}
	if update.Blur != nil {
		out.Blur = lerp(current.Blur, *update.Blur, factor)
	}

	if len(update.Custom) > 0 {
		if out.Custom == nil {
			out.Custom = make(map[string]float64, len(update.Custom))
		}
		for k, v := range update.Custom {
			out.Custom[k] = lerp(current.Custom[k], v, factor)
		}
	}

	return out
}
