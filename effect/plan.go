package effect

// Plan rewrites an effect list into an equivalent, usually shorter one:
//
//   - adjacent MatrixTransform effects compose into a single matrix;
//   - adjacent matrix-expressible color effects (RGBAMatrix, Contrast,
//     AlphaScale) multiply into a single RGBAMatrix.
//
// The pass is purely an optimization over the immutable descriptor list.
// It never changes output within numeric tolerance, and a pipeline built
// from the unplanned list behaves identically.
func Plan(effects []Effect) []Effect {
	if len(effects) < 2 {
		return effects
	}

	planned := make([]Effect, 0, len(effects))
	for _, e := range effects {
		if len(planned) > 0 {
			if merged, ok := merge(planned[len(planned)-1], e); ok {
				planned[len(planned)-1] = merged
				continue
			}
		}
		planned = append(planned, e)
	}
	return planned
}

// merge combines two adjacent effects into one when possible.
func merge(prev, next Effect) (Effect, bool) {
	if pt, ok := prev.(MatrixTransform); ok {
		if nt, ok := next.(MatrixTransform); ok {
			// next is applied after prev, so its matrix multiplies on the left.
			return MatrixTransform{Matrix: nt.Matrix.Multiply(pt.Matrix)}, true
		}
		return nil, false
	}

	pm, pok := prev.(matrixExpressible)
	nm, nok := next.(matrixExpressible)
	if pok && nok {
		return RGBAMatrix{Matrix: nm.ColorMatrix().Concat(pm.ColorMatrix())}, true
	}
	return nil, false
}
