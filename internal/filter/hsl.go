package filter

import "github.com/gogpu/framepipe/effect"

// ApplyHSL shifts hue, saturation and lightness of every pixel. Hue is in
// degrees; saturation and lightness adjustments are percentages over
// [-100, 100] added to the pixel's own values. Alpha passes through.
func ApplyHSL(adj effect.HSLAdjust, src, dst []byte) {
	hueShift := float64(adj.HueDegrees)
	satShift := float64(adj.Saturation) / 100
	lightShift := float64(adj.Lightness) / 100

	for i := 0; i+3 < len(src); i += 4 {
		h, s, l := rgbToHSL(
			float64(src[i+0])/255,
			float64(src[i+1])/255,
			float64(src[i+2])/255,
		)

		h += hueShift
		for h < 0 {
			h += 360
		}
		for h >= 360 {
			h -= 360
		}
		s = clampUnit(s + satShift)
		l = clampUnit(l + lightShift)

		r, g, b := hslToRGB(h, s, l)
		dst[i+0] = clampUint8(float32(r * 255))
		dst[i+1] = clampUint8(float32(g * 255))
		dst[i+2] = clampUint8(float32(b * 255))
		dst[i+3] = src[i+3]
	}
}

// rgbToHSL converts unit-range RGB to hue [0, 360), saturation [0, 1] and
// lightness [0, 1].
func rgbToHSL(r, g, b float64) (float64, float64, float64) {
	maxC := max3(r, g, b)
	minC := min3(r, g, b)
	l := (maxC + minC) / 2

	if maxC == minC {
		return 0, 0, l
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

// hslToRGB converts hue [0, 360), saturation [0, 1] and lightness [0, 1]
// to unit-range RGB.
func hslToRGB(h, s, l float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	hk := h / 360
	return hueToChannel(p, q, hk+1.0/3), hueToChannel(p, q, hk), hueToChannel(p, q, hk-1.0/3)
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
