package tempmap

// Domain holds the value bounds a point set is normalized against.
type Domain struct {
	// Min and Max are the observed extremes widened by the Low and High
	// calibration values when present.
	Min, Max float64
	// Low and High are the calibration values, or Min and Max when absent.
	Low, High float64
	// Normal is the neutral value: the calibration value when present,
	// otherwise the arithmetic mean of the raw values.
	Normal float64
}

// ComputeDomain derives the normalization domain of a non-empty point set.
// For an empty set it returns the zero Domain.
func ComputeDomain(points []Point, cal Calibration) Domain {
	if len(points) == 0 {
		return Domain{}
	}
	lo, hi := points[0].Value, points[0].Value
	sum := 0.0
	for _, p := range points {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
		sum += p.Value
	}
	d := Domain{Min: lo, Max: hi, Low: lo, High: hi, Normal: sum / float64(len(points))}
	if cal.Low != nil {
		d.Low = *cal.Low
		d.Min = min(d.Min, d.Low)
	}
	if cal.High != nil {
		d.High = *cal.High
		d.Max = max(d.Max, d.High)
	}
	if cal.Normal != nil {
		d.Normal = *cal.Normal
	}
	return d
}

// Normalize maps raw points into unit-square positions and [0, 1] values
// using the given policy. width and height are the current surface size;
// non-positive dimensions are treated as 1. An empty input yields an empty,
// non-nil result.
func Normalize(points []Point, cal Calibration, width, height int, policy NormalizePolicy) []NormalizedPoint {
	out := make([]NormalizedPoint, len(points))
	if len(points) == 0 {
		return out
	}
	w, h := float64(max(width, 1)), float64(max(height, 1))
	d := ComputeDomain(points, cal)
	for i, p := range points {
		out[i] = NormalizedPoint{
			U: p.X / w,
			V: p.Y / h,
			W: d.normalize(p.Value, policy),
		}
	}
	return out
}

// normalize maps a single value according to policy. The result is always
// in [0, 1].
func (d Domain) normalize(v float64, policy NormalizePolicy) float64 {
	switch policy {
	case NormalizeAffine:
		return clamp01((2*v - d.Low - d.Normal) / d.span())
	case NormalizeRange:
		return clamp01((v - d.Low) / d.span())
	default:
		return d.split(v)
	}
}

// span is High-Low, or 1 when the calibration range is degenerate.
func (d Domain) span() float64 {
	if s := d.High - d.Low; s != 0 {
		return s
	}
	return 1
}

// split maps Normal to 0.5 and stretches each side over its own span.
func (d Domain) split(v float64) float64 {
	switch {
	case v > d.Normal:
		up := d.Max - d.Normal
		if up <= 0 {
			return 1
		}
		return clamp01(0.5 + 0.5*(v-d.Normal)/up)
	case v < d.Normal:
		down := d.Normal - d.Min
		if down <= 0 {
			return 0.5
		}
		return clamp01(0.5 - 0.5*(d.Normal-v)/down)
	default:
		return 0.5
	}
}
