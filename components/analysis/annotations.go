package analysis

// annotationOffset is the share of the y-range between a label and its mean.
const annotationOffset = 0.06

// Annotation is a positioned chart label.
type Annotation struct {
	X     float64
	Y     float64
	Label string
	Above bool
}

// PlaceAnnotations positions one label per period near its mean. Labels
// alternate above and below the mean so neighbours do not overlap, and every
// label stays inside [yMin, yMax].
func PlaceAnnotations(stats []PeriodStats, yMin, yMax float64) []Annotation {
	if yMax < yMin {
		yMin, yMax = yMax, yMin
	}
	offset := (yMax - yMin) * annotationOffset
	out := make([]Annotation, len(stats))
	for i, s := range stats {
		above := i%2 == 0
		y := s.Mean - offset
		if above {
			y = s.Mean + offset
		}
		out[i] = Annotation{
			X:     float64(s.FirstYear+s.LastYear) / 2,
			Y:     clamp(y, yMin, yMax),
			Label: s.Label(),
			Above: above,
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
