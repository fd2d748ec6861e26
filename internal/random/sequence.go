package random

// Sequence replays a fixed list of draws, cycling when exhausted. An empty
// sequence always yields 0.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence builds a Sequence. Values outside [0, 1) are clamped.
func NewSequence(values ...float64) *Sequence {
	vs := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v < 0:
			v = 0
		case v >= 1:
			v = 0.999999
		}
		vs[i] = v
	}
	return &Sequence{values: vs}
}

func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int { return s.next }
