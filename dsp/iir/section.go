package iir

// Coefficients holds the transfer function coefficients of a single
// second-order section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns unity-gain passthrough coefficients.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Section is one biquad filter: a coefficient set plus delay-line state.
type Section struct {
	coeffs Coefficients

	d0, d1 float64
}

// NewSection returns a Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{coeffs: c}
}

// SetCoefficients replaces the coefficient set by value. The delay-line
// state is kept, so a live filter can retune without a discontinuity.
func (s *Section) SetCoefficients(c Coefficients) {
	s.coeffs = c
}

// Coefficients returns the current coefficient set.
func (s *Section) Coefficients() Coefficients {
	return s.coeffs
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.coeffs.B0*x + s.d0
	s.d0 = s.coeffs.B1*x - s.coeffs.A1*y + s.d1
	s.d1 = s.coeffs.B2*x - s.coeffs.A2*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.coeffs.B0, s.coeffs.B1, s.coeffs.B2
	a1, a2 := s.coeffs.A1, s.coeffs.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}
