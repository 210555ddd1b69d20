// Package iir provides the second-order IIR filter sections used by the
// tone-shaping stage: a Direct Form II Transposed biquad with RBJ-style
// coefficient design for highpass, lowpass and peaking responses.
//
// Coefficients are a pure function of (frequency, Q/gain, sample rate);
// replacing them on a live Section preserves the delay-line state so that
// per-block coefficient updates do not click.
package iir
