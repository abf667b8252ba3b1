// Package spectrum provides spectrum-domain utilities for noise spectra.
//
// The package intentionally does not implement FFT itself. It operates on
// complex bins produced by external FFT backends, and on real-valued power
// spectra, providing interpolation, octave-band averaging, and the
// smoothing operators used on H/V spectral ratio input: Konno-Ohmachi,
// triangular, and Savitzky-Golay.
package spectrum
