// Package effects provides the effect contract and the concrete DSP
// processors used by the live engine.
//
// Effects in this package:
//   - Delay: ring-buffer echo with feedback and dry/wet mix.
//   - Reverb: Schroeder topology, eight parallel combs into four series
//     allpasses.
//   - Distortion: tanh waveshaper with one-pole tone filter.
//   - Chorus: LFO-modulated delay with linear fractional reads.
//
// All effects process blocks in place with zero-allocation hot paths.
// Parameter setters reject non-finite values and clamp finite ones into
// their documented stable ranges; every effect stays bounded-input
// bounded-output across the full parameter range.
package effects
