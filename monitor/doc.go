// Package monitor provides the boundary between the real-time audio path
// and visualization consumers.
//
// [Queue] is a bounded drop-newest FIFO of audio block copies: the
// producer side never blocks, and a full queue silently discards the
// incoming block. [Analyzer] is a consumer that drains a queue at its own
// cadence and maintains a smoothed FFT power spectrum plus a waveform
// snapshot for display.
package monitor
