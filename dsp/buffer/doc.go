// Package buffer provides the audio block representation shared by the
// processing engine, the effects, and the monitor boundary.
//
// A [Block] holds a fixed number of frames for a fixed number of channels
// as per-channel sample planes. [Pool] recycles blocks so the audio hot
// path allocates nothing in steady state.
package buffer
