package buffer

import "fmt"

// Block is a fixed-shape block of audio samples, stored as one contiguous
// plane per channel. Blocks are ephemeral: produced and consumed once per
// processing callback, never shared across goroutines without copying.
type Block struct {
	frames int
	planes [][]float64
	data   []float64
}

// NewBlock returns a zero-filled Block of the given shape.
func NewBlock(frames, channels int) *Block {
	b := &Block{}
	b.Resize(frames, channels)
	return b
}

// Frames returns the number of sample frames per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return len(b.planes)
}

// Channel returns the sample plane for channel c.
// Mutations through the slice are visible in the Block.
func (b *Block) Channel(c int) []float64 {
	return b.planes[c]
}

// SameShape reports whether o has identical frame and channel counts.
func (b *Block) SameShape(o *Block) bool {
	return o != nil && b.frames == o.frames && len(b.planes) == len(o.planes)
}

// Resize sets the block shape, reusing the backing storage when possible.
// Contents are unspecified after a resize; call Zero for silence.
func (b *Block) Resize(frames, channels int) {
	if frames < 0 {
		frames = 0
	}
	if channels < 0 {
		channels = 0
	}

	need := frames * channels
	if cap(b.data) < need {
		b.data = make([]float64, need)
	}
	b.data = b.data[:need]

	if cap(b.planes) < channels {
		b.planes = make([][]float64, channels)
	}
	b.planes = b.planes[:channels]

	for c := range b.planes {
		b.planes[c] = b.data[c*frames : (c+1)*frames : (c+1)*frames]
	}
	b.frames = frames
}

// Zero silences every channel.
func (b *Block) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// CopyFrom copies all samples from src. Shapes must match.
func (b *Block) CopyFrom(src *Block) error {
	if !b.SameShape(src) {
		return fmt.Errorf("block shape mismatch: %dx%d vs %dx%d",
			b.frames, len(b.planes), src.Frames(), src.Channels())
	}
	copy(b.data, src.data)
	return nil
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	out := NewBlock(b.frames, len(b.planes))
	copy(out.data, b.data)
	return out
}

// ReadInterleaved fills the block from interleaved float32 samples
// (frame-major, as delivered by audio drivers). src must hold at least
// Frames()*Channels() values.
func (b *Block) ReadInterleaved(src []float32) error {
	if len(src) < b.frames*len(b.planes) {
		return fmt.Errorf("interleaved source too short: %d < %d", len(src), b.frames*len(b.planes))
	}
	channels := len(b.planes)
	for c, plane := range b.planes {
		for i := range plane {
			plane[i] = float64(src[i*channels+c])
		}
	}
	return nil
}

// WriteInterleaved writes the block into dst as interleaved float32 samples.
// dst must hold at least Frames()*Channels() values.
func (b *Block) WriteInterleaved(dst []float32) error {
	if len(dst) < b.frames*len(b.planes) {
		return fmt.Errorf("interleaved destination too short: %d < %d", len(dst), b.frames*len(b.planes))
	}
	channels := len(b.planes)
	for c, plane := range b.planes {
		for i, s := range plane {
			dst[i*channels+c] = float32(s)
		}
	}
	return nil
}
