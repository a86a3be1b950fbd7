package domain

// Batch is an ordered group of frames encoded into one artifact.
// Frames are kept in capture order. A batch is built once per trigger and
// discarded after encoding; its frames move to the retention step.
type Batch struct {
	// ID identifies the batch in logs and encoder scratch files.
	ID string

	// Frames contains the frame handles in capture order.
	Frames []FrameHandle

	// Output is where the encoder writes the combined artifact.
	Output ArtifactHandle
}

// NewBatch creates a batch with the given id and output.
func NewBatch(id string, output ArtifactHandle, frames []FrameHandle) *Batch {
	return &Batch{ID: id, Output: output, Frames: frames}
}

// Size returns the number of frames in the batch.
func (b *Batch) Size() int {
	return len(b.Frames)
}

// Empty returns true if the batch has no frames.
func (b *Batch) Empty() bool {
	return len(b.Frames) == 0
}

// First returns the oldest frame, or "" if empty.
func (b *Batch) First() FrameHandle {
	if len(b.Frames) == 0 {
		return ""
	}
	return b.Frames[0]
}

// Last returns the newest frame, or "" if empty.
func (b *Batch) Last() FrameHandle {
	if len(b.Frames) == 0 {
		return ""
	}
	return b.Frames[len(b.Frames)-1]
}
