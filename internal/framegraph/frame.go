package framegraph

import "fmt"

// FrameID addresses a frame. Index is the 1-based slot in the registry; Gen
// changes every time the slot is released, so a handle kept past
// ReleaseFrame no longer matches the slot's next occupant.
type FrameID struct {
	Index uint32
	Gen   uint32
}

// NoFrame is the zero handle. It never addresses a frame.
var NoFrame = FrameID{}

// IsZero reports whether id is NoFrame.
func (id FrameID) IsZero() bool {
	return id.Index == 0
}

func (id FrameID) String() string {
	if id.Gen == 0 {
		return fmt.Sprintf("%d", id.Index)
	}
	return fmt.Sprintf("%d#%d", id.Index, id.Gen)
}

type frame struct {
	name   string
	active bool
	gen    uint32
}
