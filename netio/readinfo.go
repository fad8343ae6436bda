package netio

// ReadProgress is the outcome of a single netread step, replacing the
// exception-stack-based WouldBlock/Pending signaling of the original with
// an explicit enum, per spec.md §9's Design Note.
type ReadProgress int

const (
	Complete ReadProgress = iota
	Incomplete
	Failed
)

// ReadInfo is the resumable-read progress record carried through a
// composite netread: a field-progress counter, two depth counters for
// nested 2D loops, an auxiliary slot typed by the concrete reader, and a
// child ReadInfo for nested structures. It mirrors
// pok_netobj_readinfo in netobj.h.
type ReadInfo struct {
	FieldCnt  uint16
	FieldProg uint16
	Depth     [2]uint16

	Next *ReadInfo
	Aux  any

	Pending bool
}

// NewReadInfo returns a zeroed ReadInfo ready to drive a netread from the
// start.
func NewReadInfo() *ReadInfo { return &ReadInfo{} }

// Reset clears info back to its initial state, discarding any child and
// auxiliary data, so it can be reused for a new object.
func (info *ReadInfo) Reset() {
	info.FieldCnt = 0
	info.FieldProg = 0
	info.Depth = [2]uint16{}
	info.Next = nil
	info.Aux = nil
	info.Pending = false
}

// AllocNext lazily allocates info.Next if it is nil, returning true if a
// new child was allocated.
func (info *ReadInfo) AllocNext() bool {
	if info.Next != nil {
		return false
	}
	info.Next = NewReadInfo()
	return true
}

// Process is called after each primitive read attempt that reports
// whether it completed (ok) or needs a retry, and whether an unrelated
// failure occurred. It advances FieldProg on success, leaves FieldProg
// untouched and sets Pending on a retry-able short read, matching
// pok_netobj_readinfo_process's switch over the popped exception id.
//
//   - ok == true, err == nil:  the field was fully read; advance and
//     report Complete.
//   - ok == false, err == nil: the field was not yet fully available
//     (the original's WouldBlock/Pending); report Incomplete and mark
//     info.Pending.
//   - err != nil: an unrelated failure; report Failed.
func (info *ReadInfo) Process(ok bool, err error) ReadProgress {
	if err != nil {
		return Failed
	}
	if !ok {
		info.Pending = true
		return Incomplete
	}
	info.FieldProg++
	return Complete
}

// ProcessDepth is the 2D variant of Process: on success it advances the
// depth counter at index instead of FieldProg, letting a nested loop
// resume at the row/column it suspended on.
func (info *ReadInfo) ProcessDepth(index int, ok bool, err error) ReadProgress {
	if err != nil {
		return Failed
	}
	if !ok {
		info.Pending = true
		return Incomplete
	}
	info.Depth[index]++
	return Complete
}
