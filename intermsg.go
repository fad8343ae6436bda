package engine

import "sync"

// InterMsgKind tags the payload carried by an InterMsg, matching the
// message kinds in spec.md §3.
type InterMsgKind int

const (
	MsgUninitialized InterMsgKind = iota
	MsgNoop
	MsgKeyInput
	MsgMenu
	MsgStringInput
)

// InterMsgModFlags distinguishes menu message sub-kinds, matching the
// modflags bit described in spec.md §3.
type InterMsgModFlags uint8

const (
	ModNone       InterMsgModFlags = 0
	ModInputMenu  InterMsgModFlags = 0x01
	ModMessageMenu InterMsgModFlags = 0x02
)

// Key enumerates the keyboard surface carried across the protocol,
// matching spec.md §6's keyboard surface.
type Key int

const (
	KeyNone Key = iota
	KeyA
	KeyB
	KeyEnter
	KeyBack
	KeyDel
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// InterMsg is a tagged-union message passed between the update and I/O
// loops, matching pok_intermsg.
type InterMsg struct {
	Kind      InterMsgKind
	ModFlags  InterMsgModFlags
	KeyPayload Key
	Text      string
}

// InterMsgSlot is a single-producer/single-consumer mailbox slot guarded
// by a ready/processed handshake, matching the two InterMsg slots on
// GameInfo described in spec.md §4.12: the producer sets Ready and clears
// Processed after filling Msg; the consumer sets Processed after reading.
// If a producer's previous message was never processed, it must first
// post a Noop to unstick the slot before posting the new message.
type InterMsgSlot struct {
	mu        sync.Mutex
	msg       InterMsg
	ready     bool
	processed bool
}

// NewInterMsgSlot returns an empty, already-processed slot (so the first
// real Post never sees a stuck message).
func NewInterMsgSlot() *InterMsgSlot {
	return &InterMsgSlot{processed: true}
}

// Post fills the slot with msg, unsticking a previous unprocessed message
// with a Noop first if necessary, matching the producer side of the
// ready/processed handshake.
func (s *InterMsgSlot) Post(msg InterMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready && !s.processed {
		s.msg = InterMsg{Kind: MsgNoop}
		s.ready = true
		s.processed = false
		return
	}
	s.msg = msg
	s.ready = true
	s.processed = false
}

// Take consumes the pending message, if any, marking it Processed and
// returning ok=false if the slot was empty or already drained.
func (s *InterMsgSlot) Take() (InterMsg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || s.processed {
		return InterMsg{}, false
	}
	s.processed = true
	return s.msg, true
}

// Peek reports whether a message is waiting to be consumed, without
// marking it processed.
func (s *InterMsgSlot) Peek() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && !s.processed
}
