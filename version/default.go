package version

import (
	"io"
)

// pipePair is an in-memory io.ReadWriter built from an io.Pipe, used to
// wire the built-in default scenario to a netio.Channel without spawning
// a real subprocess.
type pipePair struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipePair) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipePair) Write(b []byte) (int, error) { return p.w.Write(b) }

// Default returns an io.ReadWriter wired to the built-in default scenario
// rather than an external subprocess; wrapped in a netio.Channel it serves
// like a subprocess's pipes, so ioloop.Loop stays oblivious to which one
// it's talking to, matching
// spec.md §1's "local 'default' scenario" alternative to a version peer.
//
// The returned io.ReadWriter is the engine-side end; scenario is handed the
// peer-side end and is responsible for running the greeting/intermediate
// exchanges and then looping on the general exchange until the engine
// side closes.
func Default(scenario func(peer io.ReadWriter)) io.ReadWriter {
	r1, w1 := io.Pipe() // engine -> scenario
	r2, w2 := io.Pipe() // scenario -> engine

	engineSide := pipePair{r: r2, w: w1}
	peerSide := pipePair{r: r1, w: w2}

	go scenario(peerSide)

	return engineSide
}
