// Package netio implements the byte channel, frame codec, resumable-read
// context and netobj registry (spec.md components 1-4), grounded on
// original_source/src/net.c, net-posix.c and netobj.c.
package netio

import (
	"io"

	"github.com/pokgame/engine/errs"
)

const bufSize = 4096

// Channel is a buffered duplex byte-oriented endpoint wrapping an
// underlying io.ReadWriter (a pipe, socket, file, or the standard pair),
// matching pok_data_source in net-posix.c.
type Channel struct {
	rw io.ReadWriter

	rbuf       []byte
	rpos, rlen int
	eof        bool // sticky end-of-stream

	wbuf  []byte
	wlen  int
	wbuf0 bool // output buffering enabled
}

// NewChannel wraps rw with 4KiB read/write ring buffers and output
// buffering enabled by default.
func NewChannel(rw io.ReadWriter) *Channel {
	return &Channel{
		rw:    rw,
		rbuf:  make([]byte, bufSize),
		wbuf:  make([]byte, bufSize),
		wbuf0: true,
	}
}

// Buffering turns output buffering on or off.
func (c *Channel) Buffering(on bool) { c.wbuf0 = on }

// EndOfComms reports whether end-of-stream has been observed; it is sticky.
func (c *Channel) EndOfComms() bool { return c.eof }

// ReadBufferFull reports whether the read buffer is entirely filled with
// unread bytes, so no further read fits even after compaction.
func (c *Channel) ReadBufferFull() bool { return c.rlen == len(c.rbuf) }

// compact moves buffered-but-unread bytes down to index 0.
func (c *Channel) compact() {
	if c.rpos == 0 {
		return
	}
	copy(c.rbuf, c.rbuf[c.rpos:c.rpos+c.rlen])
	c.rpos = 0
}

// fill issues at most one syscall read to top up the read buffer, unless
// eof is already set.
func (c *Channel) fill() error {
	if c.eof {
		return nil
	}
	if c.rpos+c.rlen == len(c.rbuf) {
		c.compact()
	}
	n, err := c.rw.Read(c.rbuf[c.rpos+c.rlen:])
	if n > 0 {
		c.rlen += n
	}
	if err != nil {
		if err == io.EOF {
			c.eof = true
			return nil
		}
		return err
	}
	if n == 0 {
		c.eof = true
	}
	return nil
}

// Read returns up to max bytes. An empty, non-error slice signals
// end-of-stream (sticky). A transient unavailability (the underlying
// reader blocks) surfaces as the error from the wrapped io.Reader.
func (c *Channel) Read(max int) ([]byte, error) {
	if c.rlen == 0 {
		if err := c.fill(); err != nil {
			return nil, errs.Wrap(errs.KindNet, "netio.Channel.Read", err)
		}
	}
	n := max
	if n > c.rlen {
		n = c.rlen
	}
	out := make([]byte, n)
	copy(out, c.rbuf[c.rpos:c.rpos+n])
	c.rpos += n
	c.rlen -= n
	return out, nil
}

// ReadAny returns whatever is already buffered, issuing a syscall only if
// the buffer is currently empty.
func (c *Channel) ReadAny(max int) ([]byte, error) {
	return c.Read(max)
}

// Unread rewinds the read cursor by n bytes, which must not exceed the
// number of bytes already consumed since the last compaction.
func (c *Channel) Unread(n int) error {
	if n > c.rpos {
		return errs.Wrap(errs.KindNet, "netio.Channel.Unread", errs.ErrNoRoom)
	}
	c.rpos -= n
	c.rlen += n
	return nil
}

// Peek returns up to max unread bytes without consuming them.
func (c *Channel) Peek(max int) ([]byte, error) {
	buf, err := c.Read(max)
	if err != nil {
		return nil, err
	}
	if err := c.Unread(len(buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Pop discards up to n buffered bytes without returning them.
func (c *Channel) Pop(n int) {
	if n > c.rlen {
		n = c.rlen
	}
	c.rpos += n
	c.rlen -= n
}

// Write enqueues buf for output. When buffering is enabled (the default)
// bytes that don't fit the current ring are flushed first; when disabled,
// Write calls through to the underlying writer directly.
func (c *Channel) Write(buf []byte) (int, error) {
	if !c.wbuf0 {
		n, err := c.rw.Write(buf)
		if err != nil {
			return n, errs.Wrap(errs.KindNet, "netio.Channel.Write", err)
		}
		return n, nil
	}
	total := 0
	for len(buf) > 0 {
		room := len(c.wbuf) - c.wlen
		if room == 0 {
			if err := c.Flush(); err != nil {
				return total, err
			}
			room = len(c.wbuf)
		}
		n := len(buf)
		if n > room {
			n = room
		}
		copy(c.wbuf[c.wlen:], buf[:n])
		c.wlen += n
		buf = buf[n:]
		total += n
	}
	return total, nil
}

// Save stashes leftover write bytes into the output buffer without a
// syscall, failing with ErrNoRoom if the buffer cannot hold them.
func (c *Channel) Save(buf []byte) error {
	if len(buf) > len(c.wbuf)-c.wlen {
		return errs.Wrap(errs.KindNet, "netio.Channel.Save", errs.ErrNoRoom)
	}
	copy(c.wbuf[c.wlen:], buf)
	c.wlen += len(buf)
	return nil
}

// Flush drains the output buffer to the underlying writer.
func (c *Channel) Flush() error {
	if c.wlen == 0 {
		return nil
	}
	n, err := c.rw.Write(c.wbuf[:c.wlen])
	if n > 0 {
		copy(c.wbuf, c.wbuf[n:c.wlen])
		c.wlen -= n
	}
	if err != nil {
		return errs.Wrap(errs.KindNet, "netio.Channel.Flush", err)
	}
	return nil
}
