package netio

import "github.com/pokgame/engine/errs"

// The wire is little-endian regardless of host byte order, matching
// bin16/bin32/bin64 in net.c.

// ReadU8 reads a single byte. ok is false if no byte is yet available
// (the caller should retry).
func (c *Channel) ReadU8() (v byte, ok bool, err error) {
	buf, err := c.Read(1)
	if err != nil {
		return 0, false, err
	}
	if len(buf) == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

// ReadU16 reads a little-endian uint16.
func (c *Channel) ReadU16() (v uint16, ok bool, err error) {
	buf, err := c.Read(2)
	if err != nil {
		return 0, false, err
	}
	if len(buf) < 2 {
		c.Unread(len(buf))
		return 0, false, nil
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, true, nil
}

// ReadU32 reads a little-endian uint32.
func (c *Channel) ReadU32() (v uint32, ok bool, err error) {
	buf, err := c.Read(4)
	if err != nil {
		return 0, false, err
	}
	if len(buf) < 4 {
		c.Unread(len(buf))
		return 0, false, nil
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, true, nil
}

// ReadU64 reads a little-endian uint64.
func (c *Channel) ReadU64() (v uint64, ok bool, err error) {
	buf, err := c.Read(8)
	if err != nil {
		return 0, false, err
	}
	if len(buf) < 8 {
		c.Unread(len(buf))
		return 0, false, nil
	}
	var u uint64
	for i := 7; i >= 0; i-- {
		u = u<<8 | uint64(buf[i])
	}
	return u, true, nil
}

func putU16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putU32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}
func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// WriteU8 writes a single byte, honoring output buffering.
func (c *Channel) WriteU8(v byte) error {
	_, err := c.Write([]byte{v})
	return err
}

// WriteU16 writes a little-endian uint16.
func (c *Channel) WriteU16(v uint16) error {
	b := make([]byte, 2)
	putU16(b, v)
	_, err := c.Write(b)
	return err
}

// WriteU32 writes a little-endian uint32.
func (c *Channel) WriteU32(v uint32) error {
	b := make([]byte, 4)
	putU32(b, v)
	_, err := c.Write(b)
	return err
}

// WriteU64 writes a little-endian uint64.
func (c *Channel) WriteU64(v uint64) error {
	b := make([]byte, 8)
	putU64(b, v)
	_, err := c.Write(b)
	return err
}

// ReadString reads up to max bytes or until a NUL terminator, whichever
// comes first, returning the decoded string without its terminator.
func (c *Channel) ReadString(max int) (s string, ok bool, err error) {
	buf, err := c.Read(max)
	if err != nil {
		return "", false, err
	}
	for i, b := range buf {
		if b == 0 {
			c.Unread(len(buf) - i - 1)
			return string(buf[:i]), true, nil
		}
	}
	if len(buf) < max && !c.eof {
		// not enough bytes yet to know whether a NUL follows; push back
		// and ask the caller to retry.
		c.Unread(len(buf))
		return "", false, nil
	}
	return string(buf), true, nil
}

// ReadStringZ reads into acc (a caller-owned growable buffer) until a NUL
// is seen or end-of-stream, matching pok_data_stream_read_string_ex's
// partial-accumulation behavior: on a partial receipt it returns
// ok=false without discarding the bytes already appended to acc, so a
// retry with the same acc continues where it left off.
func (c *Channel) ReadStringZ(acc *[]byte) (s string, ok bool, err error) {
	for {
		b, present, rerr := c.ReadU8()
		if rerr != nil {
			return "", false, rerr
		}
		if !present {
			return "", false, nil
		}
		if b == 0 {
			s := string(*acc)
			*acc = (*acc)[:0]
			return s, true, nil
		}
		*acc = append(*acc, b)
		if c.eof {
			s := string(*acc)
			*acc = (*acc)[:0]
			return s, true, nil
		}
	}
}

// WriteString writes s followed by a NUL terminator.
func (c *Channel) WriteString(s string) error {
	if _, err := c.Write([]byte(s)); err != nil {
		return err
	}
	return c.WriteU8(0)
}

// Line reads a single ASCII line terminated by '\n', stripping the
// terminator; used by the introductory exchange's greeting/mode/label
// lines (spec.md §6). ok is false if the line is not yet complete.
func (c *Channel) Line(maxLen int) (s string, ok bool, err error) {
	var acc []byte
	for len(acc) < maxLen {
		b, present, rerr := c.ReadU8()
		if rerr != nil {
			return "", false, rerr
		}
		if !present {
			if len(acc) > 0 {
				if uerr := c.unreadAll(acc); uerr != nil {
					return "", false, uerr
				}
			}
			return "", false, nil
		}
		if b == '\n' {
			return string(acc), true, nil
		}
		acc = append(acc, b)
	}
	return "", false, errs.Wrap(errs.KindNet, "netio.Channel.Line", errs.ErrNoRoom)
}

func (c *Channel) unreadAll(acc []byte) error {
	return c.Unread(len(acc))
}
