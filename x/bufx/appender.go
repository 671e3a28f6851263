// Package bufx composes multi-part payloads into a fixed-capacity buffer.
//
// An Appender never grows its destination. A fragment that does not fit is
// rejected whole with errcode.Overflow; bytes written by earlier successful
// appends stay as they were and the cursor does not move.
//
//	var s [30]byte
//	a := bufx.New(s[:])
//	if err := a.Append(acc); err != nil { ... }
//	if err := a.AppendByte(':'); err != nil { ... }
//	n := a.Finalize()
package bufx

import "devicerest-go/errcode"

// Appender is a write cursor over a caller-owned byte region.
// The zero value has no capacity.
type Appender struct {
	dst []byte
	n   int
}

// New returns an Appender writing into dst[0:len(dst)].
func New(dst []byte) *Appender {
	return &Appender{dst: dst}
}

// Append copies p at the cursor, or fails with errcode.Overflow leaving the
// destination untouched.
func (a *Appender) Append(p []byte) error {
	if len(p) > a.Remaining() {
		return errcode.Overflow
	}
	a.n += copy(a.dst[a.n:], p)
	return nil
}

// AppendString is Append for string fragments.
func (a *Appender) AppendString(s string) error {
	if len(s) > a.Remaining() {
		return errcode.Overflow
	}
	a.n += copy(a.dst[a.n:], s)
	return nil
}

// AppendByte appends a single separator byte.
func (a *Appender) AppendByte(c byte) error {
	if a.Remaining() < 1 {
		return errcode.Overflow
	}
	a.dst[a.n] = c
	a.n++
	return nil
}

// Remaining reports how many bytes can still be appended.
func (a *Appender) Remaining() int { return len(a.dst) - a.n }

// Finalize returns the number of bytes written so far. It never fails and may
// be called more than once.
func (a *Appender) Finalize() int { return a.n }

// Bytes returns the written prefix of the destination.
func (a *Appender) Bytes() []byte { return a.dst[:a.n] }
