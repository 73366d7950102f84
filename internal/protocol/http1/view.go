package http1

// View is a cursor over an immutable buffer. Advancing it never copies nor reallocates
// the underlying data.
type View struct {
	buf []byte
	off int
}

func NewView(b []byte) View {
	return View{buf: b}
}

// Remaining returns the part of the buffer which wasn't consumed yet.
func (v View) Remaining() []byte {
	return v.buf[v.off:]
}

func (v View) Done() bool {
	return v.off >= len(v.buf)
}

func (v *View) Advance(n int) {
	v.off = min(v.off+max(n, 0), len(v.buf))
}
