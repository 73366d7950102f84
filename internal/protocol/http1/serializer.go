package http1

import (
	"strconv"

	"github.com/indigo-web/hitchhiker/http/proto"
	"github.com/indigo-web/hitchhiker/http/status"
)

// Serializer renders response heads. The buffer is reused between responses, so the
// previously returned head is invalidated by the next call.
type Serializer struct {
	buff []byte
}

func NewSerializer() *Serializer {
	return &Serializer{
		buff: make([]byte, 0, 128),
	}
}

// Head renders the status line and the header fields for a body of the given length.
// The Content-Length field is always present, even for bodyless responses to HEAD.
func (s *Serializer) Head(protocol proto.Proto, code status.Code, length int, keepAlive bool) []byte {
	if protocol == proto.Unknown {
		protocol = proto.HTTP11
	}

	buff := append(s.buff[:0], protocol.String()...)
	buff = append(buff, status.StringCode(code)...)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(code)...)
	buff = append(buff, crlf...)
	buff = append(buff, "Content-Length: "...)
	buff = strconv.AppendInt(buff, int64(length), 10)
	buff = append(buff, crlf...)

	switch {
	case !keepAlive:
		buff = append(buff, "Connection: close\r\n"...)
	case protocol == proto.HTTP10:
		buff = append(buff, "Connection: keep-alive\r\n"...)
	}

	s.buff = append(buff, crlf...)

	return s.buff
}
