// Package proto enumerates the HTTP versions the server speaks.
package proto

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
)

type Proto uint8

const (
	Unknown Proto = iota
	HTTP10
	HTTP11
)

var statusLinePrefixes = [...]string{
	HTTP10: "HTTP/1.0 ",
	HTTP11: "HTTP/1.1 ",
}

// String returns the version as it opens a status line, thus with a trailing space.
// Unknown versions are rendered empty.
func (p Proto) String() string {
	if p == Unknown || int(p) >= len(statusLinePrefixes) {
		return ""
	}

	return statusLinePrefixes[p]
}

var scheme = []byte("HTTP/")

// FromBytes recognizes the version token of a request line, e.g. HTTP/1.1
func FromBytes(token []byte) Proto {
	if len(token) != len("HTTP/x.x") || !bytes.HasPrefix(token, scheme) || token[6] != '.' {
		return Unknown
	}

	return fromDigits(token[5], token[7])
}

func fromDigits(major, minor byte) Proto {
	if major != '1' {
		return Unknown
	}

	switch minor {
	case '0':
		return HTTP10
	case '1':
		return HTTP11
	default:
		return Unknown
	}
}

// IsVersionLike reports whether the token looks like an HTTP version, even if the
// version itself isn't supported.
func IsVersionLike(token []byte) bool {
	return bytes.HasPrefix(token, scheme) && uf.B2S(token) != "HTTP/"
}
