package http1

import (
	"bytes"
	"io"
	"strconv"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/hitchhiker/config"
	"github.com/indigo-web/hitchhiker/http/method"
	"github.com/indigo-web/hitchhiker/http/proto"
	"github.com/indigo-web/hitchhiker/http/status"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// Request carries what the server cares about in a request. The path is backed by the
// parser's buffer and stays valid until the next head is parsed.
type Request struct {
	Method        method.Method
	Path          string
	Proto         proto.Proto
	ContentLength int64
	Chunked       bool
	HasTrailer    bool
	KeepAlive     bool
}

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)

// Parser incrementally parses request heads. Bodies are never exposed, they are merely
// skipped in order to find out where the next request begins.
type Parser struct {
	state     parserState
	completed bool
	cfg       config.HTTP
	head      []byte
	request   Request
	bodyLeft  int64
	discarded int64
	chunked   *chunkedbody.Parser
}

func NewParser(cfg config.HTTP) *Parser {
	return &Parser{
		state: eHead,
		cfg:   cfg,
		head:  make([]byte, 0, min(cfg.MaxHeadSize, 1024)),
	}
}

// Request returns the most recently completed request.
func (p *Parser) Request() *Request {
	return &p.request
}

// Parse feeds the data into the parser. When HeadersCompleted is returned, extra holds
// the data following the head, which must be fed again after the request is processed.
// The same applies for the body, which is skipped on the next call.
func (p *Parser) Parse(data []byte) (state RequestState, extra []byte, err error) {
	for {
		switch p.state {
		case ePlainBody:
			if int64(len(data)) < p.bodyLeft {
				p.bodyLeft -= int64(len(data))
				return Pending, nil, nil
			}

			data = data[p.bodyLeft:]
			p.bodyLeft = 0
			p.state = eHead
		case eChunkedBody:
			for len(data) > 0 && p.state == eChunkedBody {
				chunk, rest, err := p.chunked.Parse(data, p.request.HasTrailer)
				p.discarded += int64(len(chunk))
				if p.discarded > p.cfg.MaxDiscardBody {
					return Error, nil, status.ErrBodyTooLarge
				}

				switch err {
				case nil:
					if len(rest) >= len(data) {
						return Error, nil, status.ErrBadChunk
					}
				case io.EOF:
					p.state = eHead
				default:
					return Error, nil, status.ErrBadChunk
				}

				data = rest
			}

			if p.state == eChunkedBody {
				return Pending, nil, nil
			}
		case eHead:
			if len(data) == 0 {
				return Pending, nil, nil
			}

			return p.parseHead(data)
		default:
			panic("BUG: unexpected parser state")
		}
	}
}

func (p *Parser) parseHead(data []byte) (RequestState, []byte, error) {
	if p.completed {
		p.completed = false
		p.head = p.head[:0]
		p.request = Request{}
	}

	if len(p.head) == 0 {
		// empty lines preceding the request line must be ignored
		for bytes.HasPrefix(data, crlf) {
			data = data[len(crlf):]
		}

		if len(data) == 0 {
			return Pending, nil, nil
		}
	}

	prev := len(p.head)
	p.head = append(p.head, data...)

	// the terminator may be split between the previous and the current piece of data
	searchFrom := max(prev-len(crlfcrlf)+1, 0)
	end := bytes.Index(p.head[searchFrom:], crlfcrlf)
	if end == -1 {
		if len(p.head) > p.cfg.MaxHeadSize {
			return Error, nil, status.ErrHeaderFieldsTooLarge
		}

		return Pending, nil, nil
	}

	headLen := searchFrom + end + len(crlfcrlf)
	if headLen > p.cfg.MaxHeadSize {
		return Error, nil, status.ErrHeaderFieldsTooLarge
	}

	extra := data[headLen-prev:]
	p.head = p.head[:headLen]
	p.completed = true

	if err := p.parseFields(p.head[:headLen-len(crlfcrlf)]); err != nil {
		return Error, nil, err
	}

	return HeadersCompleted, extra, nil
}

func (p *Parser) parseFields(head []byte) error {
	requestLine, fields, _ := bytes.Cut(head, crlf)
	if err := p.parseRequestLine(requestLine); err != nil {
		return err
	}

	var (
		request          = &p.request
		closeRequested   bool
		keepAliveOptedIn bool
		seenLength       bool
	)

	for len(fields) > 0 {
		var line []byte
		line, fields, _ = bytes.Cut(fields, crlf)

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 || isSpace(line[0]) || isSpace(line[colon-1]) {
			// obsolete line folding is rejected as well
			return status.ErrBadRequest
		}

		key := uf.B2S(line[:colon])
		value := bytes.TrimFunc(line[colon+1:], func(r rune) bool {
			return r == ' ' || r == '\t'
		})

		switch {
		case strcomp.EqualFold(key, "content-length"):
			if !isDigits(value) {
				return status.ErrBadContentLength
			}

			length, err := strconv.ParseInt(uf.B2S(value), 10, 64)
			if err != nil || (seenLength && length != request.ContentLength) {
				return status.ErrBadContentLength
			}

			request.ContentLength = length
			seenLength = true
		case strcomp.EqualFold(key, "transfer-encoding"):
			if !strcomp.EqualFold(uf.B2S(value), "chunked") {
				return status.ErrUnsupportedEncoding
			}

			request.Chunked = true
		case strcomp.EqualFold(key, "trailer"):
			request.HasTrailer = true
		case strcomp.EqualFold(key, "connection"):
			for _, token := range bytes.Split(value, []byte(",")) {
				switch token = bytes.TrimSpace(token); {
				case strcomp.EqualFold(uf.B2S(token), "close"):
					closeRequested = true
				case strcomp.EqualFold(uf.B2S(token), "keep-alive"):
					keepAliveOptedIn = true
				}
			}
		}
	}

	if request.Chunked && seenLength {
		return status.ErrBadRequest
	}

	if request.ContentLength > p.cfg.MaxDiscardBody {
		return status.ErrBodyTooLarge
	}

	switch request.Proto {
	case proto.HTTP11:
		request.KeepAlive = !closeRequested
	case proto.HTTP10:
		request.KeepAlive = keepAliveOptedIn && !closeRequested
	}

	switch {
	case request.Chunked:
		p.state = eChunkedBody
		p.discarded = 0
		p.chunked = chunkedbody.NewParser(chunkedbody.DefaultSettings())
	case request.ContentLength > 0:
		p.state = ePlainBody
		p.bodyLeft = request.ContentLength
	}

	return nil
}

func (p *Parser) parseRequestLine(line []byte) error {
	token, rest, found := bytes.Cut(line, []byte(" "))
	if !found || len(token) == 0 {
		return status.ErrBadRequest
	}

	for _, char := range token {
		if char <= ' ' || char >= 0x7f {
			return status.ErrBadRequest
		}
	}

	target, protocol, found := bytes.Cut(rest, []byte(" "))
	if !found {
		return status.ErrBadRequest
	}

	p.request.Proto = proto.FromBytes(protocol)
	if p.request.Proto == proto.Unknown {
		if proto.IsVersionLike(protocol) {
			return status.ErrHTTPVersionNotSupported
		}

		return status.ErrBadRequest
	}

	path, err := requestPath(target)
	if err != nil {
		return err
	}

	p.request.Method = method.Parse(uf.B2S(token))
	if p.request.Method == method.Unknown {
		return status.ErrMethodNotImplemented
	}

	p.request.Path = uf.B2S(path)

	return nil
}

// requestPath extracts the path from a request target of any form. The query is
// discarded, as routing is done by exact path match.
func requestPath(target []byte) ([]byte, error) {
	switch {
	case len(target) == 0:
		return nil, status.ErrBadRequest
	case target[0] == '/':
	case len(target) == 1 && target[0] == '*':
		return target, nil
	default:
		// absolute form, e.g. http://example.com/path
		_, afterScheme, found := bytes.Cut(target, []byte("://"))
		if !found || !isHTTPScheme(target[:len(target)-len(afterScheme)-len("://")]) {
			return nil, status.ErrBadRequest
		}

		slash := bytes.IndexByte(afterScheme, '/')
		if slash == -1 {
			return []byte("/"), nil
		}

		target = afterScheme[slash:]
	}

	if end := bytes.IndexAny(target, "?#"); end != -1 {
		target = target[:end]
	}

	for _, char := range target {
		if char <= ' ' || char == 0x7f {
			return nil, status.ErrBadRequest
		}
	}

	return target, nil
}

func isHTTPScheme(scheme []byte) bool {
	s := uf.B2S(scheme)
	return strcomp.EqualFold(s, "http") || strcomp.EqualFold(s, "https")
}

func isDigits(value []byte) bool {
	if len(value) == 0 {
		return false
	}

	for _, char := range value {
		if char < '0' || char > '9' {
			return false
		}
	}

	return true
}

func isSpace(char byte) bool {
	return char == ' ' || char == '\t'
}
