package rest

import (
	"net/url"
	"strings"

	"devicerest-go/errcode"
)

// ---- Methods ----

// Method is a bit in a resource's allowed-verb set.
type Method uint8

const (
	MethodGet Method = 1 << iota
	MethodPost
	MethodPut
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ParseMethod maps an upper-case verb name to its Method bit.
func ParseMethod(s string) (Method, bool) {
	switch s {
	case "GET":
		return MethodGet, true
	case "POST":
		return MethodPost, true
	case "PUT":
		return MethodPut, true
	case "DELETE":
		return MethodDelete, true
	default:
		return 0, false
	}
}

// ---- Status ----

// Status is a CoAP response code packed as class<<5 | detail.
type Status uint8

const (
	StatusCreated             Status = 2<<5 | 1
	StatusChanged             Status = 2<<5 | 4
	StatusContent             Status = 2<<5 | 5
	StatusBadRequest          Status = 4<<5 | 0
	StatusNotFound            Status = 4<<5 | 4
	StatusMethodNotAllowed    Status = 4<<5 | 5
	StatusInternalServerError Status = 5<<5 | 0
)

func (s Status) Class() uint8  { return uint8(s) >> 5 }
func (s Status) Detail() uint8 { return uint8(s) & 0x1F }

// String renders the dotted form, e.g. "2.05".
func (s Status) String() string {
	d := s.Detail()
	return string([]byte{'0' + s.Class(), '.', '0' + d/10, '0' + d%10})
}

// OK reports a 2.xx code.
func (s Status) OK() bool { return s.Class() == 2 }

// HTTP maps the code to the closest HTTP status.
func (s Status) HTTP() int {
	switch s {
	case StatusCreated:
		return 201
	case StatusChanged:
		return 204
	case StatusContent:
		return 200
	case StatusBadRequest:
		return 400
	case StatusNotFound:
		return 404
	case StatusMethodNotAllowed:
		return 405
	}
	switch s.Class() {
	case 2:
		return 200
	case 4:
		return 400
	default:
		return 500
	}
}

// ---- Content types ----

type ContentType string

const (
	TextPlain  ContentType = "text/plain"
	LinkFormat ContentType = "application/link-format"
)

// ---- Request ----

// Request is one decoded incoming call.
type Request struct {
	Method Method
	Path   string
	query  url.Values
}

// NewRequest builds a request for path (leading '/' optional) with a raw
// query string such as "col=g&on=0".
func NewRequest(m Method, path, rawQuery string) (*Request, error) {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, &errcode.E{C: errcode.BadRequest, Op: "parse_query", Err: err}
	}
	return &Request{Method: m, Path: strings.Trim(path, "/"), query: q}, nil
}

// QueryVariable returns the first value of name. A missing or empty
// variable reports false so the caller falls back to its default.
func (r *Request) QueryVariable(name string) (string, bool) {
	v := r.query.Get(name)
	return v, v != ""
}

// ---- Response ----

// Response collects what a handler decided. The payload slice refers to the
// dispatch's scratch buffer; it is not copied.
type Response struct {
	status      Status
	contentType ContentType
	payload     []byte
}

func (r *Response) SetStatus(s Status)            { r.status = s }
func (r *Response) SetContentType(ct ContentType) { r.contentType = ct }
func (r *Response) SetPayload(p []byte)           { r.payload = p }

func (r *Response) Status() Status           { return r.status }
func (r *Response) ContentType() ContentType { return r.contentType }
func (r *Response) Payload() []byte          { return r.payload }
