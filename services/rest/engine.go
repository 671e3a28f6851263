package rest

import (
	"log/slog"
	"sync"

	"devicerest-go/errcode"
	"devicerest-go/x/bufx"
)

// DefaultChunkSize is the scratch buffer handed to each handler.
const DefaultChunkSize = 64

// WellKnownCore is the discovery resource path.
const WellKnownCore = ".well-known/core"

// HandlerFunc fills resp for req. buf is scratch owned by this dispatch;
// its length is the preferred payload size.
type HandlerFunc func(req *Request, resp *Response, buf []byte)

// Resource is a path with its allowed verbs, link attributes and handler.
type Resource struct {
	Path       string
	Methods    Method
	Attributes string
	Handler    HandlerFunc
}

// Allows reports whether m is in the resource's verb set.
func (r *Resource) Allows(m Method) bool { return r.Methods&m != 0 }

// Engine owns the resource table and serialises handler invocations.
type Engine struct {
	mu     sync.Mutex
	order  []*Resource
	byPath map[string]*Resource
	chunk  int
	log    *slog.Logger
}

// NewEngine returns an engine with the discovery resource already active.
// chunk <= 0 selects DefaultChunkSize.
func NewEngine(chunk int, log *slog.Logger) *Engine {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		byPath: make(map[string]*Resource),
		chunk:  chunk,
		log:    log.With("component", "rest"),
	}
	e.byPath[WellKnownCore] = &Resource{
		Path:    WellKnownCore,
		Methods: MethodGet,
		Handler: e.wellKnown,
	}
	return e
}

// Activate registers res. Paths are unique.
func (e *Engine) Activate(res *Resource) error {
	if res == nil || res.Handler == nil || res.Path == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "activate", Msg: "incomplete resource"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.byPath[res.Path]; dup {
		return &errcode.E{C: errcode.DuplicateResource, Op: "activate", Msg: res.Path}
	}
	e.byPath[res.Path] = res
	e.order = append(e.order, res)
	e.log.Debug("resource activated", "path", res.Path, "attrs", res.Attributes)
	return nil
}

// Resources returns the activated resources in activation order, not
// including the discovery resource.
func (e *Engine) Resources() []Resource {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Resource, 0, len(e.order))
	for _, r := range e.order {
		out = append(out, *r)
	}
	return out
}

// Dispatch routes req to its handler and returns the finished response.
func (e *Engine) Dispatch(req *Request) *Response {
	resp := &Response{}

	e.mu.Lock()
	defer e.mu.Unlock()

	res, ok := e.byPath[req.Path]
	switch {
	case !ok:
		resp.SetStatus(StatusNotFound)
	case !res.Allows(req.Method):
		resp.SetStatus(StatusMethodNotAllowed)
	default:
		buf := make([]byte, e.chunk)
		res.Handler(req, resp, buf)
		finish(resp)
	}

	e.log.Debug("dispatch",
		"method", req.Method.String(),
		"path", req.Path,
		"status", resp.Status().String(),
		"len", len(resp.Payload()))
	return resp
}

// finish applies the default status and strips payloads from failures.
func finish(resp *Response) {
	if resp.status == 0 {
		if resp.payload != nil {
			resp.status = StatusContent
		} else {
			resp.status = StatusChanged
		}
	}
	if !resp.status.OK() {
		resp.payload = nil
	}
}

// wellKnown renders the CoRE link-format listing. Called with mu held.
func (e *Engine) wellKnown(_ *Request, resp *Response, _ []byte) {
	size := 0
	for _, r := range e.order {
		size += len(r.Path) + len(r.Attributes) + 5
	}
	out := make([]byte, size)
	a := bufx.New(out)
	for i, r := range e.order {
		if i > 0 {
			_ = a.AppendByte(',')
		}
		_ = a.AppendString("</")
		_ = a.AppendString(r.Path)
		_ = a.AppendByte('>')
		if r.Attributes != "" {
			_ = a.AppendByte(';')
			_ = a.AppendString(r.Attributes)
		}
	}
	resp.SetContentType(LinkFormat)
	resp.SetPayload(a.Bytes())
	resp.SetStatus(StatusContent)
}
