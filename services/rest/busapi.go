package rest

import (
	"context"
	"fmt"

	"devicerest-go/bus"
	"devicerest-go/errcode"
	"devicerest-go/types"
	"devicerest-go/x/timex"
)

// TopicCall carries types.Call requests; replies are types.Reading.
var TopicCall = bus.T("restapi", "call")

// Reading converts a finished response into its bus representation.
func Reading(path string, resp *Response) types.Reading {
	return types.Reading{
		Path:        path,
		Status:      resp.Status().String(),
		ContentType: string(resp.ContentType()),
		Payload:     append([]byte(nil), resp.Payload()...),
		TS:          timex.NowMs(),
	}
}

// Call dispatches c and returns the reading.
func (e *Engine) Call(c types.Call) types.Reading {
	m, ok := ParseMethod(c.Method)
	if !ok {
		return types.Reading{Path: c.Path, Status: StatusMethodNotAllowed.String(), TS: timex.NowMs()}
	}
	req, err := NewRequest(m, c.Path, c.Query)
	if err != nil {
		return types.Reading{Path: c.Path, Status: StatusBadRequest.String(), TS: timex.NowMs()}
	}
	return Reading(req.Path, e.Dispatch(req))
}

// ServeBus subscribes to TopicCall and answers calls on a goroutine until
// ctx ends. The subscription is in place when ServeBus returns.
func (e *Engine) ServeBus(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(TopicCall)
	go e.serveBus(ctx, conn, sub)
}

func (e *Engine) serveBus(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			c, isCall := msg.Payload.(types.Call)
			if !isCall {
				e.log.Warn("ignoring non-call payload", "type", fmt.Sprintf("%T", msg.Payload))
				continue
			}
			conn.Reply(msg, e.Call(c), false)
		}
	}
}

// CallBus sends c over the bus and waits for the engine's reading.
func CallBus(ctx context.Context, conn *bus.Connection, c types.Call) (types.Reading, error) {
	reply, err := conn.RequestWait(ctx, conn.NewMessage(TopicCall, c, false))
	if err != nil {
		return types.Reading{}, err
	}
	r, ok := reply.Payload.(types.Reading)
	if !ok {
		return types.Reading{}, &errcode.E{C: errcode.Error, Op: "call", Msg: fmt.Sprintf("unexpected reply %T", reply.Payload)}
	}
	return r, nil
}
