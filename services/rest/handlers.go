package rest

import (
	"devicerest-go/services/rest/codec"
	"devicerest-go/types"
	"devicerest-go/x/bufx"
)

// Peripheral collaborators. Reads are synchronous and infallible at this
// layer; adaptors below deal with bus errors.
type (
	LEDs interface {
		On(types.Color)
		Off(types.Color)
	}
	Thermometer interface {
		ReadTemperatureRaw() int16
	}
	Accelerometer interface {
		ReadAxis(types.Axis) int16
	}
)

// Link attributes advertised for each resource.
const (
	AttrLEDs   = `title="LED controls";rt="Text"`
	AttrTmp    = `title="Temperature";rt="Text"`
	AttrAcc    = `title="Accelerometer";rt="Text"`
	AttrAccTmp = `title="Temperature and Accelerometer";rt="Text"`
	accTmpSize = 30
	tmpScratch = 20
)

// Handlers binds the four device resources to their peripherals.
type Handlers struct {
	LEDs  LEDs
	Therm Thermometer
	Accel Accelerometer
}

// Resources returns leds, tmp, acc and acctmp ready for Engine.Activate.
func (h *Handlers) Resources() []*Resource {
	return []*Resource{
		{Path: "leds", Methods: MethodPut | MethodPost, Attributes: AttrLEDs, Handler: h.Leds},
		{Path: "tmp", Methods: MethodGet, Attributes: AttrTmp, Handler: h.Tmp},
		{Path: "acc", Methods: MethodGet, Attributes: AttrAcc, Handler: h.Acc},
		{Path: "acctmp", Methods: MethodGet, Attributes: AttrAccTmp, Handler: h.AccTmp},
	}
}

// ActivateAll registers every resource of h on e.
func (h *Handlers) ActivateAll(e *Engine) error {
	for _, r := range h.Resources() {
		if err := e.Activate(r); err != nil {
			return err
		}
	}
	return nil
}

// Leds switches one LED. col selects r, g or b (default r); on is 1 or 0
// (default 1). Any other token is rejected without touching the LEDs.
func (h *Handlers) Leds(req *Request, resp *Response, _ []byte) {
	color := types.ColorRed
	on := true

	if tok, ok := req.QueryVariable("col"); ok {
		c, err := codec.DecodeSelector(tok)
		if err != nil {
			resp.SetStatus(StatusBadRequest)
			return
		}
		color = c
	}
	if tok, ok := req.QueryVariable("on"); ok {
		b, err := codec.DecodeBool(tok)
		if err != nil {
			resp.SetStatus(StatusBadRequest)
			return
		}
		on = b
	}

	if on {
		h.LEDs.On(color)
	} else {
		h.LEDs.Off(color)
	}
	resp.SetStatus(StatusChanged)
}

// Tmp returns the current temperature, e.g. "26.1250".
func (h *Handlers) Tmp(_ *Request, resp *Response, buf []byte) {
	var s [tmpScratch]byte
	n, err := codec.FormatTemperature(s[:], h.Therm.ReadTemperatureRaw())
	if err != nil {
		resp.SetStatus(StatusBadRequest)
		return
	}
	reply(resp, buf, s[:n])
}

// Acc returns the three raw axis readings, e.g. "100,-100,200".
func (h *Handlers) Acc(_ *Request, resp *Response, buf []byte) {
	var s [codec.MaxAxesLen]byte
	n, err := h.formatAxes(s[:])
	if err != nil {
		resp.SetStatus(StatusBadRequest)
		return
	}
	reply(resp, buf, s[:n])
}

// AccTmp returns "X,Y,Z:T", the accelerometer reading followed by the
// temperature.
func (h *Handlers) AccTmp(_ *Request, resp *Response, buf []byte) {
	var s [accTmpSize]byte
	var st [codec.MaxAxesLen]byte
	a := bufx.New(s[:])

	n, err := h.formatAxes(st[:])
	if err != nil || a.Append(st[:n]) != nil || a.AppendByte(':') != nil {
		resp.SetStatus(StatusBadRequest)
		return
	}
	n, err = codec.FormatTemperature(st[:], h.Therm.ReadTemperatureRaw())
	if err != nil || a.Append(st[:n]) != nil {
		resp.SetStatus(StatusBadRequest)
		return
	}
	reply(resp, buf, a.Bytes())
}

func (h *Handlers) formatAxes(dst []byte) (int, error) {
	x := h.Accel.ReadAxis(types.AxisX)
	y := h.Accel.ReadAxis(types.AxisY)
	z := h.Accel.ReadAxis(types.AxisZ)
	return codec.FormatAxes(dst, x, y, z)
}

// reply copies p into the dispatch buffer and marks it text/plain.
func reply(resp *Response, buf, p []byte) {
	a := bufx.New(buf)
	if a.Append(p) != nil {
		resp.SetStatus(StatusBadRequest)
		return
	}
	resp.SetContentType(TextPlain)
	resp.SetPayload(a.Bytes())
	resp.SetStatus(StatusContent)
}
