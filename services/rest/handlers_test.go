package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devicerest-go/types"
)

type mockLEDs struct{ mock.Mock }

func (m *mockLEDs) On(c types.Color)  { m.Called(c) }
func (m *mockLEDs) Off(c types.Color) { m.Called(c) }

type fixedTherm int16

func (f fixedTherm) ReadTemperatureRaw() int16 { return int16(f) }

type fixedAccel [3]int16

func (f fixedAccel) ReadAxis(a types.Axis) int16 { return f[a] }

func newTestEngine(t *testing.T, chunk int, raw int16, acc [3]int16) (*Engine, *mockLEDs) {
	t.Helper()
	leds := &mockLEDs{}
	h := &Handlers{LEDs: leds, Therm: fixedTherm(raw), Accel: fixedAccel(acc)}
	e := NewEngine(chunk, nil)
	require.NoError(t, h.ActivateAll(e))
	return e, leds
}

func do(t *testing.T, e *Engine, m Method, path, q string) *Response {
	t.Helper()
	req, err := NewRequest(m, path, q)
	require.NoError(t, err)
	return e.Dispatch(req)
}

func TestLedsTurnsGreenOff(t *testing.T) {
	e, leds := newTestEngine(t, 0, 0, [3]int16{})
	leds.Mock.On("Off", types.ColorGreen).Return().Once()

	resp := do(t, e, MethodPut, "/leds", "col=g&on=0")

	assert.Equal(t, StatusChanged, resp.Status())
	assert.Empty(t, resp.Payload())
	leds.AssertExpectations(t)
	leds.AssertNumberOfCalls(t, "Off", 1)
	leds.AssertNotCalled(t, "On", mock.Anything)
}

func TestLedsRejectsUnknownColour(t *testing.T) {
	e, leds := newTestEngine(t, 0, 0, [3]int16{})

	resp := do(t, e, MethodPut, "/leds", "col=x&on=0")

	assert.Equal(t, StatusBadRequest, resp.Status())
	assert.Empty(t, resp.Payload())
	assert.Empty(t, leds.Calls)
}

func TestLedsRejectsUnknownSwitchToken(t *testing.T) {
	e, leds := newTestEngine(t, 0, 0, [3]int16{})

	for _, q := range []string{"on=2", "col=g&on=true", "col=gg", "col=R"} {
		resp := do(t, e, MethodPost, "/leds", q)
		assert.Equal(t, StatusBadRequest, resp.Status(), q)
	}
	assert.Empty(t, leds.Calls)
}

func TestLedsDefaults(t *testing.T) {
	cases := []struct {
		q     string
		call  string
		color types.Color
	}{
		{"", "On", types.ColorRed},
		{"col=&on=", "On", types.ColorRed},
		{"col=b", "On", types.ColorBlue},
		{"on=0", "Off", types.ColorRed},
		{"col=g&on=1", "On", types.ColorGreen},
	}
	for _, tc := range cases {
		e, leds := newTestEngine(t, 0, 0, [3]int16{})
		leds.Mock.On(tc.call, tc.color).Return().Once()

		resp := do(t, e, MethodPut, "leds", tc.q)

		assert.Equal(t, StatusChanged, resp.Status(), tc.q)
		leds.AssertExpectations(t)
		assert.Len(t, leds.Calls, 1, tc.q)
	}
}

func TestTmp(t *testing.T) {
	cases := []struct {
		raw  int16
		want string
	}{
		{0x1A20, "26.1250"},
		{0, "0.0000"},
		{-320, "-1.2500"},
		{-16, "-0.0625"},
		{-32768, "-128.0000"},
	}
	for _, tc := range cases {
		e, _ := newTestEngine(t, 0, tc.raw, [3]int16{})
		resp := do(t, e, MethodGet, "/tmp", "")
		assert.Equal(t, StatusContent, resp.Status())
		assert.Equal(t, TextPlain, resp.ContentType())
		assert.Equal(t, tc.want, string(resp.Payload()))
	}
}

func TestAccAndAccTmp(t *testing.T) {
	e, _ := newTestEngine(t, 0, 0x1A20, [3]int16{100, -100, 200})

	resp := do(t, e, MethodGet, "/acc", "")
	assert.Equal(t, StatusContent, resp.Status())
	assert.Equal(t, "100,-100,200", string(resp.Payload()))

	resp = do(t, e, MethodGet, "/acctmp", "")
	assert.Equal(t, StatusContent, resp.Status())
	assert.Equal(t, TextPlain, resp.ContentType())
	assert.Equal(t, "100,-100,200:26.1250", string(resp.Payload()))
}

func TestAccTmpWidestFitsScratch(t *testing.T) {
	e, _ := newTestEngine(t, 0, -32768, [3]int16{-32768, -32768, -32768})

	resp := do(t, e, MethodGet, "/acctmp", "")

	require.Equal(t, StatusContent, resp.Status())
	assert.Equal(t, "-32768,-32768,-32768:-128.0000", string(resp.Payload()))
	assert.Len(t, resp.Payload(), accTmpSize)
}

func TestSmallChunkFailsWithoutPayload(t *testing.T) {
	e, _ := newTestEngine(t, 8, 0x1A20, [3]int16{100, -100, 200})

	resp := do(t, e, MethodGet, "/tmp", "")
	assert.Equal(t, StatusContent, resp.Status())
	assert.Equal(t, "26.1250", string(resp.Payload()))

	resp = do(t, e, MethodGet, "/acc", "")
	assert.Equal(t, StatusBadRequest, resp.Status())
	assert.Empty(t, resp.Payload())
}
