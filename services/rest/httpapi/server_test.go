package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devicerest-go/services/logging"
	"devicerest-go/services/rest"
	"devicerest-go/types"
)

type mockLEDs struct{ mock.Mock }

func (m *mockLEDs) On(c types.Color)  { m.Called(c) }
func (m *mockLEDs) Off(c types.Color) { m.Called(c) }

type therm int16

func (t therm) ReadTemperatureRaw() int16 { return int16(t) }

type accel [3]int16

func (a accel) ReadAxis(x types.Axis) int16 { return a[x] }

func testServer(t *testing.T) (*Server, *mockLEDs) {
	t.Helper()
	leds := &mockLEDs{}
	e := rest.NewEngine(0, nil)
	h := &rest.Handlers{LEDs: leds, Therm: therm(0x1A20), Accel: accel{100, -100, 200}}
	require.NoError(t, h.ActivateAll(e))

	srv, err := New(Deps{Logger: logging.Discard(), Engine: e, Version: "test"})
	require.NoError(t, err)
	return srv, leds
}

func serve(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestGetTmp(t *testing.T) {
	srv, _ := testServer(t)

	rec := serve(t, srv, http.MethodGet, "/tmp")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "7", rec.Header().Get("Content-Length"))
	assert.Equal(t, "2.05", rec.Header().Get("X-CoAP-Code"))
	assert.Equal(t, "26.1250", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestGetAccTmp(t *testing.T) {
	srv, _ := testServer(t)
	rec := serve(t, srv, http.MethodGet, "/acctmp")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100,-100,200:26.1250", rec.Body.String())
}

func TestPutLeds(t *testing.T) {
	srv, leds := testServer(t)
	leds.Mock.On("Off", types.ColorGreen).Return().Once()

	rec := serve(t, srv, http.MethodPut, "/leds?col=g&on=0")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "2.04", rec.Header().Get("X-CoAP-Code"))
	assert.Empty(t, rec.Body.String())
	leds.AssertExpectations(t)
}

func TestPutLedsBadColour(t *testing.T) {
	srv, leds := testServer(t)

	rec := serve(t, srv, http.MethodPut, "/leds?col=x&on=0")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, leds.Calls)
}

func TestRoutingErrors(t *testing.T) {
	srv, _ := testServer(t)

	assert.Equal(t, http.StatusNotFound, serve(t, srv, http.MethodGet, "/humidity").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, srv, http.MethodGet, "/leds").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, srv, http.MethodPost, "/tmp").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, srv, http.MethodPatch, "/leds").Code)
}

func TestWellKnownAndHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := serve(t, srv, http.MethodGet, "/.well-known/core")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/link-format", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `</leds>;title="LED controls";rt="Text"`)

	rec = serve(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())
}

func TestRequestIDIsKept(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tmp", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestRecoveryMiddleware(t *testing.T) {
	e := rest.NewEngine(0, nil)
	require.NoError(t, e.Activate(&rest.Resource{
		Path: "boom", Methods: rest.MethodGet,
		Handler: func(*rest.Request, *rest.Response, []byte) { panic("boom") },
	}))
	srv, err := New(Deps{Logger: logging.Discard(), Engine: e})
	require.NoError(t, err)

	rec := serve(t, srv, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The engine is still usable after the panic.
	rec = serve(t, srv, http.MethodGet, "/.well-known/core")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartAndClose(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.Addr = "127.0.0.1:0"
	require.NoError(t, srv.Start(context.Background()))

	resp, err := http.Get("http://" + srv.Addr() + "/tmp")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "26.1250", string(body))

	require.NoError(t, srv.Close())
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Deps{Engine: rest.NewEngine(0, nil)})
	assert.Error(t, err)
	_, err = New(Deps{Logger: logging.Discard()})
	assert.Error(t, err)
}
