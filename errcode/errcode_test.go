package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":                 OK,
		"bad_request":        BadRequest,
		"unknown_token":      UnknownToken,
		"truncated":          Truncated,
		"overflow":           Overflow,
		"not_found":          NotFound,
		"method_not_allowed": MethodNotAllowed,
		"unknown_pin":        UnknownPin,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	type C struct {
		err  error
		want Code
	}
	for _, c := range []C{
		{nil, OK},
		{Overflow, Overflow},
		{fmt.Errorf("compose: %w", Truncated), Truncated},
		{&E{C: UnknownPin, Op: "leds", Msg: "GPIO99"}, UnknownPin},
		{fmt.Errorf("hal: %w", &E{C: UnknownBus}), UnknownBus},
		{errors.New("boom"), Error},
	} {
		if got := Of(c.err); got != c.want {
			t.Fatalf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestWrappedIsMatchesCode(t *testing.T) {
	cause := errors.New("i2c nack")
	err := Wrap(UnknownBus, "open", cause)
	if !errors.Is(err, UnknownBus) {
		t.Fatalf("errors.Is(%v, UnknownBus) = false", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if got, want := err.Error(), "open: unknown_bus"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
