// Package rest hosts the device's REST resources and the small engine that
// dispatches requests to them.
//
// Resources are registered with the verbs they accept and the CoRE link
// attributes advertised under /.well-known/core:
//
//	leds    PUT|POST  title="LED controls";rt="Text"
//	tmp     GET       title="Temperature";rt="Text"
//	acc     GET       title="Accelerometer";rt="Text"
//	acctmp  GET       title="Temperature and Accelerometer";rt="Text"
//
// A handler receives the request, the response to fill in and a scratch
// buffer owned by that single dispatch. It runs to completion without
// blocking; Engine.Dispatch serialises invocations so transports on other
// goroutines (HTTP, MQTT, the telemetry poller) never overlap handlers.
//
// Handler failures are reported to clients as 4.00 Bad Request with an empty
// payload. Transports map Status to their own status space.
package rest
