// Package codec turns query tokens into typed values and sensor samples into
// the ASCII representations served by the REST resources.
//
// Formatters render into a caller-supplied buffer and return the number of
// bytes written. A buffer too small for the rendering yields errcode.Truncated
// and is left untouched; output is never cut short.
//
// Wire formats:
//
//	temperature  "26.1250", "-1.2500", "-0.0625"
//	axes         "100,-100,200"
package codec
