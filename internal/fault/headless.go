package fault

import "errors"

// HeadlessSignal is the control-flow value a renderer brick returns instead
// of a normal result. Rendering hands control to a different surface (a
// panel or sidebar), so the payload travels up the interpreter's error path
// and is caught at the run boundary: a caller that requested headless
// execution receives the signal as its result; any other caller gets it
// re-thrown so the surrounding surface can take over.
//
// It satisfies error only so it can ride the existing propagation path. It
// is deliberately not a BusinessError and never reaches user display.
type HeadlessSignal struct {
	// BrickID names the renderer that produced the payload.
	BrickID string
	// Payload is the renderer output destined for another surface.
	Payload any
}

func (s *HeadlessSignal) Error() string {
	return "headless mode: renderer payload pending for brick " + s.BrickID
}

// AsHeadless unwraps err into a HeadlessSignal when it is one.
func AsHeadless(err error) (*HeadlessSignal, bool) {
	var s *HeadlessSignal
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
