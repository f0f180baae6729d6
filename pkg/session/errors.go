package session

import (
	"errors"
	"fmt"

	"github.com/igd-protocol/igd-go/pkg/wire"
)

var (
	// ErrNotResolved is returned when a session is created over a gateway
	// whose control endpoint has not been resolved yet.
	ErrNotResolved = errors.New("session: gateway control endpoint not resolved")

	// ErrInvalidMapping is returned when a mapping fails local validation
	// before anything is sent to the gateway.
	ErrInvalidMapping = errors.New("session: invalid mapping")
)

// FaultError is a UPnP fault the gateway answered an action with,
// carried as a domain error.
type FaultError struct {
	// Code is the UPnP error code.
	Code int

	// Description is the gateway's errorDescription text.
	Description string
}

// Error renders the fault with its well-known name.
func (e *FaultError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("session: gateway fault %d %s", e.Code, wire.FaultName(e.Code))
	}
	return fmt.Sprintf("session: gateway fault %d %s: %s", e.Code, wire.FaultName(e.Code), e.Description)
}

// translateFault lifts a wire-level fault into the session's error space.
func translateFault(f *wire.Fault) error {
	return &FaultError{Code: f.Code, Description: f.Description}
}

// faultCode extracts the UPnP error code from err, or 0 when err is not
// a gateway fault.
func faultCode(err error) int {
	var fe *FaultError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}
