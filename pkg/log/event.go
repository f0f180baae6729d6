package log

import (
	"time"
)

// Event represents one captured gateway interaction.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ExchangeID correlates the request and response of one SOAP action
	// (UUID). Empty for discovery events.
	ExchangeID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Gateway identifies the gateway the event concerns (host:port plus
	// description path).
	Gateway string `cbor:"5,keyasint,omitempty"`

	// Action is the SOAP action name, when the event concerns one.
	Action string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Discovery *DiscoveryEvent `cbor:"7,keyasint,omitempty"`
	Exchange  *ExchangeEvent  `cbor:"8,keyasint,omitempty"`
	Fault     *FaultEvent     `cbor:"9,keyasint,omitempty"`
	Error     *ErrorEvent     `cbor:"10,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a message from the gateway.
	DirectionIn Direction = 0
	// DirectionOut indicates a message to the gateway.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryDiscovery indicates a gateway was located or resolved.
	CategoryDiscovery Category = 0
	// CategoryExchange indicates a SOAP action request or response.
	CategoryExchange Category = 1
	// CategoryFault indicates a UPnP fault answered an action.
	CategoryFault Category = 2
	// CategoryError indicates a transport or decode failure.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryExchange:
		return "EXCHANGE"
	case CategoryFault:
		return "FAULT"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryEvent captures a located or resolved gateway.
type DiscoveryEvent struct {
	// Location is the description document URL.
	Location string `cbor:"1,keyasint"`

	// ControlURL is the resolved control endpoint (set once the
	// description has been parsed).
	ControlURL string `cbor:"2,keyasint,omitempty"`
}

// ExchangeEvent captures one side of a SOAP action exchange.
type ExchangeEvent struct {
	// Endpoint is the control URL the action was posted to.
	Endpoint string `cbor:"1,keyasint"`

	// Size is the envelope size in bytes.
	Size int `cbor:"2,keyasint"`

	// Body is the raw envelope (may be truncated for large bodies).
	Body []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Body was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// FaultEvent captures a UPnP fault returned by the gateway.
type FaultEvent struct {
	// Code is the UPnP error code (402, 713, 714, 718, ...).
	Code int `cbor:"1,keyasint"`

	// Description is the gateway's errorDescription text.
	Description string `cbor:"2,keyasint,omitempty"`
}

// ErrorEvent captures transport and decode failures.
type ErrorEvent struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
