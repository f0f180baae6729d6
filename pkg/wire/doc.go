// Package wire implements the SOAP encode/decode boundary for the
// WANIPConnection control protocol.
//
// The package converts between typed action requests/responses and the
// XML envelopes a gateway's control endpoint speaks:
//
//	body, err := wire.EncodeActionRequest(wire.WANIPConnectionService,
//	    wire.ActionGetExternalIPAddress, nil)
//
//	resp, fault, err := wire.DecodeActionResponse[wire.GetExternalIPAddressResponse](data)
//
// A decoded response is exactly one of three things: a typed success
// payload, a Fault (the gateway answered with a UPnPError detail), or a
// decode error. Faults are protocol-level results, not transport
// failures - callers decide which fault codes are errors in their
// context (713 ends an enumeration, 714 means a lookup missed).
package wire
