// Package rpc provides the asynchronous call envelope used to drive
// SOAP actions against a gateway's control endpoint.
//
// Each exchange is represented by a Future parameterized by its expected
// success payload. Begin dispatches the call on its own goroutine and
// completes the future exactly once with one of three outcomes: a typed
// success value, a protocol fault, or a transport error.
//
//	fut := rpc.Begin[wire.GetExternalIPAddressResponse](ctx, caller,
//	    controlURL, wire.WANIPConnectionService,
//	    wire.ActionGetExternalIPAddress, nil, nil)
//
//	out, err := fut.Await(ctx)
//
// The wait primitive is a closed channel, so any number of observers may
// wait or poll without consuming the completion signal. Completing an
// already-completed future is a no-op; the completion callback never
// fires twice. There is no protocol-level cancellation: abandoning a
// future leaves the in-flight exchange to run to completion.
package rpc
