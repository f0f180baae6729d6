// Package session drives the WANIPConnection:1 service of a resolved
// gateway: reading the external address, creating and removing port
// mappings, and enumerating the mapping table.
//
// A Session is created over a gateway whose control endpoint has been
// resolved (see pkg/discovery):
//
//	sess, err := session.New(gw, session.Config{})
//	if err != nil {
//	    // gateway not resolved
//	}
//
//	ip, err := sess.ExternalIP(ctx)
//
//	err = sess.AddMapping(ctx, session.Mapping{
//	    ExternalPort: 8080,
//	    Protocol:     session.ProtocolTCP,
//	    InternalPort: 8080,
//	    InternalHost: "192.168.1.42",
//	    Description:  "my service",
//	})
//
// Lookups distinguish "no such mapping" from failure: GetMapping returns
// the NoMapping sentinel with a nil error when the gateway reports no
// entry for the port and protocol asked about. Gateway faults surface as
// *FaultError carrying the UPnP error code.
//
// Mappings enumerates the gateway's table one entry at a time, strictly
// in index order; the gateway signals the end of the table with fault
// code 713.
package session
