// Package discovery turns raw gateway discovery records into resolved
// control endpoints.
//
// Discovery itself (the SSDP multicast search) is a collaborator that
// hands this package free-form response text. From there:
//
//	gw, err := discovery.ParseDiscoveryResponse(raw)
//	// gw identifies the device: host, port, description path
//
//	resolver := discovery.NewResolver(discovery.ResolverConfig{
//	    OnResolved: func(gw *discovery.Gateway) { /* gateway is usable */ },
//	})
//	resolver.Resolve(ctx, gw)
//
// Resolution fetches the device description document, tolerating devices
// that omit Content-Length by accumulating the body and re-trying the
// XML parse on a fixed budget, then looks for the WANIPConnection:1
// service. Candidates that fail any step are dropped silently -
// discovery is speculative over many devices, and the hosting
// application only ever sees gateways that resolved.
package discovery
