// Package client ties discovery, resolution and the mapping session
// together into one convenient gateway client.
//
// A client is created from a description document URL, or from the raw
// text of an SSDP search response when a discovery transport is layered
// on top:
//
//	c, err := client.Load(ctx, "http://192.168.1.1:2869/desc.xml", client.Config{})
//	if err != nil {
//	    // no usable gateway there
//	}
//
//	ip, err := c.ExternalIP(ctx)
//	err = c.Forward(ctx, 8080, "my service")
//	err = c.Clear(ctx, 8080)
//
// Forward maps both TCP and UDP. When a state path is configured the
// client records every mapping it creates, so a restarted client can
// find and remove its own entries.
package client
