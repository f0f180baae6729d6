package wire

import "encoding/xml"

// WANIPConnectionService is the URN of the service this package drives.
const WANIPConnectionService = "urn:schemas-upnp-org:service:WANIPConnection:1"

// ControlNamespace is the namespace of the UPnPError fault detail.
const ControlNamespace = "urn:schemas-upnp-org:control-1-0"

// Action names defined by WANIPConnection:1.
const (
	ActionGetExternalIPAddress        = "GetExternalIPAddress"
	ActionAddPortMapping              = "AddPortMapping"
	ActionDeletePortMapping           = "DeletePortMapping"
	ActionGetSpecificPortMappingEntry = "GetSpecificPortMappingEntry"
	ActionGetGenericPortMappingEntry  = "GetGenericPortMappingEntry"
)

// Arg is one named argument of an action request. Argument order is
// significant on the wire; args are emitted in slice order.
type Arg struct {
	Name  string
	Value string
}

// GetExternalIPAddressResponse is the success payload of GetExternalIPAddress.
type GetExternalIPAddressResponse struct {
	XMLName xml.Name `xml:"GetExternalIPAddressResponse"`

	// NewExternalIPAddress is the router's WAN-side address.
	NewExternalIPAddress string `xml:"NewExternalIPAddress"`
}

// AddPortMappingResponse is the (empty) success payload of AddPortMapping.
type AddPortMappingResponse struct {
	XMLName xml.Name `xml:"AddPortMappingResponse"`
}

// DeletePortMappingResponse is the (empty) success payload of DeletePortMapping.
type DeletePortMappingResponse struct {
	XMLName xml.Name `xml:"DeletePortMappingResponse"`
}

// GetSpecificPortMappingEntryResponse is the success payload of
// GetSpecificPortMappingEntry. The external port and protocol of the
// entry are not part of the response; they are arguments of the request.
type GetSpecificPortMappingEntryResponse struct {
	XMLName xml.Name `xml:"GetSpecificPortMappingEntryResponse"`

	NewInternalPort           uint16 `xml:"NewInternalPort"`
	NewInternalClient         string `xml:"NewInternalClient"`
	NewEnabled                string `xml:"NewEnabled"`
	NewPortMappingDescription string `xml:"NewPortMappingDescription"`
	NewLeaseDuration          uint32 `xml:"NewLeaseDuration"`
}

// GetGenericPortMappingEntryResponse is the success payload of
// GetGenericPortMappingEntry (enumeration by index).
type GetGenericPortMappingEntryResponse struct {
	XMLName xml.Name `xml:"GetGenericPortMappingEntryResponse"`

	NewRemoteHost             string `xml:"NewRemoteHost"`
	NewExternalPort           uint16 `xml:"NewExternalPort"`
	NewProtocol               string `xml:"NewProtocol"`
	NewInternalPort           uint16 `xml:"NewInternalPort"`
	NewInternalClient         string `xml:"NewInternalClient"`
	NewEnabled                string `xml:"NewEnabled"`
	NewPortMappingDescription string `xml:"NewPortMappingDescription"`
	NewLeaseDuration          uint32 `xml:"NewLeaseDuration"`
}
