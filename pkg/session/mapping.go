package session

import (
	"fmt"
	"time"
)

// Protocol is a transport protocol a port mapping applies to.
type Protocol string

const (
	// ProtocolTCP maps a TCP port.
	ProtocolTCP Protocol = "TCP"
	// ProtocolUDP maps a UDP port.
	ProtocolUDP Protocol = "UDP"
)

// Valid reports whether p is a protocol a gateway accepts.
func (p Protocol) Valid() bool {
	return p == ProtocolTCP || p == ProtocolUDP
}

// Mapping is one port mapping entry: traffic arriving at the gateway's
// ExternalPort over Protocol is forwarded to InternalHost:InternalPort.
type Mapping struct {
	// RemoteHost restricts the mapping to one WAN peer. Empty means any
	// peer, which is what home gateways support in practice.
	RemoteHost string

	// ExternalPort is the WAN-side port. Negative marks the NoMapping
	// sentinel.
	ExternalPort int

	// Protocol is TCP or UDP.
	Protocol Protocol

	// InternalPort is the LAN-side port traffic is forwarded to.
	InternalPort uint16

	// InternalHost is the LAN-side address traffic is forwarded to.
	InternalHost string

	// Enabled reports whether the gateway has the mapping active.
	Enabled bool

	// Description is the free-text label stored with the mapping.
	Description string

	// Lease is how long the mapping lives. Zero means permanent.
	// Gateways store whole seconds; fractions are truncated.
	Lease time.Duration
}

// NoMapping is the result of a lookup that found nothing. It is
// distinguishable from every real mapping by its negative external port.
var NoMapping = Mapping{ExternalPort: -1}

// Found reports whether m describes a real mapping table entry.
func (m Mapping) Found() bool {
	return m.ExternalPort >= 0
}

// String renders the mapping for log output.
func (m Mapping) String() string {
	if !m.Found() {
		return "no mapping"
	}
	return fmt.Sprintf("%s %d -> %s:%d (%s)", m.Protocol, m.ExternalPort, m.InternalHost, m.InternalPort, m.Description)
}

// leaseSeconds converts the lease to the whole seconds sent on the wire.
func (m Mapping) leaseSeconds() uint32 {
	return uint32(m.Lease / time.Second)
}
