package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Description document constants.
const (
	// DeviceNamespace is the XML namespace of UPnP device descriptions.
	DeviceNamespace = "urn:schemas-upnp-org:device-1-0"
)

// Discovery errors. All of them are non-fatal: a candidate that fails to
// parse or resolve is logged and dropped, never surfaced to the hosting
// application.
var (
	ErrNoLocation      = errors.New("discovery response has no Location field")
	ErrLocationNotHTTP = errors.New("location is not an http URL")
	ErrInvalidPort     = errors.New("location port out of range")
	ErrNeverParsed     = errors.New("description document never parsed within read budget")
)

// Gateway is a reference to a discovered device. Identity is frozen at
// construction: two observations of the same device compare equal by
// Key() whether or not the control path has been resolved yet.
type Gateway struct {
	// Host is the device's IP address.
	Host string

	// Port is the description service port.
	Port uint16

	// DescriptionPath is the path of the device description document.
	DescriptionPath string

	// controlPath is written exactly once by the resolver and read-only
	// thereafter. It never participates in identity.
	controlMu   sync.RWMutex
	controlPath string

	// lastSeen is owned by discovery; nanoseconds since the epoch.
	lastSeen atomic.Int64
}

// NewGateway creates a gateway reference with lastSeen set to now.
func NewGateway(host string, port uint16, descriptionPath string) *Gateway {
	g := &Gateway{
		Host:            host,
		Port:            port,
		DescriptionPath: descriptionPath,
	}
	g.Touch()
	return g
}

// Key is the gateway's identity: host endpoint plus description path.
// Resolved-later fields are deliberately excluded.
func (g *Gateway) Key() string {
	return g.Endpoint() + g.DescriptionPath
}

// Endpoint returns the host:port the description service listens on.
func (g *Gateway) Endpoint() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(int(g.Port)))
}

// DescriptionURL returns the absolute URL of the description document.
func (g *Gateway) DescriptionURL() string {
	return "http://" + g.Endpoint() + g.DescriptionPath
}

// ControlPath returns the resolved control path, if resolution has
// happened.
func (g *Gateway) ControlPath() (string, bool) {
	g.controlMu.RLock()
	defer g.controlMu.RUnlock()
	return g.controlPath, g.controlPath != ""
}

// ControlURL returns the absolute control endpoint URL, if resolved.
func (g *Gateway) ControlURL() (string, bool) {
	path, ok := g.ControlPath()
	if !ok {
		return "", false
	}
	return "http://" + g.Endpoint() + path, true
}

// Resolved reports whether the control path has been set.
func (g *Gateway) Resolved() bool {
	_, ok := g.ControlPath()
	return ok
}

// setControlPath records the control path. Only the first write takes
// effect; the return value reports whether this call was that write.
func (g *Gateway) setControlPath(path string) bool {
	g.controlMu.Lock()
	defer g.controlMu.Unlock()
	if g.controlPath != "" {
		return false
	}
	g.controlPath = path
	return true
}

// Touch updates the last-observed timestamp.
func (g *Gateway) Touch() {
	g.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns the last-observed instant.
func (g *Gateway) LastSeen() time.Time {
	return time.Unix(0, g.lastSeen.Load())
}

// String identifies the gateway in logs.
func (g *Gateway) String() string {
	return fmt.Sprintf("gateway %s", g.Key())
}
