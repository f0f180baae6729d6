package discovery

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"time"

	"github.com/igd-protocol/igd-go/pkg/version"
	"github.com/igd-protocol/igd-go/pkg/wire"
)

// DefaultFetchTimeout bounds the description document request.
const DefaultFetchTimeout = 10 * time.Second

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// HTTPClient fetches description documents. If nil, a client with
	// DefaultFetchTimeout is used.
	HTTPClient *http.Client

	// OnResolved is invoked exactly once per gateway whose description
	// names a WANIPConnection:1 service, after the control path is set.
	OnResolved func(*Gateway)

	// Read tunes the accumulate-parse loop. Zero value: defaults.
	Read ReadConfig

	// Logger receives debug records for dropped candidates. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Resolver fetches device descriptions and resolves control endpoints.
type Resolver struct {
	client     *http.Client
	onResolved func(*Gateway)
	read       ReadConfig
	logger     *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:     client,
		onResolved: cfg.OnResolved,
		read:       cfg.Read,
		logger:     logger,
	}
}

// Resolve fetches the gateway's description document and, if it names a
// WANIPConnection:1 service, records the control path and fires the
// on-resolved notification. Every failure mode - transport error, a body
// that never parses, a document without the service - abandons the
// candidate silently; resolution is speculative and the caller only ever
// sees gateways that resolved.
//
// The return value reports whether the gateway is resolved; duplicate
// Resolve calls for an already-resolved gateway do not re-notify.
func (r *Resolver) Resolve(ctx context.Context, gw *Gateway) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gw.DescriptionURL(), nil)
	if err != nil {
		r.logger.Debug("description request rejected", "gateway", gw.Key(), "err", err)
		return false
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("description fetch failed", "gateway", gw.Key(), "err", err)
		return false
	}
	defer resp.Body.Close()

	var doc deviceDescription
	_, err = ReadUntilParsed(resp.Body, func(buf []byte) bool {
		doc = deviceDescription{}
		return xml.Unmarshal(buf, &doc) == nil
	}, r.read)
	if err != nil {
		r.logger.Debug("description never parsed", "gateway", gw.Key(), "err", err)
		return false
	}

	controlPath := doc.Device.findService(wire.WANIPConnectionService)
	if controlPath == "" {
		// Not a router-capable device; never surfaced.
		r.logger.Debug("no WANIPConnection service", "gateway", gw.Key())
		return false
	}

	if gw.setControlPath(controlPath) {
		r.logger.Debug("gateway resolved", "gateway", gw.Key(), "control", controlPath)
		if r.onResolved != nil {
			r.onResolved(gw)
		}
	}
	return true
}

// deviceDescription mirrors the parts of the description document the
// resolver needs: the service list, including nested embedded devices
// (IGD descriptions nest WANIPConnection a few devices deep).
type deviceDescription struct {
	XMLName xml.Name    `xml:"urn:schemas-upnp-org:device-1-0 root"`
	Device  deviceEntry `xml:"device"`
}

type deviceEntry struct {
	DeviceType string         `xml:"deviceType"`
	Services   []serviceEntry `xml:"serviceList>service"`
	Devices    []deviceEntry  `xml:"deviceList>device"`
}

type serviceEntry struct {
	ServiceType string `xml:"serviceType"`
	ControlURL  string `xml:"controlURL"`
}

// findService walks the device tree for a service of the given type and
// returns its control URL, or "" if absent.
func (d deviceEntry) findService(serviceType string) string {
	for _, svc := range d.Services {
		if svc.ServiceType == serviceType {
			return svc.ControlURL
		}
	}
	for _, sub := range d.Devices {
		if path := sub.findService(serviceType); path != "" {
			return path
		}
	}
	return ""
}
