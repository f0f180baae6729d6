package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/igd-protocol/igd-go/pkg/discovery"
	"github.com/igd-protocol/igd-go/pkg/lease"
	"github.com/igd-protocol/igd-go/pkg/log"
	"github.com/igd-protocol/igd-go/pkg/persistence"
	"github.com/igd-protocol/igd-go/pkg/rpc"
	"github.com/igd-protocol/igd-go/pkg/session"
	"github.com/igd-protocol/igd-go/pkg/wire"
)

var (
	// ErrNoGateway is returned when no usable gateway could be resolved:
	// the discovery text was unusable, the description document never
	// arrived, or it names no WANIPConnection service.
	ErrNoGateway = errors.New("client: no usable gateway")

	// ErrNoLocalAddress is returned when the LAN-side address could not
	// be determined and none was configured.
	ErrNoLocalAddress = errors.New("client: cannot determine local address")
)

// Config carries the client's collaborators and options. The zero value
// works.
type Config struct {
	// HTTPClient fetches description documents. If nil, a default client
	// is used.
	HTTPClient *http.Client

	// Caller performs the SOAP exchanges. If nil, an HTTP caller with
	// rpc.DefaultCallTimeout is used.
	Caller rpc.Caller

	// ProtocolLogger receives a machine-readable trace of all gateway
	// traffic. Nil disables capture.
	ProtocolLogger log.Logger

	// Logger receives operational log output. If nil, slog.Default().
	Logger *slog.Logger

	// InternalHost is the LAN-side address Forward points mappings at.
	// Empty means autodetect.
	InternalHost string

	// StatePath persists the client's state (known gateways, owned
	// mappings) as JSON. Empty disables persistence.
	StatePath string

	// OnLeaseExpired is called when the lease of a mapping created by
	// this client runs out on the gateway, e.g. to renew it. The owned
	// mapping record is dropped either way.
	OnLeaseExpired func(externalPort int, protocol string)
}

// Client is a ready-to-use handle on one resolved gateway.
type Client struct {
	gw           *discovery.Gateway
	sess         *session.Session
	store        *persistence.StateStore
	plog         log.Logger
	logger       *slog.Logger
	internalHost string
	leases       *lease.Tracker
}

// Load creates a client for the gateway whose description document lives
// at location. It fetches and parses the document and fails with
// ErrNoGateway when no WANIPConnection service is found there.
func Load(ctx context.Context, location string, cfg Config) (*Client, error) {
	gw, err := discovery.ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	return fromGateway(ctx, gw, cfg)
}

// FromDiscovery creates a client from the raw text of an SSDP search
// response. Unusable discovery text is treated the same as an absent
// gateway: ErrNoGateway.
func FromDiscovery(ctx context.Context, raw string, cfg Config) (*Client, error) {
	gw, err := discovery.ParseDiscoveryResponse(raw)
	if err != nil {
		return nil, ErrNoGateway
	}
	return fromGateway(ctx, gw, cfg)
}

func fromGateway(ctx context.Context, gw *discovery.Gateway, cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	plog := cfg.ProtocolLogger
	if plog == nil {
		plog = log.NoopLogger{}
	}

	resolver := discovery.NewResolver(discovery.ResolverConfig{
		HTTPClient: cfg.HTTPClient,
		Logger:     logger,
	})
	if !resolver.Resolve(ctx, gw) {
		return nil, ErrNoGateway
	}

	controlURL, _ := gw.ControlURL()
	plog.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Category:  log.CategoryDiscovery,
		Gateway:   gw.Key(),
		Discovery: &log.DiscoveryEvent{Location: gw.DescriptionURL(), ControlURL: controlURL},
	})

	sess, err := session.New(gw, session.Config{
		Caller:         cfg.Caller,
		ProtocolLogger: cfg.ProtocolLogger,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		gw:           gw,
		sess:         sess,
		plog:         plog,
		logger:       logger.With("gateway", gw.Key()),
		internalHost: cfg.InternalHost,
		leases:       lease.NewTracker(),
	}
	onExpired := cfg.OnLeaseExpired
	c.leases.OnExpiry(func(port int, proto string) {
		c.logger.Info("mapping lease expired", "port", port, "protocol", proto)
		c.updateState(func(g *persistence.KnownGateway) {
			g.RemoveMapping(port, proto)
		})
		if onExpired != nil {
			onExpired(port, proto)
		}
	})
	if cfg.StatePath != "" {
		c.store = persistence.NewStateStore(cfg.StatePath)
		c.updateState(func(g *persistence.KnownGateway) {
			g.ControlURL = controlURL
			g.LastSeenAt = time.Now()
		})
	}
	return c, nil
}

// Location returns the gateway's description document URL.
func (c *Client) Location() string {
	return c.gw.DescriptionURL()
}

// Gateway returns the resolved gateway.
func (c *Client) Gateway() *discovery.Gateway {
	return c.gw
}

// Session returns the underlying mapping session for operations the
// convenience surface does not cover.
func (c *Client) Session() *session.Session {
	return c.sess
}

// ExternalIP asks the gateway for its WAN-side address.
func (c *Client) ExternalIP(ctx context.Context) (string, error) {
	ip, err := c.sess.ExternalIP(ctx)
	if err != nil {
		return "", err
	}
	c.updateState(func(g *persistence.KnownGateway) {
		g.ExternalIP = ip
		g.LastSeenAt = time.Now()
	})
	return ip, nil
}

// Forward maps externalPort on the gateway, for both TCP and UDP, to the
// same port on this host. The mappings are permanent until removed.
func (c *Client) Forward(ctx context.Context, externalPort int, description string) error {
	return c.ForwardFor(ctx, externalPort, description, 0)
}

// ForwardFor is Forward with a lease: the gateway drops the mappings
// after leaseDuration. The client tracks the lease locally and reports
// expiry through Config.OnLeaseExpired. Zero means permanent.
func (c *Client) ForwardFor(ctx context.Context, externalPort int, description string, leaseDuration time.Duration) error {
	host := c.internalHost
	if host == "" {
		var err error
		host, err = localAddress()
		if err != nil {
			return err
		}
	}

	for _, proto := range []session.Protocol{session.ProtocolTCP, session.ProtocolUDP} {
		m := session.Mapping{
			ExternalPort: externalPort,
			Protocol:     proto,
			InternalPort: uint16(externalPort),
			InternalHost: host,
			Description:  description,
			Lease:        leaseDuration,
		}
		if err := c.sess.AddMapping(ctx, m); err != nil {
			return err
		}
		c.updateState(func(g *persistence.KnownGateway) {
			g.AddMapping(persistence.OwnedMapping{
				ExternalPort: externalPort,
				Protocol:     string(proto),
				InternalPort: uint16(externalPort),
				InternalHost: host,
				Description:  description,
				CreatedAt:    time.Now(),
			})
		})
		if leaseDuration > 0 {
			if err := c.leases.Track(externalPort, string(proto), leaseDuration); err != nil {
				c.logger.Warn("lease not tracked", "port", externalPort, "protocol", proto, "err", err)
			}
		}
	}
	return nil
}

// Leases returns the tracker mirroring this client's mapping leases.
func (c *Client) Leases() *lease.Tracker {
	return c.leases
}

// Clear removes the TCP and UDP mappings for externalPort. Mappings the
// gateway no longer has are not an error.
func (c *Client) Clear(ctx context.Context, externalPort int) error {
	for _, proto := range []session.Protocol{session.ProtocolTCP, session.ProtocolUDP} {
		err := c.sess.DeleteMapping(ctx, externalPort, proto)
		if err != nil && !isNoSuchEntry(err) {
			return err
		}
		c.updateState(func(g *persistence.KnownGateway) {
			g.RemoveMapping(externalPort, string(proto))
		})
		// Permanent mappings have no timer; not found is fine.
		_ = c.leases.Cancel(externalPort, string(proto))
	}
	return nil
}

// Mapping looks up one mapping; see session.Session.GetMapping.
func (c *Client) Mapping(ctx context.Context, externalPort int, proto session.Protocol) (session.Mapping, error) {
	return c.sess.GetMapping(ctx, externalPort, proto)
}

// Mappings enumerates the gateway's mapping table.
func (c *Client) Mappings(ctx context.Context) ([]session.Mapping, error) {
	return c.sess.Mappings(ctx)
}

// OwnedMappings returns the mappings recorded as created by this client,
// from persisted state. Without a state path it returns nothing.
func (c *Client) OwnedMappings() []persistence.OwnedMapping {
	if c.store == nil {
		return nil
	}
	state, err := c.store.Load()
	if err != nil || state == nil {
		return nil
	}
	if g := state.Find(c.Location()); g != nil {
		return g.Mappings
	}
	return nil
}

// updateState applies fn to this gateway's persisted record. State
// failures are logged, never surfaced; persistence is best-effort.
func (c *Client) updateState(fn func(*persistence.KnownGateway)) {
	if c.store == nil {
		return
	}
	state, err := c.store.Load()
	if err != nil {
		c.logger.Warn("state load failed", "err", err)
		return
	}
	if state == nil {
		state = &persistence.ClientState{}
	}

	g := state.Find(c.Location())
	if g == nil {
		state.Upsert(persistence.KnownGateway{Location: c.Location()})
		g = state.Find(c.Location())
	}
	fn(g)

	if err := c.store.Save(state); err != nil {
		c.logger.Warn("state save failed", "err", err)
	}
}

func isNoSuchEntry(err error) bool {
	var fe *session.FaultError
	return errors.As(err, &fe) && fe.Code == wire.FaultNoSuchEntryInArray
}

// localAddress finds the LAN-side address of this host by asking the
// kernel which source address a WAN-bound packet would use. Nothing is
// actually sent.
func localAddress() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLocalAddress, err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.IsUnspecified() {
		return "", ErrNoLocalAddress
	}
	return addr.IP.String(), nil
}
