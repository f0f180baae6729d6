package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/igd-protocol/igd-go/pkg/discovery"
	"github.com/igd-protocol/igd-go/pkg/log"
	"github.com/igd-protocol/igd-go/pkg/rpc"
	"github.com/igd-protocol/igd-go/pkg/wire"
)

// Config carries the session's collaborators. The zero value works: a
// default HTTP caller, no protocol capture, slog's default logger.
type Config struct {
	// Caller performs the SOAP exchanges. If nil, an HTTP caller with
	// rpc.DefaultCallTimeout is used.
	Caller rpc.Caller

	// ProtocolLogger receives a machine-readable trace of all gateway
	// traffic. Nil disables capture.
	ProtocolLogger log.Logger

	// Logger receives operational log output. If nil, slog.Default().
	Logger *slog.Logger
}

// Session drives the WANIPConnection:1 service of one resolved gateway.
// It is safe for concurrent use.
type Session struct {
	gw     *discovery.Gateway
	caller rpc.Caller
	plog   log.Logger
	logger *slog.Logger
}

// New creates a session over gw. The gateway must have been resolved;
// otherwise ErrNotResolved is returned.
func New(gw *discovery.Gateway, cfg Config) (*Session, error) {
	if !gw.Resolved() {
		return nil, ErrNotResolved
	}

	caller := cfg.Caller
	if caller == nil {
		caller = rpc.NewHTTPCaller(rpc.DefaultCallTimeout)
	}
	plog := cfg.ProtocolLogger
	if plog == nil {
		plog = log.NoopLogger{}
	}
	caller = rpc.NewLoggingCaller(caller, plog, gw.Key())

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		gw:     gw,
		caller: caller,
		plog:   plog,
		logger: logger.With("gateway", gw.Key()),
	}, nil
}

// Gateway returns the gateway this session talks to.
func (s *Session) Gateway() *discovery.Gateway {
	return s.gw
}

// invoke runs one action to completion: begin the exchange, await it,
// lift faults into the session's error space.
func invoke[T any](ctx context.Context, s *Session, action string, args []wire.Arg) (*T, error) {
	endpoint, ok := s.gw.ControlURL()
	if !ok {
		return nil, ErrNotResolved
	}

	fut := rpc.Begin[T](ctx, s.caller, endpoint, wire.WANIPConnectionService, action, args, nil)
	out, err := fut.Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	switch {
	case out.Err != nil:
		s.logger.Debug("action failed", "action", action, "err", out.Err)
		return nil, fmt.Errorf("%s: %w", action, out.Err)
	case out.Fault != nil:
		s.logger.Debug("action faulted", "action", action, "fault", out.Fault)
		s.plog.Log(log.Event{
			Timestamp:  time.Now(),
			ExchangeID: fut.ID(),
			Direction:  log.DirectionIn,
			Category:   log.CategoryFault,
			Gateway:    s.gw.Key(),
			Action:     action,
			Fault:      &log.FaultEvent{Code: out.Fault.Code, Description: out.Fault.Description},
		})
		return nil, translateFault(out.Fault)
	}
	return out.Value, nil
}

// ExternalIP asks the gateway for its WAN-side address.
func (s *Session) ExternalIP(ctx context.Context) (string, error) {
	resp, err := invoke[wire.GetExternalIPAddressResponse](ctx, s, wire.ActionGetExternalIPAddress, nil)
	if err != nil {
		return "", err
	}
	return resp.NewExternalIPAddress, nil
}

// AddMapping creates a port mapping on the gateway. A conflicting entry
// surfaces as a *FaultError with code 718.
func (s *Session) AddMapping(ctx context.Context, m Mapping) error {
	if err := validateMapping(m); err != nil {
		return err
	}

	args := []wire.Arg{
		{Name: "NewRemoteHost", Value: m.RemoteHost},
		{Name: "NewExternalPort", Value: strconv.Itoa(m.ExternalPort)},
		{Name: "NewProtocol", Value: string(m.Protocol)},
		{Name: "NewInternalPort", Value: strconv.Itoa(int(m.InternalPort))},
		{Name: "NewInternalClient", Value: m.InternalHost},
		{Name: "NewEnabled", Value: "1"},
		{Name: "NewPortMappingDescription", Value: m.Description},
		{Name: "NewLeaseDuration", Value: strconv.FormatUint(uint64(m.leaseSeconds()), 10)},
	}
	if _, err := invoke[wire.AddPortMappingResponse](ctx, s, wire.ActionAddPortMapping, args); err != nil {
		return err
	}
	s.logger.Info("mapping added", "mapping", m.String())
	return nil
}

// DeleteMapping removes the mapping for externalPort and proto. Deleting
// a mapping the gateway does not have surfaces as a *FaultError with
// code 714.
func (s *Session) DeleteMapping(ctx context.Context, externalPort int, proto Protocol) error {
	args := []wire.Arg{
		{Name: "NewRemoteHost", Value: ""},
		{Name: "NewExternalPort", Value: strconv.Itoa(externalPort)},
		{Name: "NewProtocol", Value: string(proto)},
	}
	if _, err := invoke[wire.DeletePortMappingResponse](ctx, s, wire.ActionDeletePortMapping, args); err != nil {
		return err
	}
	s.logger.Info("mapping deleted", "port", externalPort, "protocol", proto)
	return nil
}

// GetMapping looks up the mapping for externalPort and proto. When the
// gateway has no such entry, GetMapping returns NoMapping and a nil
// error; check Found on the result. The returned mapping's external
// port and protocol are the ones asked about, regardless of what the
// gateway echoes back.
func (s *Session) GetMapping(ctx context.Context, externalPort int, proto Protocol) (Mapping, error) {
	args := []wire.Arg{
		{Name: "NewRemoteHost", Value: ""},
		{Name: "NewExternalPort", Value: strconv.Itoa(externalPort)},
		{Name: "NewProtocol", Value: string(proto)},
	}
	resp, err := invoke[wire.GetSpecificPortMappingEntryResponse](ctx, s, wire.ActionGetSpecificPortMappingEntry, args)
	if err != nil {
		if faultCode(err) == wire.FaultNoSuchEntryInArray {
			return NoMapping, nil
		}
		return NoMapping, err
	}

	return Mapping{
		ExternalPort: externalPort,
		Protocol:     proto,
		InternalPort: resp.NewInternalPort,
		InternalHost: resp.NewInternalClient,
		Enabled:      resp.NewEnabled == "1",
		Description:  resp.NewPortMappingDescription,
		Lease:        time.Duration(resp.NewLeaseDuration) * time.Second,
	}, nil
}

// Mappings enumerates the gateway's whole mapping table, one entry per
// exchange, in index order. Each exchange completes before the next one
// is issued. The gateway ends the enumeration with fault 713; any other
// failure returns the entries collected so far along with the error.
func (s *Session) Mappings(ctx context.Context) ([]Mapping, error) {
	var mappings []Mapping
	for index := 0; ; index++ {
		args := []wire.Arg{
			{Name: "NewPortMappingIndex", Value: strconv.Itoa(index)},
		}
		resp, err := invoke[wire.GetGenericPortMappingEntryResponse](ctx, s, wire.ActionGetGenericPortMappingEntry, args)
		if err != nil {
			if faultCode(err) == wire.FaultSpecifiedArrayIndexInvalid {
				return mappings, nil
			}
			return mappings, err
		}

		mappings = append(mappings, Mapping{
			RemoteHost:   resp.NewRemoteHost,
			ExternalPort: int(resp.NewExternalPort),
			Protocol:     Protocol(resp.NewProtocol),
			InternalPort: resp.NewInternalPort,
			InternalHost: resp.NewInternalClient,
			Enabled:      resp.NewEnabled == "1",
			Description:  resp.NewPortMappingDescription,
			Lease:        time.Duration(resp.NewLeaseDuration) * time.Second,
		})
	}
}

func validateMapping(m Mapping) error {
	if m.ExternalPort < 1 || m.ExternalPort > 65535 {
		return fmt.Errorf("%w: external port %d out of range", ErrInvalidMapping, m.ExternalPort)
	}
	if !m.Protocol.Valid() {
		return fmt.Errorf("%w: protocol %q", ErrInvalidMapping, m.Protocol)
	}
	if m.InternalPort == 0 {
		return fmt.Errorf("%w: internal port required", ErrInvalidMapping)
	}
	if m.InternalHost == "" {
		return fmt.Errorf("%w: internal host required", ErrInvalidMapping)
	}
	if m.Lease < 0 {
		return fmt.Errorf("%w: negative lease", ErrInvalidMapping)
	}
	return nil
}
