package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseDiscoveryResponse extracts a gateway reference from raw discovery
// response text: header-like lines, one of which carries the Location
// field (matched case-insensitively) with an absolute http URL to the
// device description document.
//
// Malformed records are expected - discovery is speculative - so every
// failure is a typed, non-fatal error the caller logs and drops.
func ParseDiscoveryResponse(raw string) (*Gateway, error) {
	location := ""
	for _, line := range strings.FieldsFunc(raw, isLineBreak) {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "location") {
			location = strings.TrimSpace(value)
			break
		}
	}
	if location == "" {
		return nil, ErrNoLocation
	}
	return ParseLocation(location)
}

// ParseLocation parses an absolute http URL into a gateway reference:
// the host:port portion becomes the host endpoint, the remainder the
// description path.
func ParseLocation(location string) (*Gateway, error) {
	const scheme = "http://"
	if !strings.HasPrefix(strings.ToLower(location), scheme) {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotHTTP, location)
	}
	rest := location[len(scheme):]

	hostport := rest
	path := "/"
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		hostport = rest[:slash]
		path = rest[slash:]
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// No explicit port: the description service defaults to 80.
		return NewGateway(hostport, 80, path), nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}
	return NewGateway(host, uint16(port), path), nil
}

// isLineBreak splits discovery text on CR, LF, or CRLF.
func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}
