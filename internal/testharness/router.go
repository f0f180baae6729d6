// Package testharness provides a scriptable fake IGD router for tests.
//
// The router serves a UPnP device description document and a SOAP
// control endpoint backed by an in-memory mapping table, emitting the
// same fault codes a real WANIPConnection:1 gateway would (713 past the
// end of the table, 714 on a missed lookup, 718 on a conflict).
package testharness

import (
	"encoding/xml"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// RouterConfig shapes the fake router's behavior.
type RouterConfig struct {
	// DescriptionPath is the description document path (default /desc.xml).
	DescriptionPath string

	// ControlPath is the control endpoint path (default /upnp/control/WANIPConn1).
	ControlPath string

	// ExternalIP is the WAN address reported by GetExternalIPAddress
	// (default 203.0.113.17).
	ExternalIP string

	// OmitWANIPService serves a description document without a
	// WANIPConnection:1 service.
	OmitWANIPService bool

	// TrickleChunkSize, when >0, serves the description document in
	// flushed chunks of this size (forcing chunked transfer, i.e. no
	// Content-Length), pausing TrickleDelay between chunks.
	TrickleChunkSize int
	TrickleDelay     time.Duration

	// MisEchoSpecific adds bogus NewExternalPort/NewProtocol elements to
	// GetSpecificPortMappingEntry responses, imitating routers that echo
	// the lookup key incorrectly.
	MisEchoSpecific bool
}

// Entry is one row of the router's mapping table.
type Entry struct {
	RemoteHost     string
	ExternalPort   uint16
	Protocol       string
	InternalPort   uint16
	InternalClient string
	Description    string
	Lease          uint32
}

// Router is a fake IGD gateway over httptest.
type Router struct {
	cfg RouterConfig
	srv *httptest.Server

	mu        sync.Mutex
	entries   []Entry
	failNext  map[string]int // action -> fault code for the next call
	callCount map[string]int
}

// NewRouter starts a fake router and registers shutdown with t.Cleanup.
func NewRouter(t *testing.T, cfg RouterConfig) *Router {
	t.Helper()
	if cfg.DescriptionPath == "" {
		cfg.DescriptionPath = "/desc.xml"
	}
	if cfg.ControlPath == "" {
		cfg.ControlPath = "/upnp/control/WANIPConn1"
	}
	if cfg.ExternalIP == "" {
		cfg.ExternalIP = "203.0.113.17"
	}

	r := &Router{
		cfg:       cfg,
		failNext:  make(map[string]int),
		callCount: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+cfg.DescriptionPath, r.serveDescription)
	mux.HandleFunc("POST "+cfg.ControlPath, r.serveControl)
	r.srv = httptest.NewServer(mux)
	t.Cleanup(r.srv.Close)
	return r
}

// Location returns the absolute description document URL.
func (r *Router) Location() string {
	return r.srv.URL + r.cfg.DescriptionPath
}

// ControlPath returns the control endpoint path.
func (r *Router) ControlPath() string {
	return r.cfg.ControlPath
}

// HostPort returns the router's host and port.
func (r *Router) HostPort() (string, uint16) {
	u := strings.TrimPrefix(r.srv.URL, "http://")
	host, portStr, _ := net.SplitHostPort(u)
	port, _ := strconv.ParseUint(portStr, 10, 16)
	return host, uint16(port)
}

// DiscoveryResponse returns an SSDP-style search response announcing
// this router, as the discovery transport would deliver it.
func (r *Router) DiscoveryResponse() string {
	return "HTTP/1.1 200 OK\r\n" +
		"CACHE-CONTROL: max-age=120\r\n" +
		"ST: urn:schemas-upnp-org:device:InternetGatewayDevice:1\r\n" +
		"USN: uuid:igd-test-router\r\n" +
		"EXT:\r\n" +
		"SERVER: testharness/1.0 UPnP/1.0\r\n" +
		"LOCATION: " + r.Location() + "\r\n" +
		"\r\n"
}

// Add seeds the mapping table.
func (r *Router) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the mapping table.
func (r *Router) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// FailNext makes the next invocation of action answer with the given
// fault code instead of its normal behavior.
func (r *Router) FailNext(action string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext[action] = code
}

// Calls returns how many times action has been invoked.
func (r *Router) Calls(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callCount[action]
}

const (
	deviceNS  = "urn:schemas-upnp-org:device-1-0"
	wanipType = "urn:schemas-upnp-org:service:WANIPConnection:1"
)

func (r *Router) serveDescription(w http.ResponseWriter, req *http.Request) {
	service := fmt.Sprintf(`<service>
        <serviceType>%s</serviceType>
        <serviceId>urn:upnp-org:serviceId:WANIPConn1</serviceId>
        <controlURL>%s</controlURL>
        <eventSubURL>%s</eventSubURL>
        <SCPDURL>/WANIPCn.xml</SCPDURL>
      </service>`, wanipType, r.cfg.ControlPath, r.cfg.ControlPath)
	if r.cfg.OmitWANIPService {
		service = ""
	}

	// WANIPConnection sits two embedded devices deep, as on real gateways.
	doc := fmt.Sprintf(`<?xml version="1.0"?>
<root xmlns=%q>
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <device>
    <deviceType>urn:schemas-upnp-org:device:InternetGatewayDevice:1</deviceType>
    <friendlyName>Test Router</friendlyName>
    <deviceList><device>
      <deviceType>urn:schemas-upnp-org:device:WANDevice:1</deviceType>
      <serviceList><service>
        <serviceType>urn:schemas-upnp-org:service:WANCommonInterfaceConfig:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:WANCommonIFC1</serviceId>
        <controlURL>/upnp/control/WANCommonIFC1</controlURL>
        <eventSubURL>/upnp/control/WANCommonIFC1</eventSubURL>
        <SCPDURL>/WANCfg.xml</SCPDURL>
      </service></serviceList>
      <deviceList><device>
        <deviceType>urn:schemas-upnp-org:device:WANConnectionDevice:1</deviceType>
        <serviceList>%s</serviceList>
      </device></deviceList>
    </device></deviceList>
  </device>
</root>`, deviceNS, service)

	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	if r.cfg.TrickleChunkSize > 0 {
		flusher := w.(http.Flusher)
		for off := 0; off < len(doc); off += r.cfg.TrickleChunkSize {
			end := off + r.cfg.TrickleChunkSize
			if end > len(doc) {
				end = len(doc)
			}
			fmt.Fprint(w, doc[off:end])
			flusher.Flush()
			time.Sleep(r.cfg.TrickleDelay)
		}
		return
	}
	fmt.Fprint(w, doc)
}

// soapRequest peels the envelope off an incoming control request.
type soapRequest struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

func (r *Router) serveControl(w http.ResponseWriter, req *http.Request) {
	action := parseSOAPAction(req.Header.Get("SOAPACTION"))

	var env soapRequest
	if err := xml.NewDecoder(req.Body).Decode(&env); err != nil {
		writeFault(w, 402, "Invalid Args")
		return
	}

	r.mu.Lock()
	r.callCount[action]++
	code, scripted := r.failNext[action]
	if scripted {
		delete(r.failNext, action)
	}
	r.mu.Unlock()
	if scripted {
		writeFault(w, code, "scripted fault")
		return
	}

	switch action {
	case "GetExternalIPAddress":
		writeResponse(w, action, "<NewExternalIPAddress>"+r.cfg.ExternalIP+"</NewExternalIPAddress>")

	case "AddPortMapping":
		var args struct {
			NewRemoteHost             string `xml:"NewRemoteHost"`
			NewExternalPort           uint16 `xml:"NewExternalPort"`
			NewProtocol               string `xml:"NewProtocol"`
			NewInternalPort           uint16 `xml:"NewInternalPort"`
			NewInternalClient         string `xml:"NewInternalClient"`
			NewPortMappingDescription string `xml:"NewPortMappingDescription"`
			NewLeaseDuration          uint32 `xml:"NewLeaseDuration"`
		}
		if err := xml.Unmarshal(env.Body.Inner, &args); err != nil {
			writeFault(w, 402, "Invalid Args")
			return
		}
		r.mu.Lock()
		for _, e := range r.entries {
			if e.ExternalPort == args.NewExternalPort && e.Protocol == args.NewProtocol {
				r.mu.Unlock()
				writeFault(w, 718, "ConflictInMappingEntry")
				return
			}
		}
		r.entries = append(r.entries, Entry{
			RemoteHost:     args.NewRemoteHost,
			ExternalPort:   args.NewExternalPort,
			Protocol:       args.NewProtocol,
			InternalPort:   args.NewInternalPort,
			InternalClient: args.NewInternalClient,
			Description:    args.NewPortMappingDescription,
			Lease:          args.NewLeaseDuration,
		})
		r.mu.Unlock()
		writeResponse(w, action, "")

	case "DeletePortMapping":
		var args struct {
			NewExternalPort uint16 `xml:"NewExternalPort"`
			NewProtocol     string `xml:"NewProtocol"`
		}
		if err := xml.Unmarshal(env.Body.Inner, &args); err != nil {
			writeFault(w, 402, "Invalid Args")
			return
		}
		r.mu.Lock()
		for i, e := range r.entries {
			if e.ExternalPort == args.NewExternalPort && e.Protocol == args.NewProtocol {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				r.mu.Unlock()
				writeResponse(w, action, "")
				return
			}
		}
		r.mu.Unlock()
		writeFault(w, 714, "NoSuchEntryInArray")

	case "GetSpecificPortMappingEntry":
		var args struct {
			NewExternalPort uint16 `xml:"NewExternalPort"`
			NewProtocol     string `xml:"NewProtocol"`
		}
		if err := xml.Unmarshal(env.Body.Inner, &args); err != nil {
			writeFault(w, 402, "Invalid Args")
			return
		}
		r.mu.Lock()
		var found *Entry
		for i := range r.entries {
			if r.entries[i].ExternalPort == args.NewExternalPort && r.entries[i].Protocol == args.NewProtocol {
				found = &r.entries[i]
				break
			}
		}
		r.mu.Unlock()
		if found == nil {
			writeFault(w, 714, "NoSuchEntryInArray")
			return
		}
		body := fmt.Sprintf(`<NewInternalPort>%d</NewInternalPort>
<NewInternalClient>%s</NewInternalClient>
<NewEnabled>1</NewEnabled>
<NewPortMappingDescription>%s</NewPortMappingDescription>
<NewLeaseDuration>%d</NewLeaseDuration>`,
			found.InternalPort, found.InternalClient, found.Description, found.Lease)
		if r.cfg.MisEchoSpecific {
			// Echo a wrong lookup key, as misbehaving routers do.
			body = fmt.Sprintf("<NewExternalPort>%d</NewExternalPort><NewProtocol>%s</NewProtocol>",
				found.ExternalPort+1000, flipProtocol(found.Protocol)) + body
		}
		writeResponse(w, action, body)

	case "GetGenericPortMappingEntry":
		var args struct {
			NewPortMappingIndex int `xml:"NewPortMappingIndex"`
		}
		if err := xml.Unmarshal(env.Body.Inner, &args); err != nil {
			writeFault(w, 402, "Invalid Args")
			return
		}
		r.mu.Lock()
		if args.NewPortMappingIndex < 0 || args.NewPortMappingIndex >= len(r.entries) {
			r.mu.Unlock()
			writeFault(w, 713, "SpecifiedArrayIndexInvalid")
			return
		}
		e := r.entries[args.NewPortMappingIndex]
		r.mu.Unlock()
		writeResponse(w, action, fmt.Sprintf(`<NewRemoteHost>%s</NewRemoteHost>
<NewExternalPort>%d</NewExternalPort>
<NewProtocol>%s</NewProtocol>
<NewInternalPort>%d</NewInternalPort>
<NewInternalClient>%s</NewInternalClient>
<NewEnabled>1</NewEnabled>
<NewPortMappingDescription>%s</NewPortMappingDescription>
<NewLeaseDuration>%d</NewLeaseDuration>`,
			e.RemoteHost, e.ExternalPort, e.Protocol, e.InternalPort, e.InternalClient, e.Description, e.Lease))

	default:
		writeFault(w, 401, "Invalid Action")
	}
}

// parseSOAPAction extracts the action name from a quoted
// "urn:...#Action" header value.
func parseSOAPAction(header string) string {
	header = strings.Trim(header, `"`)
	if i := strings.IndexByte(header, '#'); i >= 0 {
		return header[i+1:]
	}
	return header
}

func writeResponse(w http.ResponseWriter, action, inner string) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	fmt.Fprintf(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<u:%sResponse xmlns:u=%q>%s</u:%sResponse>
</s:Body></s:Envelope>`, action, wanipType, inner, action)
}

func writeFault(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<s:Fault>
<faultcode>s:Client</faultcode>
<faultstring>UPnPError</faultstring>
<detail><UPnPError xmlns="urn:schemas-upnp-org:control-1-0">
<errorCode>%d</errorCode>
<errorDescription>%s</errorDescription>
</UPnPError></detail>
</s:Fault>
</s:Body></s:Envelope>`, code, description)
}

func flipProtocol(p string) string {
	if p == "TCP" {
		return "UDP"
	}
	return "TCP"
}
