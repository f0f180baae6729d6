package rpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/igd-protocol/igd-go/pkg/wire"
)

func TestHTTPCallerHeaders(t *testing.T) {
	var gotAction, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPACTION")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:AddPortMappingResponse xmlns:u="urn:schemas-upnp-org:service:WANIPConnection:1"></u:AddPortMappingResponse></s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	c := NewHTTPCaller(time.Second)
	data, err := c.Call(context.Background(), srv.URL, wire.WANIPConnectionService, wire.ActionAddPortMapping, []byte("<request/>"))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	want := `"urn:schemas-upnp-org:service:WANIPConnection:1#AddPortMapping"`
	if gotAction != want {
		t.Errorf("SOAPACTION = %q, want %q", gotAction, want)
	}
	if !strings.HasPrefix(gotContentType, "text/xml") {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if string(gotBody) != "<request/>" {
		t.Errorf("body = %q", gotBody)
	}
	if !strings.Contains(string(data), "AddPortMappingResponse") {
		t.Errorf("response = %q", data)
	}
}

func TestHTTPCallerFaultBodyOn500(t *testing.T) {
	// Gateways deliver SOAP faults on HTTP 500; the body must come back.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<s:Envelope>fault</s:Envelope>"))
	}))
	defer srv.Close()

	c := NewHTTPCaller(time.Second)
	data, err := c.Call(context.Background(), srv.URL, wire.WANIPConnectionService, wire.ActionAddPortMapping, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !strings.Contains(string(data), "fault") {
		t.Errorf("body = %q", data)
	}
}

func TestHTTPCallerBodylessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPCaller(time.Second)
	_, err := c.Call(context.Background(), srv.URL, wire.WANIPConnectionService, wire.ActionGetExternalIPAddress, nil)
	if !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("err = %v, want ErrHTTPStatus", err)
	}
	if err != nil && !strings.Contains(err.Error(), "503") {
		t.Errorf("error does not carry the transport status: %v", err)
	}
}

func TestHTTPCallerTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPCaller(time.Second)
	_, err := c.Call(context.Background(), srv.URL, wire.WANIPConnectionService, wire.ActionGetExternalIPAddress, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
}

// scriptedCaller returns canned responses or errors for Begin tests.
type scriptedCaller struct {
	responses [][]byte
	errs      []error
	calls     int
}

func (s *scriptedCaller) Call(ctx context.Context, endpoint, serviceType, action string, body []byte) ([]byte, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return nil, errors.New("no scripted response")
}

func TestBeginSuccess(t *testing.T) {
	caller := &scriptedCaller{responses: [][]byte{[]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:GetExternalIPAddressResponse xmlns:u="urn:schemas-upnp-org:service:WANIPConnection:1"><NewExternalIPAddress>198.51.100.4</NewExternalIPAddress></u:GetExternalIPAddressResponse></s:Body></s:Envelope>`)}}

	done := make(chan Outcome[wire.GetExternalIPAddressResponse], 1)
	fut := Begin(context.Background(), caller, "http://router/control", wire.WANIPConnectionService,
		wire.ActionGetExternalIPAddress, nil,
		func(out Outcome[wire.GetExternalIPAddressResponse]) { done <- out })

	out, err := fut.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if out.Value == nil || out.Value.NewExternalIPAddress != "198.51.100.4" {
		t.Errorf("outcome = %+v", out)
	}

	select {
	case cb := <-done:
		if cb.Value == nil {
			t.Errorf("callback outcome = %+v", cb)
		}
	case <-time.After(time.Second):
		t.Error("completion callback never fired")
	}
}

func TestBeginFault(t *testing.T) {
	caller := &scriptedCaller{responses: [][]byte{[]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><s:Fault><faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring><detail><UPnPError xmlns="urn:schemas-upnp-org:control-1-0"><errorCode>714</errorCode><errorDescription>NoSuchEntryInArray</errorDescription></UPnPError></detail></s:Fault></s:Body></s:Envelope>`)}}

	fut := Begin[wire.GetSpecificPortMappingEntryResponse](context.Background(), caller,
		"http://router/control", wire.WANIPConnectionService,
		wire.ActionGetSpecificPortMappingEntry, nil, nil)

	out, err := fut.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if out.Fault == nil || out.Fault.Code != wire.FaultNoSuchEntryInArray {
		t.Errorf("outcome = %+v", out)
	}
}

func TestBeginTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	caller := &scriptedCaller{errs: []error{boom}}

	fut := Begin[wire.AddPortMappingResponse](context.Background(), caller,
		"http://router/control", wire.WANIPConnectionService,
		wire.ActionAddPortMapping, nil, nil)

	out, err := fut.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if !errors.Is(out.Err, boom) {
		t.Errorf("outcome err = %v, want %v", out.Err, boom)
	}
	if out.Value != nil || out.Fault != nil {
		t.Errorf("outcome carries more than one result: %+v", out)
	}
}
