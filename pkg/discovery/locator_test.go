package discovery

import (
	"errors"
	"testing"
)

func TestParseDiscoveryResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"CACHE-CONTROL: max-age=120\r\n" +
		"ST: urn:schemas-upnp-org:device:InternetGatewayDevice:1\r\n" +
		"Location: http://192.168.1.1:2869/desc.xml\r\n" +
		"SERVER: Linux/2.6 UPnP/1.0\r\n\r\n"

	gw, err := ParseDiscoveryResponse(raw)
	if err != nil {
		t.Fatalf("ParseDiscoveryResponse failed: %v", err)
	}
	if gw.Host != "192.168.1.1" {
		t.Errorf("Host = %q, want 192.168.1.1", gw.Host)
	}
	if gw.Port != 2869 {
		t.Errorf("Port = %d, want 2869", gw.Port)
	}
	if gw.DescriptionPath != "/desc.xml" {
		t.Errorf("DescriptionPath = %q, want /desc.xml", gw.DescriptionPath)
	}
}

func TestParseDiscoveryResponseFieldCase(t *testing.T) {
	// Field names match case-insensitively; devices disagree on casing.
	for _, field := range []string{"LOCATION", "location", "LoCaTiOn"} {
		raw := field + ": http://10.0.0.138:80/IGD.xml\r\n"
		gw, err := ParseDiscoveryResponse(raw)
		if err != nil {
			t.Fatalf("%s: ParseDiscoveryResponse failed: %v", field, err)
		}
		if gw.Host != "10.0.0.138" || gw.Port != 80 || gw.DescriptionPath != "/IGD.xml" {
			t.Errorf("%s: got %s", field, gw.Key())
		}
	}
}

func TestParseDiscoveryResponseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"NoLocation", "HTTP/1.1 200 OK\r\nST: upnp:rootdevice\r\n", ErrNoLocation},
		{"Empty", "", ErrNoLocation},
		{"NotHTTP", "Location: https://192.168.1.1:443/desc.xml\r\n", ErrLocationNotHTTP},
		{"Opaque", "Location: uuid:some-device\r\n", ErrLocationNotHTTP},
		{"BadPort", "Location: http://192.168.1.1:notaport/desc.xml\r\n", ErrInvalidPort},
		{"PortOutOfRange", "Location: http://192.168.1.1:70000/desc.xml\r\n", ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDiscoveryResponse(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantHost string
		wantPort uint16
		wantPath string
	}{
		{"Typical", "http://192.168.1.1:2869/desc.xml", "192.168.1.1", 2869, "/desc.xml"},
		{"DefaultPort", "http://192.168.1.1/desc.xml", "192.168.1.1", 80, "/desc.xml"},
		{"NoPath", "http://192.168.1.1:5000", "192.168.1.1", 5000, "/"},
		{"DeepPath", "http://10.0.0.1:49152/rootDesc/igd.xml", "10.0.0.1", 49152, "/rootDesc/igd.xml"},
		{"UpperScheme", "HTTP://192.168.1.1:2869/desc.xml", "192.168.1.1", 2869, "/desc.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := ParseLocation(tt.location)
			if err != nil {
				t.Fatalf("ParseLocation(%q) failed: %v", tt.location, err)
			}
			if gw.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", gw.Host, tt.wantHost)
			}
			if gw.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", gw.Port, tt.wantPort)
			}
			if gw.DescriptionPath != tt.wantPath {
				t.Errorf("DescriptionPath = %q, want %q", gw.DescriptionPath, tt.wantPath)
			}
		})
	}
}

func TestGatewayIdentityExcludesControlPath(t *testing.T) {
	a := NewGateway("192.168.1.1", 2869, "/desc.xml")
	b := NewGateway("192.168.1.1", 2869, "/desc.xml")

	if a.Key() != b.Key() {
		t.Fatalf("identical observations compare unequal: %q vs %q", a.Key(), b.Key())
	}

	// Resolution must not change identity: an observation made before
	// resolution and one made after still compare equal.
	if !a.setControlPath("/upnp/control/WANIPConn1") {
		t.Fatal("setControlPath returned false on first write")
	}
	if a.Key() != b.Key() {
		t.Error("identity changed after resolution")
	}

	c := NewGateway("192.168.1.1", 2869, "/other.xml")
	if a.Key() == c.Key() {
		t.Error("distinct description paths compare equal")
	}
}

func TestGatewayControlPathWriteOnce(t *testing.T) {
	gw := NewGateway("192.168.1.1", 2869, "/desc.xml")

	if gw.Resolved() {
		t.Fatal("fresh gateway reports resolved")
	}
	if !gw.setControlPath("/control/a") {
		t.Fatal("first write rejected")
	}
	if gw.setControlPath("/control/b") {
		t.Error("second write accepted")
	}

	path, ok := gw.ControlPath()
	if !ok || path != "/control/a" {
		t.Errorf("ControlPath = %q, %v", path, ok)
	}
	url, ok := gw.ControlURL()
	if !ok || url != "http://192.168.1.1:2869/control/a" {
		t.Errorf("ControlURL = %q, %v", url, ok)
	}
}

func TestGatewayLastSeen(t *testing.T) {
	gw := NewGateway("192.168.1.1", 2869, "/desc.xml")
	first := gw.LastSeen()
	if first.IsZero() {
		t.Fatal("lastSeen not initialized")
	}
	gw.Touch()
	if gw.LastSeen().Before(first) {
		t.Error("Touch moved lastSeen backwards")
	}
}
