package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ClientState contains the runtime state of the gateway client.
type ClientState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Gateways contains every gateway the client has resolved.
	Gateways []KnownGateway `json:"gateways,omitempty"`
}

// KnownGateway records a gateway the client has talked to.
type KnownGateway struct {
	// Location is the description document URL, the gateway's identity.
	Location string `json:"location"`

	// ControlURL is the resolved WANIPConnection control endpoint.
	ControlURL string `json:"control_url,omitempty"`

	// ExternalIP is the WAN address last reported by the gateway.
	ExternalIP string `json:"external_ip,omitempty"`

	// LastSeenAt is when the gateway last answered.
	LastSeenAt time.Time `json:"last_seen_at,omitempty"`

	// Mappings are the port mappings this client created on the gateway.
	Mappings []OwnedMapping `json:"mappings,omitempty"`
}

// OwnedMapping records a port mapping the client created, so a restart
// can find and clean up its own entries.
type OwnedMapping struct {
	// ExternalPort is the WAN-side port.
	ExternalPort int `json:"external_port"`

	// Protocol is TCP or UDP.
	Protocol string `json:"protocol"`

	// InternalPort is the LAN-side port.
	InternalPort uint16 `json:"internal_port"`

	// InternalHost is the LAN-side address.
	InternalHost string `json:"internal_host"`

	// Description is the label stored with the mapping.
	Description string `json:"description,omitempty"`

	// CreatedAt is when the mapping was created.
	CreatedAt time.Time `json:"created_at"`
}

// StateStore manages persistence of client state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new client state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Save persists the client state to disk.
func (s *StateStore) Save(state *ClientState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the client state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*ClientState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ClientState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Upsert merges a gateway record into state, matching on Location.
// Mappings of an existing record are kept unless the update carries its
// own.
func (state *ClientState) Upsert(gw KnownGateway) {
	for i := range state.Gateways {
		if state.Gateways[i].Location == gw.Location {
			if gw.Mappings == nil {
				gw.Mappings = state.Gateways[i].Mappings
			}
			state.Gateways[i] = gw
			return
		}
	}
	state.Gateways = append(state.Gateways, gw)
}

// Find returns the record for a gateway location, or nil.
func (state *ClientState) Find(location string) *KnownGateway {
	for i := range state.Gateways {
		if state.Gateways[i].Location == location {
			return &state.Gateways[i]
		}
	}
	return nil
}

// AddMapping records a mapping under the gateway's record, replacing any
// existing record for the same port and protocol.
func (g *KnownGateway) AddMapping(m OwnedMapping) {
	for i := range g.Mappings {
		if g.Mappings[i].ExternalPort == m.ExternalPort && g.Mappings[i].Protocol == m.Protocol {
			g.Mappings[i] = m
			return
		}
	}
	g.Mappings = append(g.Mappings, m)
}

// RemoveMapping drops the record for a port and protocol, if present.
func (g *KnownGateway) RemoveMapping(externalPort int, protocol string) {
	for i := range g.Mappings {
		if g.Mappings[i].ExternalPort == externalPort && g.Mappings[i].Protocol == protocol {
			g.Mappings = append(g.Mappings[:i], g.Mappings[i+1:]...)
			return
		}
	}
}
