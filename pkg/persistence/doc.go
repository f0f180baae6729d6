// Package persistence provides runtime state persistence for the gateway
// client.
//
// This package handles the JSON serialization of client state (known
// gateways, their resolved control endpoints, mappings the client has
// created) that should survive restarts. A restarted client can re-check
// its own mappings against the gateway instead of starting blind.
package persistence
