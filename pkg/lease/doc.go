// Package lease tracks the lifetimes of leased port mappings.
//
// Gateways remove a mapping when its lease runs out without telling
// anyone. A Tracker mirrors those lifetimes locally so a client knows
// when its mappings disappear and can renew them.
//
// # Timer Lifecycle
//
// A timer starts when the mapping is created (on receipt of the gateway's
// success response). When it expires, the expiry callback fires and the
// timer is forgotten. Creating a mapping again for the same port and
// protocol replaces the running timer.
//
// # Keys
//
// Timers are tracked per (external port, protocol) pair, matching how
// gateways key their mapping tables.
package lease
