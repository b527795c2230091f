// Package pns owns the PNS wire contract for LR5-LAN signal towers.
//
// Ownership boundary:
// - command frame encoding (run-control, clear, get-data)
// - response decoding (ack/nak, status snapshot)
// - field validation for outbound settings
//
// Nothing in this package performs I/O.
package pns
