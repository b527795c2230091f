// Package monitor polls one LR5-LAN unit for status, reconnecting with
// exponential backoff after transport failures, and optionally serves the
// last status and Prometheus metrics over HTTP.
package monitor
