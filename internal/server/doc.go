// Package server provides the HTTP API for creating calendar events with
// Meet links and notifying participants by email. It also hosts the
// Kubernetes health probes and the dedicated Prometheus metrics listener.
package server
