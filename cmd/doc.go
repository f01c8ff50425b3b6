// Package cmd implements the calinvite command line interface: the serve
// command running the HTTP API, the authorize command for pre-authorizing
// users, and version.
package cmd
