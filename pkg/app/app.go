// Package app holds the contract between cmd/* binaries and the long running
// components they start, such as the token server in package api.
package app

// Runner is a component that owns its process lifetime. Run sets up logging
// from its own configuration, serves until SIGINT or SIGTERM arrives, drains
// in-flight work and returns nil after a clean shutdown. A non-nil error
// means the component could not start or stopped abnormally; the caller
// reports it and exits non-zero.
type Runner interface {
	Run() error
}
