// Package types defines the landing page entities, the Store interface for
// versioned content, and the standard errors shared by the store backends and
// the service layer.
package types
