package config

import "sync/atomic"

// DefaultCredential holds the process-level data API credential. It can be
// replaced at runtime when the configuration file changes.
type DefaultCredential struct {
	v atomic.Pointer[string]
}

// NewDefaultCredential returns a holder initialised with token.
func NewDefaultCredential(token string) *DefaultCredential {
	d := &DefaultCredential{}
	d.Set(token)
	return d
}

// Get returns the current credential, or "" if none is configured.
func (d *DefaultCredential) Get() string {
	if d == nil {
		return ""
	}
	if p := d.v.Load(); p != nil {
		return *p
	}
	return ""
}

// Set replaces the credential.
func (d *DefaultCredential) Set(token string) {
	d.v.Store(&token)
}

// Configured reports whether a non-empty credential is present.
func (d *DefaultCredential) Configured() bool {
	return d.Get() != ""
}
