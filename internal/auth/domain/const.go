// Package domain defines the clients that call the vault, the bearer tokens they authenticate with and
// the capability policies that decide which record endpoints they may reach.
package domain

// Capability defines the types of operations a client may perform on a path.
type Capability string

const (
	// ReadCapability allows listing records and reading their metadata.
	ReadCapability Capability = "read"

	// WriteCapability allows storing new sealed records.
	WriteCapability Capability = "write"

	// DeleteCapability allows soft-deleting and restoring records.
	DeleteCapability Capability = "delete"

	// RevealCapability allows requesting and redeeming reveal tokens.
	RevealCapability Capability = "reveal"

	// AuditCapability allows querying, aggregating and exporting the audit trail.
	AuditCapability Capability = "audit"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case ReadCapability, WriteCapability, DeleteCapability, RevealCapability, AuditCapability:
		return true
	}
	return false
}
