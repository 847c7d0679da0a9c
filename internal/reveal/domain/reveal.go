// Package domain defines the reveal workflow: single-use reveal tokens, the per subject and record
// failure counter that drives the lockout, and the payload handed out when a token is redeemed.
//
// A reveal moves through Requested, KeyVerified, Issued and Consumed. It ends in Denied when the
// credential, the stored metadata or the lockout rejects it, and in Expired when its token is not
// redeemed in time.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// Mode selects where the final decryption happens.
type Mode string

const (
	// ModeServer returns the plaintext to the caller.
	ModeServer Mode = "server"
	// ModeClient returns the sealed payload and its derivation parameters for local decryption.
	ModeClient Mode = "client"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeServer || m == ModeClient
}

// Token is a persisted reveal grant. Only the hash of the plain token is stored.
type Token struct {
	ID         uuid.UUID
	TokenHash  string
	RecordID   uuid.UUID
	SubjectID  uuid.UUID
	Mode       Mode
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// IsConsumed reports whether the token was already redeemed.
func (t *Token) IsConsumed() bool {
	return t.ConsumedAt != nil
}

// IsExpired reports whether the token can no longer be redeemed at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// AttemptCounter tracks consecutive failed reveals of one record by one subject. InFlight counts
// credential checks that are running and have not been settled yet; they count against the threshold
// so concurrent guesses cannot outrun the lockout.
type AttemptCounter struct {
	SubjectID    uuid.UUID
	RecordID     uuid.UUID
	FailedCount  int
	LastFailedAt *time.Time
	LockedUntil  *time.Time
	InFlight     int
	ReservedAt   *time.Time
}

// IsLocked reports whether the pair is inside its lockout window at now.
func (a *AttemptCounter) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// expireLock starts a new count once an earlier lockout has elapsed.
func (a *AttemptCounter) expireLock(now time.Time) {
	if a.LockedUntil != nil && !now.Before(*a.LockedUntil) {
		a.FailedCount = 0
		a.LockedUntil = nil
	}
}

// Reserve claims a slot for one credential check. It refuses while the pair is locked or when the
// failures plus the checks already running reach threshold. Reservations older than staleAfter are
// treated as abandoned.
func (a *AttemptCounter) Reserve(now time.Time, threshold int, staleAfter time.Duration) bool {
	a.expireLock(now)
	if a.ReservedAt != nil && now.Sub(*a.ReservedAt) >= staleAfter {
		a.InFlight = 0
	}
	if a.IsLocked(now) || a.FailedCount+a.InFlight >= threshold {
		return false
	}
	a.InFlight++
	reservedAt := now
	a.ReservedAt = &reservedAt
	return true
}

// Release gives back a slot without counting a failure.
func (a *AttemptCounter) Release() {
	if a.InFlight > 0 {
		a.InFlight--
	}
}

// Fail settles a reservation as a failed credential. The failure that reaches threshold locks the
// pair until lockedUntil.
func (a *AttemptCounter) Fail(now time.Time, threshold int, lockedUntil time.Time) {
	a.Release()
	a.expireLock(now)
	a.FailedCount++
	failedAt := now
	a.LastFailedAt = &failedAt
	if a.FailedCount >= threshold {
		until := lockedUntil
		a.LockedUntil = &until
	}
}

// Succeed settles a reservation as a verified credential and clears the failures. It reports false,
// leaving the lock in place, when the pair got locked while the check was running.
func (a *AttemptCounter) Succeed(now time.Time) bool {
	a.Release()
	if a.IsLocked(now) {
		return false
	}
	a.FailedCount = 0
	a.LastFailedAt = nil
	return true
}

// Payload is what a redeemed token yields. Plaintext is set in server mode, Sealed in client mode.
type Payload struct {
	RecordID  uuid.UUID
	Mode      Mode
	Plaintext []byte
	Sealed    *cryptoDomain.SealedPayload
	ExpiresAt time.Time
}

// Clone returns a deep copy of the plaintext-bearing parts of p.
func (p *Payload) Clone() *Payload {
	clone := *p
	if p.Plaintext != nil {
		clone.Plaintext = append([]byte(nil), p.Plaintext...)
	}
	return &clone
}

// Zero wipes the plaintext held by p.
func (p *Payload) Zero() {
	cryptoDomain.Zero(p.Plaintext)
}

// RevealRequest asks for a reveal grant on a record.
type RevealRequest struct {
	RecordID   uuid.UUID
	SubjectID  uuid.UUID
	Credential []byte
	Mode       Mode
	RequestID  uuid.UUID
	// Progress optionally receives 0, 10, 60, 90 and 100 as the request moves from queued to
	// verified. Updates the receiver is not ready for are dropped. The channel is closed when
	// Request returns.
	Progress chan<- int
}

// Grant is returned by a successful reveal request. Token is the plain single-use value and is
// never stored.
type Grant struct {
	Token     string
	TokenID   uuid.UUID
	RecordID  uuid.UUID
	Mode      Mode
	ExpiresAt time.Time
}
