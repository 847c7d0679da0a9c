package domain

// KDFParams carries the PBKDF2 parameters stored next to a sealed payload.
//
// They are required to re-derive the exact key on reveal, so they are persisted with the record and
// returned verbatim in client-side reveal mode.
type KDFParams struct {
	Salt       []byte
	Iterations int
	Hash       HashAlgorithm
}

// Validate checks the parameters against the strength floor and the work ceiling. minIterations
// lower than MinIterations is raised to MinIterations; maxIterations that is zero or above
// MaxIterations is lowered to MaxIterations.
func (p KDFParams) Validate(minIterations, maxIterations int) error {
	minIterations, maxIterations = IterationBounds(minIterations, maxIterations)
	if len(p.Salt) < MinSaltSize {
		return ErrSaltTooShort
	}
	if p.Iterations < minIterations {
		return ErrIterationsTooLow
	}
	if p.Iterations > maxIterations {
		return ErrIterationsTooHigh
	}
	if !p.Hash.Valid() {
		return ErrUnsupportedHash
	}
	return nil
}

// IterationBounds clamps a configured iteration range to [MinIterations, MaxIterations].
func IterationBounds(minIterations, maxIterations int) (int, int) {
	minIterations = max(minIterations, MinIterations)
	if maxIterations <= 0 || maxIterations > MaxIterations {
		maxIterations = MaxIterations
	}
	return minIterations, max(maxIterations, minIterations)
}
