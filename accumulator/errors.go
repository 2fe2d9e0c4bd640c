package accumulator

import "golang.org/x/xerrors"

// Sentinel errors for the accumulator's domain-level failure modes
// (spec.md §7 "Cryptographic" and "Input" error kinds).
var (
	ErrElementAlreadyPresent = xerrors.New("accumulator: element already present")
	ErrElementAbsent         = xerrors.New("accumulator: element absent")
	ErrElementPresent        = xerrors.New("accumulator: element present")
	ErrZeroDivisor           = xerrors.New("accumulator: zero divisor")
	ErrNonCoprime            = xerrors.New("accumulator: quotients not coprime")
	ErrQuotientNotCoprime    = xerrors.New("accumulator: intersection quotients not coprime")
)
