package mpt

import "golang.org/x/xerrors"

// Sentinel errors for the MPT's structural failure modes (spec.md §7
// "Structural": node not found, invalid serialization, invalid key).
var (
	ErrNodeNotFound       = xerrors.New("mpt: node not found in external kv store")
	ErrInvalidSerialization = xerrors.New("mpt: invalid node serialization")
	ErrInvalidKey         = xerrors.New("mpt: invalid key")
	ErrNoRoot             = xerrors.New("mpt: no persisted root")
	ErrTokenAbsent        = xerrors.New("mpt: csv token absent")
	ErrTokenPresent       = xerrors.New("mpt: csv token already present")
)
