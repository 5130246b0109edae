package ioformat

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// SkolemPolicy assigns a stable identifier to a blank node encountered by
// the graph-triple loader (§6 "blank node -> `_:<id>` or skolemized URI per
// configured policy").
type SkolemPolicy interface {
	Skolemize(blankID string) string
}

// NonePolicy leaves blank nodes as their native `_:<id>` form.
type NonePolicy struct{}

func (NonePolicy) Skolemize(blankID string) string { return "_:" + blankID }

// DeterministicPolicy produces `<base>/<prefix>_<id>` (§8 scenario 5: base
// "http://ex/" + prefix "sk" + id "b1" -> "http://ex//sk_b1"; the separator
// is implementation-defined but stable, per spec.md §6).
type DeterministicPolicy struct {
	Base   string
	Prefix string
}

func (p DeterministicPolicy) Skolemize(blankID string) string {
	return fmt.Sprintf("%s/%s_%s", p.Base, p.Prefix, blankID)
}

// UUIDPolicy mints a fresh random URI per blank node under Base. Results
// are not stable across runs — callers needing reproducibility should use
// DeterministicPolicy or HashPolicy instead.
type UUIDPolicy struct {
	Base string
}

func (p UUIDPolicy) Skolemize(blankID string) string {
	return p.Base + uuid.New().String()
}

// HashPolicy produces `<base><hex-digest>` using the configured hash
// algorithm over blankID. Only "sha256" is implemented; any other Algo
// value falls back to sha256 rather than silently using a weaker hash.
type HashPolicy struct {
	Base string
	Algo string
}

func (p HashPolicy) Skolemize(blankID string) string {
	sum := sha256.Sum256([]byte(blankID))
	return p.Base + hex.EncodeToString(sum[:])
}
