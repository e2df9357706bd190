// Package assetkind holds the data-model records shared by every pipeline:
// the identifier types and the per-kind asset payloads described in
// spec.md §3.
package assetkind

import "github.com/cespare/xxhash/v2"

// MaxNameLength is the bound on AssetName (spec.md §3: "≤63-char").
const MaxNameLength = 63

// Name is a bounded textual identifier used for UX and hashing.
type Name string

// Clamp truncates n to MaxNameLength, matching the spec's bounded AssetName.
func (n Name) Clamp() Name {
	if len(n) <= MaxNameLength {
		return n
	}
	return n[:MaxNameLength]
}

// ID is a 64-bit content hash of a Name (spec invariant 1: ID stability).
type ID uint64

// HashName computes the stable ID for a given display name. Collisions
// across two different names with the same hash are not resolved here --
// that's the Package Store's job at registration time (spec.md §4.1).
func HashName(name Name) ID {
	return ID(xxhash.Sum64String(string(name)))
}

// OriginUser is the sentinel asset_origin for user-synthesised defaults
// (spec.md §3: "PackagePtr { asset_origin, filepath }").
const OriginUser = "OriginUser"
