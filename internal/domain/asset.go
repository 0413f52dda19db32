package domain

import "strings"

// AssetID is a Chia CAT asset identifier (hex TAIL hash).
type AssetID string

// Key returns the lower-cased form used to join quotes across sources.
func (id AssetID) Key() string {
	return strings.ToLower(strings.TrimSpace(string(id)))
}

// Equal compares two identifiers case-insensitively.
func (id AssetID) Equal(other AssetID) bool {
	return id.Key() == other.Key()
}

// TrackedAsset is a CAT whose price is resolved on every request.
type TrackedAsset struct {
	ID   AssetID `json:"assetId"`
	Name string  `json:"name"`
}

// defaultTrackedAssets is unexported to prevent external mutation.
var defaultTrackedAssets = []TrackedAsset{
	{ID: "a09af8b0d12b27772c64f89cf0d1db95186dca5b1871babc5108ff44f36305e6", Name: "CASTER"},
	{ID: "eb2155a177b6060535dd8e72e98ddb0c77aea21fab53737de1c1ced3cb38e4c4", Name: "SPELLPOWER"},
	{ID: "ae1536f56760e471ad85ead45f00d680ff9cca73b8cc3407be778f1c0c606eac", Name: "WIZ/BYC"},
	{ID: "70010d83542594dd44314efbae75d82b3d9ae7d946921ed981a6cd08f0549e50", Name: "LOVE"},
	{ID: "ab558b1b841365a24d1ff2264c55982e55664a8b6e45bc107446b7e667bb463b", Name: "SPROUT"},
	{ID: "dd37f678dda586fad9b1daeae1f7c5c137ffa6d947e1ed5c7b4f3c430da80638", Name: "PIZZA"},
}

// DefaultTrackedAssets returns a copy of the built-in asset list.
func DefaultTrackedAssets() []TrackedAsset {
	out := make([]TrackedAsset, len(defaultTrackedAssets))
	copy(out, defaultTrackedAssets)
	return out
}
