// Package blockname gives a block's content hash a short, memorable
// handle for terminal output: two words deterministically seeded from the
// hash's leading bytes, followed by its hex prefix, so two reviewers
// discussing "swift-falcon-a1b2c3d4" know they mean the same block without
// reading out the full 64-character digest.
package blockname

import (
	"encoding/hex"
	"math/rand"
)

var adjectives = []string{
	"swift", "brave", "bold", "clever", "mighty", "gentle", "wise", "noble",
	"fierce", "calm", "bright", "dark", "ancient", "young", "strong", "quick",
	"silent", "warm", "cool", "sharp", "smooth", "rough", "soft", "hard",
	"light", "heavy", "deep", "wide", "narrow", "tall", "round", "pure",
}

var nouns = []string{
	"eagle", "mountain", "river", "falcon", "wolf", "bear", "storm", "thunder",
	"forest", "ocean", "phoenix", "dragon", "tiger", "hawk", "raven", "fox",
	"star", "moon", "comet", "valley", "peak", "canyon", "meadow", "grove",
	"sword", "shield", "gem", "flame", "wind", "wave", "stone", "oak",
}

// Handle returns a deterministic two-word label plus the hash's 8-character
// hex prefix. Hashes shorter than 8 hex characters are returned unchanged.
func Handle(hash string) string {
	if len(hash) < 8 {
		return hash
	}

	seedBytes, err := hex.DecodeString(hash[:8])
	var seed int64
	if err == nil && len(seedBytes) >= 4 {
		seed = int64(uint32(seedBytes[0])<<24 | uint32(seedBytes[1])<<16 | uint32(seedBytes[2])<<8 | uint32(seedBytes[3]))
	}

	r := rand.New(rand.NewSource(seed))
	adj := adjectives[r.Intn(len(adjectives))]
	noun := nouns[r.Intn(len(nouns))]
	return adj + "-" + noun + "-" + hash[:8]
}
