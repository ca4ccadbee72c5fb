package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Generator creates opaque IDs for rows created without a caller supplied id.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// Provider builds the stable id of a row imported from the external data
// provider, e.g. Provider("player", 1413) == "cb-player-1413". Re-importing
// the same provider record therefore targets the same row.
func Provider(kind string, ref int64) string {
	return "cb-" + strings.ToLower(strings.TrimSpace(kind)) + "-" + strconv.FormatInt(ref, 10)
}

// Stat builds the natural id of a scorecard line.
func Stat(playerID, matchID string, innings int) string {
	return matchID + ":" + playerID + ":" + strconv.Itoa(innings)
}

// ProviderName builds the id of a provider record that only has a name,
// e.g. ProviderName("team", "Sri Lanka") == "cb-team-sri-lanka".
func ProviderName(kind, name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return "cb-" + strings.ToLower(strings.TrimSpace(kind)) + "-" + strings.TrimRight(b.String(), "-")
}
