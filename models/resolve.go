package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a player name for matching: lowercase, diacritics
// stripped, whitespace collapsed. "José Ramírez " and "jose ramirez"
// normalize identically.
func NormalizeName(name string) string {
	folded, _, err := transform.String(nameFolder, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// ResolvePlayer matches a name against a player pool: exact id or name
// first, then normalized name. Returns ErrPlayerUnresolved when nothing
// matches.
func ResolvePlayer(pool []Player, idOrName string) (Player, error) {
	q := strings.TrimSpace(idOrName)
	if q == "" {
		return Player{}, ErrPlayerUnresolved
	}
	for _, p := range pool {
		if p.ID == q || p.Name == q {
			return p, nil
		}
	}
	norm := NormalizeName(q)
	for _, p := range pool {
		if NormalizeName(p.Name) == norm {
			return p, nil
		}
	}
	return Player{}, ErrPlayerUnresolved
}

// SearchPlayers returns pool entries whose normalized name contains the
// normalized query, preserving pool order.
func SearchPlayers(pool []Player, query string) []Player {
	norm := NormalizeName(query)
	if norm == "" {
		return nil
	}
	var out []Player
	for _, p := range pool {
		if strings.Contains(NormalizeName(p.Name), norm) {
			out = append(out, p)
		}
	}
	return out
}
