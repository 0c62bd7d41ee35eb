// Package workerid derives the short worker identifier used as the join key
// across independently uploaded payroll documents. The derivation must stay
// byte-for-byte stable: a different segmentation policy silently fragments a
// worker's records across tables.
package workerid

import "strings"

// DeriveID builds a short uppercase identifier from a worker's full name.
//
// "APELLIDO1 APELLIDO2, NOMBRE" splits at the comma; otherwise the name is
// read in natural order, first token the given name and the rest surnames.
// Composition: first two characters of each of the first two surnames plus
// the first character of the given name ("Jose Garcia Fontecha" -> "GAFOJ").
// Fewer components degrade gracefully.
func DeriveID(fullName string) string {
	name := strings.ToUpper(strings.TrimSpace(fullName))
	if name == "" {
		return ""
	}

	var surnames []string
	var given string

	if before, after, ok := strings.Cut(name, ","); ok {
		surnames = strings.Fields(strings.TrimSpace(before))
		given = strings.TrimSpace(after)
	} else {
		parts := strings.Fields(name)
		if len(parts) < 3 {
			return firstN(name, 3)
		}
		given = parts[0]
		surnames = parts[1:]
	}

	switch {
	case len(surnames) >= 2:
		return firstN(surnames[0], 2) + firstN(surnames[1], 2) + firstN(given, 1)
	case len(surnames) == 1:
		return firstN(surnames[0], 2) + firstN(given, 2)
	default:
		return firstN(given, 3)
	}
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
