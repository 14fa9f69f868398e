package grocery

import (
	"regexp"
	"strings"
)

// Descriptors that do not change what has to be bought.
var modifierPattern = regexp.MustCompile(`(?i)\b(fresh|dried|ground|chopped|minced|sliced)\b`)

// NormalizeKey returns the merge identity of an ingredient name: lower-cased,
// modifiers removed, whitespace collapsed. "Fresh Garlic" and "garlic" share a
// key. Blank input yields "".
func NormalizeKey(name string) string {
	key := strings.ToLower(name)
	key = modifierPattern.ReplaceAllString(key, " ")
	return strings.Join(strings.Fields(key), " ")
}
