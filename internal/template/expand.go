package template

import (
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches {token} and {Q:token}. Any run of characters other
// than '}' is accepted as a token name.
var tokenPattern = regexp.MustCompile(`\{(Q:)?([^}]+)\}`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Expander resolves tokens using one alias profile.
// The zero value uses ProfileCredentials.
type Expander struct {
	aliases map[string]string
}

// NewExpander returns an expander for the given alias profile.
func NewExpander(p AliasProfile) Expander {
	return Expander{aliases: aliasTable(p)}
}

var defaultExpander = NewExpander(ProfileCredentials)

func (e Expander) table() map[string]string {
	if e.aliases == nil {
		return credentialAliases
	}
	return e.aliases
}

// Canonical returns the canonical form of a token name.
func (e Expander) Canonical(token string) string {
	return canonical(e.table(), token)
}

// resolve builds a lookup keyed by canonical name. Keys already spelled in
// canonical form win over alias spellings of the same token. Among alias
// spellings the lowest key in byte order wins, so the result never depends
// on map iteration order.
func (e Expander) resolve(b Bindings) map[string]string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(b))
	exact := make(map[string]bool, len(b))
	for _, k := range keys {
		c := e.Canonical(k)
		if c == "" || exact[c] {
			continue
		}
		if c == strings.ToLower(strings.TrimSpace(k)) {
			exact[c] = true
			out[c] = b[k]
			continue
		}
		if _, seen := out[c]; !seen {
			out[c] = b[k]
		}
	}
	return out
}

// ExpandText substitutes every token in text and leaves all other
// characters, newlines included, untouched.
func (e Expander) ExpandText(text string, b Bindings) string {
	if text == "" {
		return ""
	}
	values := e.resolve(b)

	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := tokenPattern.FindStringSubmatch(match)
		quote := groups[1] != ""
		name := e.Canonical(groups[2])

		value, ok := values[name]
		if !ok {
			return match
		}
		if quote && strings.Contains(value, " ") {
			return `"` + value + `"`
		}
		return value
	})
}

// Expand substitutes tokens for single-line execution: runs of whitespace,
// newlines included, collapse to one space and the result is trimmed.
// Text without any token is returned exactly as given.
func (e Expander) Expand(text string, b Bindings) string {
	if !tokenPattern.MatchString(text) {
		return text
	}
	return collapse(e.ExpandText(text, b))
}

// ListTokensUsed returns the canonical names referenced by text in
// first-seen order, without duplicates.
func (e Expander) ListTokensUsed(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := e.Canonical(m[2])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Unresolved returns the canonical names referenced by text that have no
// binding in b.
func (e Expander) Unresolved(text string, b Bindings) []string {
	values := e.resolve(b)
	var missing []string
	for _, name := range e.ListTokensUsed(text) {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Masked returns a copy of b with a non-empty password replaced by mask,
// whatever alias spelling the binding uses.
func (e Expander) Masked(b Bindings, mask string) Bindings {
	out := b.Clone()
	for k, v := range out {
		if v != "" && e.Canonical(k) == TokenPassword {
			out[k] = mask
		}
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Expand expands text with the default alias profile. See Expander.Expand.
func Expand(text string, b Bindings) string {
	return defaultExpander.Expand(text, b)
}

// ExpandText expands text with the default alias profile. See Expander.ExpandText.
func ExpandText(text string, b Bindings) string {
	return defaultExpander.ExpandText(text, b)
}

// ListTokensUsed lists tokens with the default alias profile.
func ListTokensUsed(text string) []string {
	return defaultExpander.ListTokensUsed(text)
}
