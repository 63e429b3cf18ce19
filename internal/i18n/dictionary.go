package i18n

import (
	"maps"
	"strings"
)

// Dictionary maps UI string keys to localized text.
type Dictionary map[string]string

// T returns the text for key, or key itself when the dictionary has no
// non-empty value for it. T never returns an empty string for a non-empty key.
func (d Dictionary) T(key string) string {
	if value, ok := d[key]; ok && value != "" {
		return value
	}
	return key
}

// Format looks up key and substitutes {name} placeholders from vars.
func (d Dictionary) Format(key string, vars map[string]string) string {
	text := d.T(key)
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Clone returns an independent copy.
func (d Dictionary) Clone() Dictionary {
	if d == nil {
		return Dictionary{}
	}
	return maps.Clone(d)
}
