package directive

import (
	"strings"
)

// Attribute is a single key/value pair written between the parentheses of a
// directive. Bare keys carry an empty value.
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps directive attributes in the order the author wrote them.
// Setting an existing key replaces its value and keeps its position.
type Attributes []Attribute

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set assigns value to key.
func (a *Attributes) Set(key, value string) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

// Keys lists the keys in author order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// First returns the first attribute.
func (a Attributes) First() (Attribute, bool) {
	if len(a) == 0 {
		return Attribute{}, false
	}
	return a[0], true
}

// Map copies the attributes into a map.
func (a Attributes) Map() map[string]string {
	out := make(map[string]string, len(a))
	for _, attr := range a {
		out[attr.Key] = attr.Value
	}
	return out
}

func (a Attributes) String() string {
	parts := make([]string, len(a))
	for i, attr := range a {
		if attr.Value == "" {
			parts[i] = attr.Key
			continue
		}
		parts[i] = attr.Key + "=" + attr.Value
	}
	return strings.Join(parts, ", ")
}

// ParseAttributes splits the text between a directive's parentheses into
// attributes. Items are separated by commas outside quotes; each item is
// either key=value or a bare key. Values may be wrapped in single or double
// quotes, inside which a backslash escapes the next character.
func ParseAttributes(raw string) Attributes {
	var attrs Attributes
	for _, item := range splitItems(raw) {
		key, value, hasValue := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !hasValue {
			attrs.Set(unquote(key), "")
			continue
		}
		attrs.Set(key, unquote(strings.TrimSpace(value)))
	}
	return attrs
}

func splitItems(raw string) []string {
	var (
		items   []string
		current strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range raw {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote == 0 && r == ',':
			items = append(items, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		items = append(items, rest)
	}
	return items
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first != '"' && first != '\'') || first != last {
		return value
	}
	inner := value[1 : len(value)-1]
	var out strings.Builder
	escaped := false
	for _, r := range inner {
		if escaped {
			out.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
