package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const appendSuffix = ".append"

var indexedKey = regexp.MustCompile(`^(.+)\[([0-9]+)\]$`)

// config is one flat settings store. Plain keys hold one value; list keys
// grow one slot per "key.append" and are filled through "key[i]".
type config struct {
	global  bool
	values  map[string]string
	lists   map[string][]string
	unknown []string
}

func newConfig(global bool) *config {
	return &config{
		global: global,
		values: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

// set applies one flat setting. Unknown keys are recorded, not rejected.
func (c *config) set(key, value string) error {
	if base, ok := strings.CutSuffix(key, appendSuffix); ok {
		if !c.isList(base) {
			return nil
		}
		c.lists[base] = append(c.lists[base], "")
		return nil
	}

	if m := indexedKey.FindStringSubmatch(key); m != nil {
		base := m[1]
		if !c.isList(base) {
			return nil
		}
		i, err := strconv.Atoi(m[2])
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		if i >= len(c.lists[base]) {
			return fmt.Errorf("%w: %s has %d slots", ErrListIndex, key, len(c.lists[base]))
		}
		if !strings.Contains(value, "\n") {
			return fmt.Errorf("%w: %s: want \"name\\nvalue\"", ErrInvalidValue, key)
		}
		c.lists[base][i] = value
		return nil
	}

	ks, ok := lookupKey(key, c.global)
	if !ok {
		c.unknown = append(c.unknown, key)
		return nil
	}
	if ks.kind == keyList {
		return fmt.Errorf("%w: %s is a list, set it through %s%s and %s[i]",
			ErrInvalidValue, key, key, appendSuffix, key)
	}
	if err := ks.kind.validate(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	c.values[key] = value
	return nil
}

// isList reports whether key is a known list key. Unknown list keys are
// recorded once.
func (c *config) isList(key string) bool {
	ks, ok := lookupKey(key, c.global)
	if ok && ks.kind == keyList {
		return true
	}
	for _, k := range c.unknown {
		if k == key {
			return false
		}
	}
	c.unknown = append(c.unknown, key)
	return false
}

func (c *config) get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *config) text(key, def string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// flag returns a stored boolean; values were validated on set.
func (c *config) flag(key string, def bool) bool {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	b, err := parseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (c *config) integer(key string, def int) int {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *config) number(key string, def float64) float64 {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// length returns a stored length in inches.
func (c *config) length(key string, def float64) float64 {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	in, err := parseLengthInches(v)
	if err != nil {
		return def
	}
	return in
}

// pairs returns the filled slots of a list as name/value pairs.
func (c *config) pairs(key string) []Header {
	var out []Header
	for _, slot := range c.lists[key] {
		name, value, ok := strings.Cut(slot, "\n")
		if !ok || name == "" {
			continue
		}
		out = append(out, Header{Name: name, Value: value})
	}
	return out
}

// hasPrefix reports whether any plain key starts with prefix.
func (c *config) hasPrefix(prefix string) bool {
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
