package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Specifications are the free-form technical attributes of a product
// ("Memória": "8GB", "Tela": "6.1"). Values stay text until read.
type Specifications map[string]string

// FreeTextKey holds specifications that were entered as plain text.
const FreeTextKey = "specs"

// ParseSpecifications accepts the admin form input: a JSON object whose
// values are stringified, or any other text which is kept under FreeTextKey.
func ParseSpecifications(raw string) (Specifications, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return Specifications{FreeTextKey: raw}, nil
	}

	specs := make(Specifications, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			specs[k] = ""
		case string:
			specs[k] = val
		case float64:
			specs[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			specs[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("specification %q: %w", k, err)
			}
			specs[k] = string(b)
		}
	}
	return specs, specs.Validate()
}

// Validate rejects blank keys.
func (s Specifications) Validate() error {
	for k := range s {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("specification with empty name")
		}
	}
	return nil
}

// Lookup returns the raw text of a specification.
func (s Specifications) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Float parses a numeric specification, tolerating a decimal comma and a unit suffix ("6,1 pol").
func (s Specifications) Float(key string) (float64, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("specification %q not set", key)
	}
	num := strings.Fields(strings.ReplaceAll(v, ",", "."))
	if len(num) == 0 {
		return 0, fmt.Errorf("specification %q is empty", key)
	}
	f, err := strconv.ParseFloat(num[0], 64)
	if err != nil {
		return 0, fmt.Errorf("specification %q=%q is not a number", key, v)
	}
	return f, nil
}

// Int parses an integer specification ("128 GB" → 128).
func (s Specifications) Int(key string) (int, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("specification %q not set", key)
	}
	num := strings.Fields(v)
	if len(num) == 0 {
		return 0, fmt.Errorf("specification %q is empty", key)
	}
	n, err := strconv.Atoi(num[0])
	if err != nil {
		return 0, fmt.Errorf("specification %q=%q is not an integer", key, v)
	}
	return n, nil
}

// Keys returns the specification names in lexical order.
func (s Specifications) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the specifications back to the JSON form used by the admin form.
func (s Specifications) String() string {
	if len(s) == 0 {
		return ""
	}
	b, _ := json.MarshalIndent(map[string]string(s), "", "  ")
	return string(b)
}
