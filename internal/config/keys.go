package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// Keys returns every settable configuration key in dotted form, sorted.
func Keys() []string {
	kinds := keyKinds()
	keys := make([]string, 0, len(kinds))
	for k := range kinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSecret reports whether key holds a credential that must not be echoed.
func IsSecret(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

// ParseValue converts raw into the type the key expects.
func ParseValue(key, raw string) (any, error) {
	kind, ok := keyKinds()[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	switch kind {
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		return v, nil
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		return v, nil
	case reflect.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// keyKinds maps each key to its field kind, following the mapstructure tags.
func keyKinds() map[string]reflect.Kind {
	out := make(map[string]reflect.Kind)
	collectKinds(reflect.TypeOf(Config{}), "", out)
	return out
}

func collectKinds(t reflect.Type, prefix string, out map[string]reflect.Kind) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			collectKinds(f.Type, key, out)
			continue
		}
		out[key] = f.Type.Kind()
	}
}
