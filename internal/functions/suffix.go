package functions

import (
	"reflect"
	"sort"
)

// SuffixHashTitleName is the template function name for SuffixHashTitle.
const SuffixHashTitleName = "suffix_hash_title"

// SuffixKeys returns a new map whose keys are the input keys with suffix
// appended. Values are passed through untouched.
func SuffixKeys[V any](in map[string]V, suffix string) map[string]V {
	out := make(map[string]V, len(in))
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out[key+suffix] = in[key]
	}
	return out
}

// SuffixHashTitle is the loosely typed template form of SuffixKeys. It expects
// exactly a mapping and a string. The mapping may be any Go map whose keys are
// strings (including named string types), or a map[any]any whose keys all hold
// strings. Any other arguments produce an empty map instead of an error.
func SuffixHashTitle(args ...any) map[string]any {
	if len(args) != 2 {
		return map[string]any{}
	}
	suffix, ok := args[1].(string)
	if !ok {
		return map[string]any{}
	}

	switch in := args[0].(type) {
	case map[string]any:
		return SuffixKeys(in, suffix)
	case map[any]any:
		converted := make(map[string]any, len(in))
		for key, value := range in {
			name, ok := key.(string)
			if !ok {
				return map[string]any{}
			}
			converted[name] = value
		}
		return SuffixKeys(converted, suffix)
	}

	converted, ok := stringKeyed(args[0])
	if !ok {
		return map[string]any{}
	}
	return SuffixKeys(converted, suffix)
}

// stringKeyed widens any map with a string key kind to map[string]any.
func stringKeyed(in any) (map[string]any, bool) {
	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
