package services

import (
	"fmt"
	"sort"
	"strings"
)

// Model output is decoded into map[string]any and read leniently: a string
// where a list is expected becomes a one-element list, null becomes empty.

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringOf(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		// {"index.html": "markup"} style file structures keep their keys.
		out := make([]string, 0, len(t))
		for k := range t {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	default:
		return []string{}
	}
}

func floatOf(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
