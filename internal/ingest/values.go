package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
)

// lookup returns the value at key, nil when the key is absent or null.
func lookup(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func getMap(src map[string]any, key string) map[string]any {
	obj, _ := lookup(src, key).(map[string]any)
	return obj
}

func getSlice(src map[string]any, key string) []any {
	items, _ := lookup(src, key).([]any)
	return items
}

// getString reads a text field. Numbers are rendered as text; any other
// type is a mismatch.
func getString(src map[string]any, path, key string) (string, error) {
	switch typed := lookup(src, key).(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(typed), nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case int:
		return strconv.Itoa(typed), nil
	case json.Number:
		return typed.String(), nil
	default:
		return "", ingestion.TypeMismatch(join(path, key), fmt.Sprintf("expected text, got %T", typed))
	}
}

// firstString returns the first non-empty text among keys.
func firstString(src map[string]any, path string, keys ...string) (string, error) {
	for _, key := range keys {
		v, err := getString(src, path, key)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// getInt64 reads an integer that providers send as a number or a digit
// string. ok is false when the field is absent or empty.
func getInt64(src map[string]any, path, key string) (int64, bool, error) {
	field := join(path, key)
	switch typed := lookup(src, key).(type) {
	case nil:
		return 0, false, nil
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) {
			return 0, false, ingestion.TypeMismatch(field, fmt.Sprintf("expected an integer, got %v", typed))
		}
		return int64(typed), true, nil
	case int64:
		return typed, true, nil
	case int:
		return int64(typed), true, nil
	case json.Number:
		v, err := typed.Int64()
		if err != nil {
			return 0, false, ingestion.TypeMismatch(field, fmt.Sprintf("expected an integer, got %q", typed.String()))
		}
		return v, true, nil
	case string:
		text := strings.TrimSpace(typed)
		if text == "" || text == "-" {
			return 0, false, nil
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false, ingestion.TypeMismatch(field, fmt.Sprintf("expected an integer, got %q", typed))
		}
		return v, true, nil
	default:
		return 0, false, ingestion.TypeMismatch(field, fmt.Sprintf("expected an integer, got %T", typed))
	}
}

// getInt reads a non-negative count, zero when absent.
func getInt(src map[string]any, path, key string) (int, error) {
	v, _, err := getInt64(src, path, key)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ingestion.TypeMismatch(join(path, key), fmt.Sprintf("expected a count, got %d", v))
	}
	return int(v), nil
}

func getFloat(src map[string]any, path, key string) (float64, error) {
	field := join(path, key)
	switch typed := lookup(src, key).(type) {
	case nil:
		return 0, nil
	case float64:
		return typed, nil
	case int64:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case json.Number:
		v, err := typed.Float64()
		if err != nil {
			return 0, ingestion.TypeMismatch(field, fmt.Sprintf("expected a number, got %q", typed.String()))
		}
		return v, nil
	case string:
		text := strings.TrimSpace(typed)
		if text == "" || text == "-" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, ingestion.TypeMismatch(field, fmt.Sprintf("expected a number, got %q", typed))
		}
		return v, nil
	default:
		return 0, ingestion.TypeMismatch(field, fmt.Sprintf("expected a number, got %T", typed))
	}
}

// objects returns the objects held by a field that providers send either
// as a list or as a map keyed "bat_1", "bat_2" and so on. Map entries come
// back in the order of their numeric suffix.
func objects(src map[string]any, key string) []map[string]any {
	switch typed := lookup(src, key).(type) {
	case []any:
		out := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			ni, nj := suffixNumber(keys[i]), suffixNumber(keys[j])
			if ni != nj {
				return ni < nj
			}
			return keys[i] < keys[j]
		})
		out := make([]map[string]any, 0, len(keys))
		for _, k := range keys {
			if obj, ok := typed[k].(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	default:
		return nil
	}
}

func suffixNumber(key string) int {
	i := strings.LastIndexAny(key, "_-")
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return math.MaxInt32
	}
	return n
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
