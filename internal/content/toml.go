package content

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

// Zone names BurntSushi/toml gives to values without an offset.
const (
	zoneLocalDate     = "date-local"
	zoneLocalTime     = "time-local"
	zoneLocalDatetime = "datetime-local"
)

func decodeTOML(data []byte) (denorm.Value, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	return fromTOML(raw, nil, keyOrder(md.Keys()))
}

// keyOrder records, per table path, the order in which the document
// introduces its keys. Elements of an array of tables share their array's
// path.
func keyOrder(keys []toml.Key) map[string][]string {
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, k := range keys {
		if len(k) == 0 {
			continue
		}
		parent := pathKey(k[:len(k)-1])
		full := pathKey(k)
		if seen[full] {
			continue
		}
		seen[full] = true
		order[parent] = append(order[parent], k[len(k)-1])
	}
	return order
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

// orderedKeys lists the keys of m in document order. Keys the metadata
// does not know about follow, sorted.
func orderedKeys(m map[string]any, known []string) []string {
	out := make([]string, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, k := range known {
		if _, ok := m[k]; ok && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// fromTOML converts the values BurntSushi/toml produces for an untyped
// decode. path is the table path of v.
func fromTOML(v any, path []string, order map[string][]string) (denorm.Value, error) {
	switch t := v.(type) {
	case nil:
		return denorm.Null{}, nil
	case bool:
		return denorm.Bool(t), nil
	case string:
		return denorm.String(t), nil
	case int64:
		return denorm.Number(strconv.FormatInt(t, 10)), nil
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("float %v: %w", t, ErrUnsupported)
		}
		return denorm.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case time.Time:
		return denorm.String(formatTime(t)), nil
	case []map[string]any:
		arr := make(denorm.Array, 0, len(t))
		for _, e := range t {
			ev, err := fromTOML(e, path, order)
			if err != nil {
				return nil, err
			}
			arr = append(arr, ev)
		}
		return arr, nil
	case []any:
		arr := make(denorm.Array, 0, len(t))
		for _, e := range t {
			ev, err := fromTOML(e, path, order)
			if err != nil {
				return nil, err
			}
			arr = append(arr, ev)
		}
		return arr, nil
	case map[string]any:
		keys := orderedKeys(t, order[pathKey(path)])
		obj := denorm.NewObject(len(keys))
		for _, k := range keys {
			ev, err := fromTOML(t[k], append(path[:len(path):len(path)], k), order)
			if err != nil {
				return nil, err
			}
			obj.Set(k, ev)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%T: %w", v, ErrUnsupported)
}

// formatTime prints TOML dates and times the way they were written: local
// values carry no offset.
func formatTime(t time.Time) string {
	switch t.Location().String() {
	case zoneLocalDate:
		return t.Format(time.DateOnly)
	case zoneLocalTime:
		return t.Format("15:04:05.999999999")
	case zoneLocalDatetime:
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}
