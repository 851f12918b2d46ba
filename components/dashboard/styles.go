package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ettle/strcase"
)

// Top-level StyleSpec keys.
const (
	StyleTable  = "style_table"
	StyleCell   = "style_cell"
	StyleHeader = "style_header"
)

// StyleSpec is a nested style mapping: table, cell, and header properties.
type StyleSpec map[string]any

var defaultStyles = StyleSpec{
	StyleTable: map[string]any{
		"overflowX": "auto",
	},
	StyleCell: map[string]any{
		"textAlign":  "left",
		"padding":    "8px",
		"minWidth":   "100px",
		"width":      "150px",
		"maxWidth":   "300px",
		"whiteSpace": "normal",
		"fontFamily": "Arial, sans-serif",
		"fontSize":   "14px",
	},
	StyleHeader: map[string]any{
		"backgroundColor": "#f2f2f2",
		"fontWeight":      "bold",
		"color":           "#333333",
	},
}

// DefaultStyles returns a fresh copy of the default table styles.
func DefaultStyles() StyleSpec {
	return defaultStyles.Clone()
}

// TableStyles returns the default styles merged with overrides. The shared
// defaults are never modified.
func TableStyles(overrides StyleSpec) StyleSpec {
	return MergeStyles(defaultStyles, overrides)
}

// MergeStyles merges overrides into a copy of base. When both values for a key
// are mappings they are unioned one level deep with override values winning;
// any other override value replaces the base value for that key.
func MergeStyles(base, overrides StyleSpec) StyleSpec {
	out := base.Clone()
	for key, value := range overrides {
		baseMap, baseIsMap := asStyleMap(out[key])
		overrideMap, overrideIsMap := asStyleMap(value)
		if !baseIsMap || !overrideIsMap {
			out[key] = cloneStyleValue(value)
			continue
		}
		merged := make(map[string]any, len(baseMap)+len(overrideMap))
		for k, v := range baseMap {
			merged[k] = v
		}
		for k, v := range overrideMap {
			merged[k] = v
		}
		out[key] = merged
	}
	return out
}

// Clone copies every mapping level that a merge could touch.
func (s StyleSpec) Clone() StyleSpec {
	if s == nil {
		return StyleSpec{}
	}
	out := make(StyleSpec, len(s))
	for key, value := range s {
		out[key] = cloneStyleValue(value)
	}
	return out
}

// Properties returns the flat property mapping stored under key.
func (s StyleSpec) Properties(key string) map[string]any {
	props, _ := asStyleMap(s[key])
	return props
}

// CSS renders the properties stored under key as an inline style string.
// Property names are converted from camelCase to kebab-case.
func (s StyleSpec) CSS(key string) string {
	props := s.Properties(key)
	if len(props) == 0 {
		return ""
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	var builder strings.Builder
	for _, name := range names {
		value := fmt.Sprint(props[name])
		if value == "" {
			continue
		}
		builder.WriteString(cssProperty(name))
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func cssProperty(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") || strings.Contains(name, "-") {
		return name
	}
	return strcase.ToKebab(name)
}

func asStyleMap(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case StyleSpec:
		return map[string]any(val), true
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneStyleValue(v any) any {
	m, ok := asStyleMap(v)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = cloneStyleValue(item)
	}
	return out
}
