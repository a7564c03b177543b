package ui

import (
	"encoding/json"
	"html/template"
	"time"

	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/format"
	"github.com/runixer/evalboard/internal/i18n"
	"github.com/runixer/evalboard/internal/markdown"
)

// GetFuncMap returns the template helpers bound to a display timezone and a
// localizer. A nil localizer returns message keys unchanged.
func GetFuncMap(loc *time.Location, t i18n.Localizer) template.FuncMap {
	if t == nil {
		t = func(key string, _ ...interface{}) string { return key }
	}
	return template.FuncMap{
		"t": func(key string, args ...interface{}) string {
			return t(key, args...)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"formatNumber": format.FormatNumber,
		"formatScore":  format.FormatScore,
		"formatDateTime": func(v interface{}) string {
			switch ts := v.(type) {
			case time.Time:
				return format.FormatDateTime(ts, loc)
			case *time.Time:
				if ts == nil {
					return ""
				}
				return format.FormatDateTime(*ts, loc)
			case evaluator.Timestamp:
				return format.FormatDateTime(ts.Time, loc)
			default:
				return ""
			}
		},
		"truncate": format.Truncate,
		"markdown": markdown.MustHTML,
		// jsString safely encodes a string for use in JavaScript.
		// It wraps the string in JSON encoding which handles all escaping.
		"jsString": func(s string) template.JS {
			encoded, err := json.Marshal(s)
			if err != nil {
				return template.JS(`""`) //nolint:gosec // JSON encoding is safe
			}
			return template.JS(encoded) //nolint:gosec // JSON encoding is safe
		},
	}
}
