package incremental

import (
	"fmt"
	"maps"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

// NormalizeTemplate returns a copy of the request template with month and
// day fully enumerated: absence means "all months" / "all days of month".
// This keeps daily-granularity filtering well-defined even for sparsely
// configured templates.
func NormalizeTemplate(template map[string]any) map[string]any {
	out := maps.Clone(template)
	if out == nil {
		out = map[string]any{}
	}
	if len(stringList(out["month"])) == 0 {
		out["month"] = numberStrings(1, 12)
	}
	if len(stringList(out["day"])) == 0 {
		out["day"] = numberStrings(1, 31)
	}
	return out
}

// BuildRequest merges a normalized template with one unit's date fields.
// Discrete encoding sets explicit year/month/day list fields, with unset
// finer components keeping the template's full enumeration. Range encoding
// replaces them with a single inclusive "start/end" interval spanning
// exactly the unit.
func BuildRequest(template map[string]any, unit model.TimeUnit, encoding model.DateEncoding) map[string]any {
	request := maps.Clone(template)

	if encoding == model.DateEncodingRange {
		delete(request, "year")
		delete(request, "month")
		delete(request, "day")
		request["date"] = fmt.Sprintf("%s/%s",
			unit.Start().Format("2006-01-02"),
			unit.End().Format("2006-01-02"))
		return request
	}

	request["year"] = []int{unit.Year}
	if unit.Month != 0 {
		request["month"] = []string{fmt.Sprintf("%02d", unit.Month)}
	}
	if unit.Day != 0 {
		request["day"] = []string{fmt.Sprintf("%02d", unit.Day)}
	}
	return request
}

// TemplateMonths returns the template's month restriction as two-digit
// strings. Call after NormalizeTemplate so absence has already defaulted to
// the full set.
func TemplateMonths(template map[string]any) []string {
	return stringList(template["month"])
}

// TemplateDays returns the template's day-of-month restriction as two-digit
// strings.
func TemplateDays(template map[string]any) []string {
	return stringList(template["day"])
}

func numberStrings(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, fmt.Sprintf("%02d", n))
	}
	return out
}

// stringList coerces a template value into a list of two-digit strings.
// YAML hands us []any with string or int elements depending on how the
// config was written.
func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, formatComponent(item))
		}
		return out
	default:
		return []string{formatComponent(val)}
	}
}

func formatComponent(v any) string {
	if n, ok := v.(int); ok {
		return fmt.Sprintf("%02d", n)
	}
	return fmt.Sprintf("%v", v)
}
