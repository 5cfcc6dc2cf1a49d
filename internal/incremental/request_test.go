package incremental

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

func TestNormalizeTemplate_Defaults(t *testing.T) {
	template := map[string]any{"variable": []string{"2m_temperature"}}
	normalized := NormalizeTemplate(template)

	months, ok := normalized["month"].([]string)
	if !ok || len(months) != 12 {
		t.Fatalf("month = %v, want 12 two-digit values", normalized["month"])
	}
	if months[0] != "01" || months[11] != "12" {
		t.Errorf("month endpoints = %s..%s", months[0], months[11])
	}

	days, ok := normalized["day"].([]string)
	if !ok || len(days) != 31 {
		t.Fatalf("day = %v, want 31 two-digit values", normalized["day"])
	}
	if days[0] != "01" || days[30] != "31" {
		t.Errorf("day endpoints = %s..%s", days[0], days[30])
	}

	// the original template is not mutated
	if _, ok := template["month"]; ok {
		t.Error("NormalizeTemplate mutated its input")
	}
}

func TestNormalizeTemplate_KeepsConfiguredSets(t *testing.T) {
	template := map[string]any{
		"month": []any{"01", "02"},
		"day":   []any{"15"},
	}
	normalized := NormalizeTemplate(template)

	if got := TemplateMonths(normalized); !reflect.DeepEqual(got, []string{"01", "02"}) {
		t.Errorf("months = %v", got)
	}
	if got := TemplateDays(normalized); !reflect.DeepEqual(got, []string{"15"}) {
		t.Errorf("days = %v", got)
	}
}

func TestNormalizeTemplate_EmptyListsDefault(t *testing.T) {
	template := map[string]any{"month": []any{}, "day": []any{}}
	normalized := NormalizeTemplate(template)
	if len(TemplateMonths(normalized)) != 12 {
		t.Errorf("empty month list should default to all months")
	}
	if len(TemplateDays(normalized)) != 31 {
		t.Errorf("empty day list should default to all days")
	}
}

func TestNormalizeTemplate_CoercesIntComponents(t *testing.T) {
	template := map[string]any{"month": []any{1, 2}, "day": []any{5}}
	normalized := NormalizeTemplate(template)
	if got := TemplateMonths(normalized); !reflect.DeepEqual(got, []string{"01", "02"}) {
		t.Errorf("months = %v", got)
	}
	if got := TemplateDays(normalized); !reflect.DeepEqual(got, []string{"05"}) {
		t.Errorf("days = %v", got)
	}
}

func TestBuildRequest_DiscreteMonthly(t *testing.T) {
	template := NormalizeTemplate(map[string]any{"variable": []string{"ssrd"}})
	request := BuildRequest(template, model.Monthly(2024, 3), model.DateEncodingDiscrete)

	if !reflect.DeepEqual(request["year"], []int{2024}) {
		t.Errorf("year = %v", request["year"])
	}
	if !reflect.DeepEqual(request["month"], []string{"03"}) {
		t.Errorf("month = %v", request["month"])
	}

	// unset day falls back to the template's full enumeration
	days, ok := request["day"].([]string)
	if !ok || len(days) != 31 {
		t.Fatalf("day = %v, want 31 values", request["day"])
	}
	for i, d := range days {
		if want := fmt.Sprintf("%02d", i+1); d != want {
			t.Fatalf("day[%d] = %s, want %s", i, d, want)
		}
	}
}

func TestBuildRequest_DiscreteYearlyKeepsEnumerations(t *testing.T) {
	template := NormalizeTemplate(map[string]any{"variable": []string{"ssrd"}})
	request := BuildRequest(template, model.Yearly(2023), model.DateEncodingDiscrete)

	if !reflect.DeepEqual(request["year"], []int{2023}) {
		t.Errorf("year = %v", request["year"])
	}
	if len(request["month"].([]string)) != 12 {
		t.Errorf("month = %v, want all 12", request["month"])
	}
	if len(request["day"].([]string)) != 31 {
		t.Errorf("day = %v, want all 31", request["day"])
	}
}

func TestBuildRequest_DiscreteDaily(t *testing.T) {
	template := NormalizeTemplate(map[string]any{})
	request := BuildRequest(template, model.Daily(2024, 2, 9), model.DateEncodingDiscrete)

	if !reflect.DeepEqual(request["month"], []string{"02"}) {
		t.Errorf("month = %v", request["month"])
	}
	if !reflect.DeepEqual(request["day"], []string{"09"}) {
		t.Errorf("day = %v", request["day"])
	}
}

func TestBuildRequest_Range(t *testing.T) {
	tests := []struct {
		name string
		unit model.TimeUnit
		want string
	}{
		{name: "yearly", unit: model.Yearly(2023), want: "2023-01-01/2023-12-31"},
		{name: "monthly leap february", unit: model.Monthly(2024, 2), want: "2024-02-01/2024-02-29"},
		{name: "monthly non-leap february", unit: model.Monthly(2023, 2), want: "2023-02-01/2023-02-28"},
		{name: "daily", unit: model.Daily(2024, 7, 4), want: "2024-07-04/2024-07-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template := NormalizeTemplate(map[string]any{"variable": []string{"ghi"}})
			request := BuildRequest(template, tt.unit, model.DateEncodingRange)

			if request["date"] != tt.want {
				t.Errorf("date = %v, want %s", request["date"], tt.want)
			}
			for _, field := range []string{"year", "month", "day"} {
				if _, ok := request[field]; ok {
					t.Errorf("range request must not carry %s", field)
				}
			}
			if _, ok := request["variable"]; !ok {
				t.Error("template fields must survive the merge")
			}
		})
	}
}

func TestBuildRequest_DoesNotMutateTemplate(t *testing.T) {
	template := NormalizeTemplate(map[string]any{"variable": []string{"ssrd"}})
	_ = BuildRequest(template, model.Monthly(2024, 3), model.DateEncodingDiscrete)

	if months := TemplateMonths(template); len(months) != 12 {
		t.Errorf("template month mutated: %v", months)
	}
}
