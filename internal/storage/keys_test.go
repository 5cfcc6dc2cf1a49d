package storage

import (
	"testing"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

func TestObjectKey_Key(t *testing.T) {
	tests := []struct {
		name string
		key  ObjectKey
		want string
	}{
		{
			name: "yearly",
			key:  ObjectKey{Dataset: "reanalysis-era5-land", Unit: model.Yearly(2023), Extension: "grib"},
			want: "reanalysis-era5-land/2023.grib",
		},
		{
			name: "monthly",
			key:  ObjectKey{Dataset: "cams-solar-radiation-timeseries", Unit: model.Monthly(2025, 1), Extension: "csv"},
			want: "cams-solar-radiation-timeseries/2025/01.csv",
		},
		{
			name: "daily",
			key:  ObjectKey{Dataset: "reanalysis-era5-land", Unit: model.Daily(2024, 3, 5), Extension: "grib"},
			want: "reanalysis-era5-land/2024/03/05.grib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Key(); got != tt.want {
				t.Errorf("Key() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestObjectKey_Sidecar(t *testing.T) {
	key := ObjectKey{Dataset: "reanalysis-era5-land", Unit: model.Monthly(2024, 11), Extension: "grib"}
	want := "reanalysis-era5-land/2024/11.grib.json"
	if got := key.Sidecar(); got != want {
		t.Errorf("Sidecar() = %s, want %s", got, want)
	}
}
