package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

func TestExcludedCategories(t *testing.T) {
	tests := []struct {
		name    string
		include models.CategorySet
		want    []string
	}{
		{
			name:    "current only",
			include: models.NewCategorySet(models.WeatherCurrent),
			want:    []string{"alerts", "daily", "hourly", "minutely"},
		},
		{
			name:    "all three requestable",
			include: models.NewCategorySet(models.WeatherCurrent, models.WeatherHourly, models.WeatherDaily),
			want:    []string{"alerts", "minutely"},
		},
		{
			name:    "minutely in the inclusion set is still excluded",
			include: models.NewCategorySet(models.WeatherDaily, models.WeatherMinutely),
			want:    []string{"alerts", "current", "hourly", "minutely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := excludedCategories(tt.include)
			sort.Strings(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForecastRequestAndShaping(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"current": map[string]any{
				"dt": 1756700000, "temp": 84.2, "wind_speed": 7.1,
				"dew_point": 66.0, "humidity": 55, "uvi": 6.2,
				"pressure": 1014, "clouds": 20,
			},
			"daily": []map[string]any{
				{
					"dt": 1756728000, "temp": map[string]any{"min": 61.0, "max": 88.0},
					"wind_speed": 9.4, "humidity": 48, "uvi": 7.0, "moon_phase": 0.4,
				},
			},
		})
	}))
	defer server.Close()

	svc := NewService(server.URL, "test-key", "imperial", arbor.NewLogger())

	include := models.NewCategorySet(models.WeatherCurrent, models.WeatherDaily)
	snapshot, err := svc.Forecast(context.Background(), 38.54, -121.74, include)
	require.NoError(t, err)

	t.Run("request parameters", func(t *testing.T) {
		assert.Equal(t, "38.54", gotQuery["lat"])
		assert.Equal(t, "-121.74", gotQuery["lon"])
		assert.Equal(t, "test-key", gotQuery["appid"])
		assert.Equal(t, "imperial", gotQuery["units"])

		excluded := strings.Split(gotQuery["exclude"], ",")
		sort.Strings(excluded)
		assert.Equal(t, []string{"alerts", "hourly", "minutely"}, excluded)
	})

	t.Run("current keeps only prompt metrics", func(t *testing.T) {
		require.NotNil(t, snapshot.Current)
		assert.Equal(t, 84.2, snapshot.Current["temp"])
		assert.NotContains(t, snapshot.Current, "pressure")
		assert.NotContains(t, snapshot.Current, "clouds")
		assert.NotContains(t, snapshot.Current, "dt")
	})

	t.Run("daily gains calendar date", func(t *testing.T) {
		require.Len(t, snapshot.Daily, 1)
		assert.Equal(t, "2025-09-01", snapshot.Daily[0].Date)
		assert.Contains(t, snapshot.Daily[0].Metrics, "temp")
		assert.NotContains(t, snapshot.Daily[0].Metrics, "moon_phase")
	})

	t.Run("absent category stays absent", func(t *testing.T) {
		assert.Nil(t, snapshot.Hourly)
	})
}

func TestForecastEmptyInclusionSkipsCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewService(server.URL, "key", "imperial", arbor.NewLogger())
	snapshot, err := svc.Forecast(context.Background(), 0, 0, models.NewCategorySet())
	require.NoError(t, err)
	assert.True(t, snapshot.Empty())
	assert.False(t, called)
}

func TestShapeMetricsIdempotent(t *testing.T) {
	raw := map[string]any{
		"temp": 72.5, "wind_speed": 4.2, "humidity": 60, "pressure": 1012, "dt": 1756700000,
	}

	once := shapeMetrics(raw)
	twice := shapeMetrics(once)
	assert.Equal(t, once, twice)
}
