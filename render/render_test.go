package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/manager"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		celsius float64
		want    Band
	}{
		{30, Hot},
		{25, Hot},
		{24.999, Moderate},
		{15, Moderate},
		{14.999, Cold},
		{-0.5, Cold},
		{-12, Cold},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.celsius), "Classify(%v)", tt.celsius)
	}
}

func TestBandString(t *testing.T) {
	assert.Equal(t, "hot", Hot.String())
	assert.Equal(t, "moderate", Moderate.String())
	assert.Equal(t, "cold", Cold.String())
}

func TestTime(t *testing.T) {
	f := New(false)

	assert.Equal(t, []string{
		" _   _       _   _  ",
		"l l l_l  .   _l l l ",
		"l_l  _l  .   _l l_l ",
	}, f.Time("09:30"))

	first := f.Time("09:30")
	second := f.Time("12:45")
	require.Len(t, first, 3)
	require.Len(t, second, 3)

	// Each glyph is three columns plus a separator; the colon is the third glyph.
	for _, rows := range [][]string{first, second} {
		for _, row := range rows {
			assert.Len(t, row, 5*4)
		}
		assert.Equal(t, "   ", rows[0][8:11])
		assert.Equal(t, " . ", rows[1][8:11])
		assert.Equal(t, " . ", rows[2][8:11])
	}
	assert.NotEqual(t, first[1][8:11], first[1][0:3])
	assert.Equal(t, "l l ", first[1][0:4])
	assert.Equal(t, "  l ", second[1][0:4])
}

func TestTimeColors(t *testing.T) {
	rows := New(true).Time("00:00")
	for _, row := range rows {
		assert.True(t, strings.HasPrefix(row, bold+green))
		assert.True(t, strings.HasSuffix(row, reset))
	}
}

func TestIcon(t *testing.T) {
	f := New(false)
	assert.Equal(t, "☀️", f.Icon("01d"))
	assert.Equal(t, "🌙", f.Icon("01n"))
	assert.Equal(t, unknownIcon, f.Icon("99x"))
	assert.Equal(t, unknownIcon, f.Icon(""))
}

func TestWeather(t *testing.T) {
	f := New(false)
	snapshot := manager.Snapshot{
		Icon:        "10d",
		Temperature: 18.4,
		FeelsLike:   25,
		Humidity:    71,
		Pressure:    1012,
		Visibility:  10000,
		WindSpeed:   4.12,
		Clouds:      75,
		Rain:        manager.Rain{MM: 0.25, Valid: true},
	}

	assert.Equal(t, []string{
		"",
		"Current temperature in Berlin: 18.4°C (Feels like: 25°C)",
		"Humidity: 71%",
		"Pressure: 1012 hPa",
		"Visibility: 10000 meters",
		"Wind speed: 4.12 m/s",
		"Clouds: 75%",
		"Rain (last 1 hour): 0.25 mm",
	}, f.Weather(snapshot, true, "Berlin"))

	snapshot.Rain = manager.Rain{}
	lines := f.Weather(snapshot, true, "Berlin")
	assert.Equal(t, "Rain (last 1 hour): No Data", lines[len(lines)-1])
}

func TestWeatherColorsEachTemperature(t *testing.T) {
	lines := New(true).Weather(manager.Snapshot{Temperature: 25, FeelsLike: 14.999}, true, "Oslo")
	assert.Contains(t, lines[1], red+"25°C"+reset)
	assert.Contains(t, lines[1], blue+"14.999°C"+reset)
}

func TestWeatherAbsent(t *testing.T) {
	assert.Equal(t, []string{"Could not retrieve weather data."}, New(false).Weather(manager.Snapshot{}, false, "Berlin"))
}

func TestAirQuality(t *testing.T) {
	lines := New(false).AirQuality(manager.AirQuality{
		AQI: 2,
		Components: manager.Components{
			CO: 201.94, NO: 0.02, NO2: 0.77, O3: 68.66, SO2: 0.64, PM25: 0.5, PM10: 0.54, NH3: 0.12,
		},
	}, true)

	assert.Equal(t, []string{
		"",
		"Air Quality Index (AQI): 2 (Fair)",
		"CO:    201.94 μg/m³",
		"NO:    0.02 μg/m³",
		"NO2:   0.77 μg/m³",
		"O3:    68.66 μg/m³",
		"SO2:   0.64 μg/m³",
		"PM2.5: 0.5 μg/m³",
		"PM10:  0.54 μg/m³",
		"NH3:   0.12 μg/m³",
	}, lines)
}

func TestAirQualityUnknownIndex(t *testing.T) {
	lines := New(false).AirQuality(manager.AirQuality{AQI: 9}, true)
	assert.Equal(t, "Air Quality Index (AQI): 9 (Unknown)", lines[1])
}

func TestAirQualityAbsent(t *testing.T) {
	assert.Equal(t, []string{"Could not retrieve air quality data."}, New(false).AirQuality(manager.AirQuality{}, false))
}

func TestFormatterIsPresenter(t *testing.T) {
	var _ manager.Presenter = New(false)
}
