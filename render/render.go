// Package render turns weather readings into terminal lines.
package render

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"

	"weatherdash/manager"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
)

const unknownIcon = "❓"

var digits = map[rune][3]string{
	'0': {" _ ", "l l", "l_l"},
	'1': {"   ", "  l", "  l"},
	'2': {" _ ", " _l", "l_ "},
	'3': {" _ ", " _l", " _l"},
	'4': {"   ", "l_l", "  l"},
	'5': {" _ ", "l_ ", " _l"},
	'6': {" _ ", "l_ ", "l_l"},
	'7': {" _ ", "  l", "  l"},
	'8': {" _ ", "l_l", "l_l"},
	'9': {" _ ", "l_l", " _l"},
}

var colon = [3]string{"   ", " . ", " . "}

// OpenWeatherMap icon codes, day and night variants.
var icons = map[string]string{
	"01d": "☀️",
	"01n": "🌙",
	"02d": "⛅",
	"02n": "🌑",
	"03d": "☁️",
	"03n": "☁️",
	"04d": "☁️",
	"04n": "☁️",
	"09d": "🌧️",
	"09n": "🌧️",
	"10d": "🌦️",
	"10n": "🌧️",
	"11d": "⛈️",
	"11n": "⛈️",
	"13d": "❄️",
	"13n": "❄️",
	"50d": "🌫️",
	"50n": "🌫️",
}

var aqiDescriptions = map[int]string{
	1: "(Good)",
	2: "(Fair)",
	3: "(Moderate)",
	4: "(Poor)",
	5: "(Very Poor)",
}

type Band int

const (
	Cold Band = iota
	Moderate
	Hot
)

func (b Band) String() string {
	switch b {
	case Hot:
		return "hot"
	case Moderate:
		return "moderate"
	default:
		return "cold"
	}
}

func (b Band) color() string {
	switch b {
	case Hot:
		return red
	case Moderate:
		return yellow
	default:
		return blue
	}
}

// Classify places a temperature in °C into its display band. 25 and above
// is hot, 15 up to 25 is moderate.
func Classify(celsius float64) Band {
	switch {
	case celsius >= 25:
		return Hot
	case celsius >= 15:
		return Moderate
	default:
		return Cold
	}
}

func New(colors bool) *Formatter {
	return &Formatter{colors: colors}
}

// Formatter implements manager.Presenter.
type Formatter struct {
	colors bool
}

// Time renders an "HH:MM" string as three rows of block digits. Characters
// other than digits and ':' are skipped.
func (f *Formatter) Time(hhmm string) []string {
	var rows [3]string
	for _, r := range hhmm {
		glyph, ok := digits[r]
		if r == ':' {
			glyph, ok = colon, true
		}
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] += glyph[i] + " "
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = f.paint(bold+green, row)
	}
	return out
}

func (f *Formatter) Icon(code string) string {
	if icon, ok := icons[code]; ok {
		return icon
	}
	return unknownIcon
}

func (f *Formatter) Weather(s manager.Snapshot, ok bool, city string) []string {
	if !ok {
		return []string{"Could not retrieve weather data."}
	}

	rain := s.Rain.String()
	if s.Rain.Valid {
		rain += " mm"
	}

	return []string{
		"",
		fmt.Sprintf("Current temperature in %s: %s (Feels like: %s)",
			city, f.temperature(s.Temperature), f.temperature(s.FeelsLike)),
		fmt.Sprintf("Humidity: %d%%", s.Humidity),
		fmt.Sprintf("Pressure: %d hPa", s.Pressure),
		fmt.Sprintf("Visibility: %d meters", s.Visibility),
		fmt.Sprintf("Wind speed: %s m/s", number(s.WindSpeed)),
		fmt.Sprintf("Clouds: %d%%", s.Clouds),
		fmt.Sprintf("Rain (last 1 hour): %s", rain),
	}
}

func (f *Formatter) AirQuality(aq manager.AirQuality, ok bool) []string {
	if !ok {
		return []string{"Could not retrieve air quality data."}
	}

	description, known := aqiDescriptions[aq.AQI]
	if !known {
		description = "(Unknown)"
	}

	c := aq.Components
	components := []struct {
		label string
		value float64
	}{
		{"CO", c.CO},
		{"NO", c.NO},
		{"NO2", c.NO2},
		{"O3", c.O3},
		{"SO2", c.SO2},
		{"PM2.5", c.PM25},
		{"PM10", c.PM10},
		{"NH3", c.NH3},
	}

	width := 0
	for _, component := range components {
		width = max(width, runewidth.StringWidth(component.label)+1)
	}

	lines := []string{"", fmt.Sprintf("Air Quality Index (AQI): %d %s", aq.AQI, description)}
	for _, component := range components {
		label := runewidth.FillRight(component.label+":", width)
		lines = append(lines, fmt.Sprintf("%s %s μg/m³", label, number(component.value)))
	}
	return lines
}

func (f *Formatter) temperature(celsius float64) string {
	return f.paint(Classify(celsius).color(), number(celsius)+"°C")
}

func (f *Formatter) paint(code, s string) string {
	if !f.colors {
		return s
	}
	return code + s + reset
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
