package manager

import (
	"context"
	"strconv"
	"time"
)

// NoData is written in place of a measurement the service did not report.
const NoData = "No Data"

type Weather interface {
	Current(ctx context.Context, city string) (Snapshot, bool)
	AirQuality(ctx context.Context, lat, lon float64) (AirQuality, bool)
}

type Presenter interface {
	Time(hhmm string) []string
	Icon(code string) string
	Weather(snapshot Snapshot, ok bool, city string) []string
	AirQuality(reading AirQuality, ok bool) []string
}

type Recorder interface {
	Append(record Record) error
}

type Snapshot struct {
	Icon        string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	Visibility  int
	WindSpeed   float64
	Clouds      int
	Rain        Rain
	Latitude    float64
	Longitude   float64
}

// Rain is the precipitation of the last hour. The service omits the field
// when it has not rained, which is kept apart from a measured zero.
type Rain struct {
	MM    float64
	Valid bool
}

func (r Rain) String() string {
	if !r.Valid {
		return NoData
	}
	return strconv.FormatFloat(r.MM, 'f', -1, 64)
}

type AirQuality struct {
	AQI        int
	Components Components
}

// Components are pollutant concentrations in μg/m³.
type Components struct {
	CO   float64
	NO   float64
	NO2  float64
	O3   float64
	SO2  float64
	PM25 float64
	PM10 float64
	NH3  float64
}

type Record struct {
	Time          time.Time
	Weather       Snapshot
	AirQuality    AirQuality
	HasAirQuality bool
}
