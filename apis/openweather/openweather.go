package openweather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherdash/manager"
)

const (
	apiName = "api.openweathermap.org"

	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	RequestTimeout = 10 * time.Second
)

var errNoReadings = errors.New("no air quality readings")

func New(apiKey, baseURL string) *openWeather {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &openWeather{
		apiKey: apiKey,
		client: resty.New().SetBaseURL(baseURL).SetTimeout(RequestTimeout),
	}
}

type openWeather struct {
	apiKey string
	client *resty.Client
}

// Current returns the current conditions for city. Failures are logged and
// reported as a missing snapshot.
func (o openWeather) Current(ctx context.Context, city string) (manager.Snapshot, bool) {
	params := map[string]string{
		"q":     city,
		"units": "metric",
		"appid": o.apiKey,
	}

	var c current
	if err := o.processRequest(ctx, "/weather", params, &c); err != nil {
		slog.Error("failed to fetch weather data", "api", apiName, "city", city, "err", err)
		return manager.Snapshot{}, false
	}

	return c.snapshot(), true
}

// AirQuality returns the air pollution reading at the given coordinates.
// The index and the components are either both returned or neither.
func (o openWeather) AirQuality(ctx context.Context, lat, lon float64) (manager.AirQuality, bool) {
	params := map[string]string{
		"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
		"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
		"appid": o.apiKey,
	}

	var p pollution
	err := o.processRequest(ctx, "/air_pollution", params, &p)
	if err == nil && len(p.List) == 0 {
		err = errNoReadings
	}
	if err != nil {
		slog.Error("failed to fetch air quality data", "api", apiName, "lat", lat, "lon", lon, "err", err)
		return manager.AirQuality{}, false
	}

	return p.reading(), true
}

func (o openWeather) processRequest(ctx context.Context, path string, params map[string]string, out any) error {
	request := o.client.R().SetContext(ctx)
	request.SetQueryParams(params)

	response, err := request.Get(path)
	if err != nil {
		return redact(path, err)
	}

	if response.StatusCode() != http.StatusOK {
		buf := &bytes.Buffer{}

		if err = json.Indent(buf, response.Body(), "", "  "); err != nil {
			buf.Reset()
			buf.Write(response.Body())
		}

		return fmt.Errorf("status code: %d\n%s", response.StatusCode(), buf.String())
	}

	if err = json.Unmarshal(response.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

// redact drops the request URL from transport errors, its query carries the
// API key.
func redact(path string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, path, urlErr.Err)
	}
	return err
}

type current struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Icon string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	// Only present when it has rained.
	Rain *struct {
		OneHour *float64 `json:"1h"`
	} `json:"rain"`
}

func (c current) snapshot() manager.Snapshot {
	s := manager.Snapshot{
		Temperature: c.Main.Temp,
		FeelsLike:   c.Main.FeelsLike,
		Humidity:    c.Main.Humidity,
		Pressure:    c.Main.Pressure,
		Visibility:  c.Visibility,
		WindSpeed:   c.Wind.Speed,
		Clouds:      c.Clouds.All,
		Latitude:    c.Coord.Lat,
		Longitude:   c.Coord.Lon,
	}
	if len(c.Weather) > 0 {
		s.Icon = c.Weather[0].Icon
	}
	if c.Rain != nil && c.Rain.OneHour != nil {
		s.Rain = manager.Rain{MM: *c.Rain.OneHour, Valid: true}
	}
	return s
}

type pollution struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			CO   float64 `json:"co"`
			NO   float64 `json:"no"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
			SO2  float64 `json:"so2"`
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			NH3  float64 `json:"nh3"`
		} `json:"components"`
	} `json:"list"`
}

func (p pollution) reading() manager.AirQuality {
	first := p.List[0]
	return manager.AirQuality{
		AQI: first.Main.AQI,
		Components: manager.Components{
			CO:   first.Components.CO,
			NO:   first.Components.NO,
			NO2:  first.Components.NO2,
			O3:   first.Components.O3,
			SO2:  first.Components.SO2,
			PM25: first.Components.PM25,
			PM10: first.Components.PM10,
			NH3:  first.Components.NH3,
		},
	}
}
