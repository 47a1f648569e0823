package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// RefreshInterval is how often the clock on screen is redrawn.
	RefreshInterval = time.Minute
	// PersistInterval is the minimum time between two saved snapshots.
	PersistInterval = time.Hour

	clearScreen = "\033[H\033[2J"
)

func New(weather Weather, presenter Presenter, out io.Writer, city string) *Dashboard {
	return &Dashboard{
		weather:      weather,
		presenter:    presenter,
		out:          out,
		city:         city,
		pollInterval: RefreshInterval,
		now:          time.Now,
		sleep:        sleep,
		lastPersist:  time.Now(),
	}
}

type Dashboard struct {
	weather   Weather
	presenter Presenter
	recorder  Recorder
	out       io.Writer
	city      string
	redraw    bool

	pollInterval time.Duration
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error

	lastPersist time.Time
	lastPoll    time.Time

	snapshot      Snapshot
	hasSnapshot   bool
	airQuality    AirQuality
	hasAirQuality bool
}

// SetRecorder enables hourly snapshot persistence. A nil recorder disables it.
func (d *Dashboard) SetRecorder(recorder Recorder) {
	d.recorder = recorder
}

// SetClock replaces the time source and the sleep function. The last persist
// time restarts from the new clock.
func (d *Dashboard) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	d.now = now
	d.sleep = sleep
	d.lastPersist = now()
}

// SetPollInterval sets how often the weather service is asked. The service
// is only asked on a redraw, so intervals below RefreshInterval are raised to
// it.
func (d *Dashboard) SetPollInterval(interval time.Duration) {
	d.pollInterval = max(interval, RefreshInterval)
}

func (d *Dashboard) SetClearScreen(enabled bool) {
	d.redraw = enabled
}

func (d *Dashboard) SetLastPersist(t time.Time) {
	d.lastPersist = t
}

func (d *Dashboard) LastPersist() time.Time {
	return d.lastPersist
}

// PersistDue reports whether at least PersistInterval has elapsed since the
// last successful append.
func (d *Dashboard) PersistDue(now time.Time) bool {
	return now.Sub(d.lastPersist) >= PersistInterval
}

// Run draws the dashboard every RefreshInterval until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	slog.Info("dashboard starting", "city", d.city, "poll_interval", d.pollInterval)

	for {
		d.Cycle(ctx)

		if err := d.sleep(ctx, RefreshInterval); err != nil {
			return err
		}
	}
}

// Cycle draws the dashboard once, polling the service when the poll
// interval has elapsed and saving a snapshot when one is due.
func (d *Dashboard) Cycle(ctx context.Context) {
	now := d.now()

	if d.redraw {
		fmt.Fprint(d.out, clearScreen)
	}

	for _, row := range d.presenter.Time(now.Format("15:04")) {
		fmt.Fprintln(d.out, row)
	}

	polled := d.pollDue(now)
	if polled {
		d.poll(ctx, now)
	}

	if d.hasSnapshot {
		fmt.Fprintf(d.out, "\nWeather: %s\n", d.presenter.Icon(d.snapshot.Icon))
	}
	d.printLines(d.presenter.Weather(d.snapshot, d.hasSnapshot, d.city))
	if d.hasSnapshot {
		d.printLines(d.presenter.AirQuality(d.airQuality, d.hasAirQuality))
	}

	if polled && d.hasSnapshot {
		d.persist(now)
	}
}

func (d *Dashboard) pollDue(now time.Time) bool {
	return d.lastPoll.IsZero() || now.Sub(d.lastPoll) >= d.pollInterval
}

func (d *Dashboard) poll(ctx context.Context, now time.Time) {
	d.lastPoll = now

	d.snapshot, d.hasSnapshot = d.weather.Current(ctx, d.city)
	if !d.hasSnapshot {
		d.airQuality, d.hasAirQuality = AirQuality{}, false
		slog.Debug("no weather snapshot this cycle", "city", d.city)
		return
	}

	d.airQuality, d.hasAirQuality = d.weather.AirQuality(ctx, d.snapshot.Latitude, d.snapshot.Longitude)
}

func (d *Dashboard) persist(now time.Time) {
	if d.recorder == nil || !d.PersistDue(now) {
		return
	}

	record := Record{
		Time:          now,
		Weather:       d.snapshot,
		AirQuality:    d.airQuality,
		HasAirQuality: d.hasAirQuality,
	}
	if err := d.recorder.Append(record); err != nil {
		slog.Error("failed to save weather snapshot", "err", err)
		return
	}

	d.lastPersist = now
	slog.Info("weather snapshot saved", "city", d.city, "time", now.Format(time.DateTime))
}

func (d *Dashboard) printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(d.out, line)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
