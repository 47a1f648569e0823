// Package store keeps hourly weather snapshots in one CSV file per location.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"weatherdash/manager"
)

// TimeFormat is the layout of the Time column.
const TimeFormat = time.DateTime

var header = []string{
	"Time", "Temperature", "Feels Like", "Humidity", "Pressure", "Visibility",
	"Wind Speed", "Clouds", "Rain", "AQI", "CO", "NO", "NO2", "O3", "SO2",
	"PM2.5", "PM10", "NH3",
}

var keyReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// NormalizeLocation turns a city name into the key used in file names:
// lower case, spaces and path separators replaced by underscores.
func NormalizeLocation(city string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSpace(city)))
}

// Path returns the record file for a location key inside dir.
func Path(dir, key string) string {
	return filepath.Join(dir, key+"_weather_data.csv")
}

type File struct {
	path string
}

// EnsureInitialized creates dir and the record file for key. The header is
// only written when the file does not exist yet, so existing records
// survive restarts.
func EnsureInitialized(dir, key string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := Path(dir, key)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return &File{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	// A file without its header would be taken as initialized on the next
	// start, so it must not survive a failed write.
	err = writeHeader(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	slog.Info("created weather record file", "path", path)
	return &File{path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

// Append writes one row for record at the end of the file.
func (f *File) Append(record manager.Record) error {
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open record file: %w", err)
	}

	if err := writeRow(file, row(record)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	return file.Close()
}

var writeHeader = func(w io.Writer) error {
	return writeRow(w, header)
}

func writeRow(out io.Writer, fields []string) error {
	w := csv.NewWriter(out)
	if err := w.Write(fields); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func row(r manager.Record) []string {
	s := r.Weather
	fields := []string{
		r.Time.Format(TimeFormat),
		formatFloat(s.Temperature),
		formatFloat(s.FeelsLike),
		strconv.Itoa(s.Humidity),
		strconv.Itoa(s.Pressure),
		strconv.Itoa(s.Visibility),
		formatFloat(s.WindSpeed),
		strconv.Itoa(s.Clouds),
		s.Rain.String(),
	}

	if !r.HasAirQuality {
		return append(fields, "", "", "", "", "", "", "", "", "")
	}

	c := r.AirQuality.Components
	return append(fields,
		strconv.Itoa(r.AirQuality.AQI),
		formatFloat(c.CO),
		formatFloat(c.NO),
		formatFloat(c.NO2),
		formatFloat(c.O3),
		formatFloat(c.SO2),
		formatFloat(c.PM25),
		formatFloat(c.PM10),
		formatFloat(c.NH3),
	)
}

// ReadAll parses a record file written by File. Times are read in the
// local time zone, the zone they were written in.
func ReadAll(path string) ([]manager.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record file %s has no header", path)
	}

	records := make([]manager.Record, 0, len(rows)-1)
	for i, fields := range rows[1:] {
		record, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(fields []string) (manager.Record, error) {
	p := parser{fields: fields}

	var r manager.Record
	r.Time = p.parseTime(0)
	r.Weather = manager.Snapshot{
		Temperature: p.parseFloat(1),
		FeelsLike:   p.parseFloat(2),
		Humidity:    p.parseInt(3),
		Pressure:    p.parseInt(4),
		Visibility:  p.parseInt(5),
		WindSpeed:   p.parseFloat(6),
		Clouds:      p.parseInt(7),
	}
	if fields[8] != manager.NoData {
		r.Weather.Rain = manager.Rain{MM: p.parseFloat(8), Valid: true}
	}

	if fields[9] != "" {
		r.HasAirQuality = true
		r.AirQuality = manager.AirQuality{
			AQI: p.parseInt(9),
			Components: manager.Components{
				CO:   p.parseFloat(10),
				NO:   p.parseFloat(11),
				NO2:  p.parseFloat(12),
				O3:   p.parseFloat(13),
				SO2:  p.parseFloat(14),
				PM25: p.parseFloat(15),
				PM10: p.parseFloat(16),
				NH3:  p.parseFloat(17),
			},
		}
	}

	return r, p.err
}

// parser keeps the first conversion error of a row.
type parser struct {
	fields []string
	err    error
}

func (p *parser) parseTime(i int) time.Time {
	t, err := time.ParseInLocation(TimeFormat, p.fields[i], time.Local)
	p.fail(i, err)
	return t
}

func (p *parser) parseFloat(i int) float64 {
	v, err := strconv.ParseFloat(p.fields[i], 64)
	p.fail(i, err)
	return v
}

func (p *parser) parseInt(i int) int {
	v, err := strconv.Atoi(p.fields[i])
	p.fail(i, err)
	return v
}

func (p *parser) fail(i int, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", header[i], err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
