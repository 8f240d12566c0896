// Package marketdata loads price series from local files or generates them offline.
package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

var dateLayouts = []string{time.DateOnly, "2006/01/02", "01/02/2006", time.RFC3339, time.DateTime}

// LoadCSV reads a date/open/high/low/close[/adj close]/volume file.
func LoadCSV(path string) (signal.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer file.Close()

	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses bars from r. Columns are matched by header name, case-insensitively; the
// result is sorted ascending and validated.
func ReadCSV(r io.Reader) (signal.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	for _, required := range []string{"date", "open", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var bars signal.PriceSeries
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch key {
		case "adj close", "adj_close", "adjclose", "adjusted close":
			key = "adj close"
		case "timestamp", "datetime", "time":
			key = "date"
		}
		cols[key] = i
	}
	return cols
}

func parseBar(record []string, cols map[string]int) (signal.Bar, error) {
	var bar signal.Bar
	raw := field(record, cols, "date")
	if raw == "" {
		return bar, fmt.Errorf("empty date")
	}
	ts, err := parseTime(raw)
	if err != nil {
		return bar, err
	}
	bar.Time = ts

	targets := []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"open", &bar.Open, true}, {"high", &bar.High, false}, {"low", &bar.Low, false},
		{"close", &bar.Close, true}, {"adj close", &bar.AdjClose, false}, {"volume", &bar.Volume, false},
	}
	for _, tg := range targets {
		raw := field(record, cols, tg.name)
		if raw == "" {
			if tg.required {
				return bar, fmt.Errorf("empty %s", tg.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, fmt.Errorf("%s: %w", tg.name, err)
		}
		*tg.dst = v
	}
	return bar, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// Between returns the bars with from <= time <= to; a zero bound is open.
func Between(bars signal.PriceSeries, from, to time.Time) signal.PriceSeries {
	var out signal.PriceSeries
	for _, b := range bars {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
