package model

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// SiteResult is one row of a hazard result file: a site and its
// exceedance probabilities at the model's declared amplitude levels.
type SiteResult struct {
	Name   string
	Lon    float64
	Lat    float64
	Values []float64
}

// WriteResults writes site results as CSV: a header line followed by
// one `<name>,<lon>,<lat>,v1;v2;…;vN` row per site, with no spaces
// around the commas.
func WriteResults(w io.Writer, results []SiteResult) error {
	if _, err := fmt.Fprintln(w, "name,lon,lat,values"); err != nil {
		return err
	}
	for _, r := range results {
		vals := make([]string, len(r.Values))
		for i, v := range r.Values {
			vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		_, err := fmt.Fprintf(w, "%s,%g,%g,%s\n", r.Name, r.Lon, r.Lat, strings.Join(vals, ";"))
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseResults reads a result file, pairing rows by site name.
func ParseResults(r io.Reader) (map[string][]float64, error) {
	scanner := bufio.NewScanner(r)
	out := make(map[string][]float64)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line == 1 || text == "" {
			continue // header
		}
		fields := strings.SplitN(text, ",", 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("results line %d: want 4 fields, got %d", line, len(fields))
		}
		raw := strings.Split(fields[3], ";")
		values := make([]float64, len(raw))
		for i, s := range raw {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("results line %d: %w", line, err)
			}
			values[i] = v
		}
		out[strings.TrimSpace(fields[0])] = values
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Match reports whether actual agrees with expected within the relative
// tolerance, or is bitwise equal.
func Match(expected, actual, tolerance float64) bool {
	if math.Float64bits(expected) == math.Float64bits(actual) {
		return true
	}
	return math.Abs(actual-expected)/expected < tolerance
}
