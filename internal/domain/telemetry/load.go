package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadJSON reads a JSON array of {"ply": n, "elapsed_seconds": t} objects.
func LoadJSON(r io.Reader) (*Series, error) {
	var raw []map[string]json.Number
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	samples := make([]Sample, 0, len(raw))
	for i, obj := range raw {
		ply, ok1 := obj["ply"]
		elapsed, ok2 := obj["elapsed_seconds"]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: record %d missing ply or elapsed_seconds", ErrFormat, i)
		}
		p, err := ply.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: non-integer ply", ErrFormat, i)
		}
		e, err := elapsed.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: non-numeric elapsed_seconds", ErrFormat, i)
		}
		samples = append(samples, Sample{Ply: int(p), Elapsed: e})
	}
	return NewSeries(samples)
}

// LoadCSV reads rows of "ply,elapsed_seconds". A header row with those
// column names is accepted and skipped.
func LoadCSV(r io.Reader) (*Series, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	samples := make([]Sample, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: row %d has %d columns, want 2", ErrFormat, i+1, len(rec))
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "ply") {
			continue
		}
		ply, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad ply %q", ErrFormat, i+1, rec[0])
		}
		elapsed, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad elapsed_seconds %q", ErrFormat, i+1, rec[1])
		}
		samples = append(samples, Sample{Ply: ply, Elapsed: elapsed})
	}
	return NewSeries(samples)
}
