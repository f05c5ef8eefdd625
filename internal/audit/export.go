package audit

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{"ts", "request_id", "endpoint", "provider", "status", "duration_ms", "strategy", "error"}

// ExportJSONLToCSV converts line-delimited JSON audit logs into CSV.
func ExportJSONLToCSV(inputPath string, outputPath string) (int, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open input audit log: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output csv: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return rows, fmt.Errorf("parse audit line %d: %w", rows+1, err)
		}
		record := []string{
			ev.Timestamp, ev.RequestID, ev.Endpoint, ev.Provider, ev.Status,
			strconv.FormatInt(ev.DurationMS, 10), ev.Strategy, ev.Error,
		}
		if err := w.Write(record); err != nil {
			return rows, fmt.Errorf("write csv row: %w", err)
		}
		rows++
	}
	if err := s.Err(); err != nil {
		return rows, fmt.Errorf("scan audit log: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}
