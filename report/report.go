// Package report holds the per-file record model and the output surfaces:
// a plain-text table for the terminal and CSV/NDJSON report files.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileRecord is the classification result for one scanned file. Records
// are immutable once built and held in scan order for the run.
type FileRecord struct {
	Path         string   `json:"path"`
	RecipientUID string   `json:"recipient_uid,omitempty"`
	Recipients   []string `json:"recipients,omitempty"`
	IsEncrypted  bool     `json:"is_encrypted"`

	// Detail fields, populated only when detail collection is enabled.
	Size         int64             `json:"size,omitempty"`
	ModTime      string            `json:"mod_time,omitempty"`
	CreationTime string            `json:"creation_time,omitempty"`
	AccessTime   string            `json:"access_time,omitempty"`
	ChangeTime   string            `json:"change_time,omitempty"`
	MimeType     string            `json:"mime_type,omitempty"`
	Hashes       map[string]string `json:"hashes,omitempty"`
}

type Metrics struct {
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	TotalFiles     int    `json:"total_files"`
	FilesEncrypted int    `json:"files_encrypted"`
}

var columns = []string{"File Path", "Recipient UID", "Is Encrypted"}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func recordRow(rec FileRecord) []string {
	return []string{rec.Path, rec.RecipientUID, boolText(rec.IsEncrypted)}
}

// Render produces the terminal table: fixed-width left-aligned columns
// with three-space gutters, one row per record in record order.
func Render(records []FileRecord) string {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := recordRow(rec)
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	writeRow := func(row []string) {
		line := fmt.Sprintf("%-*s   %-*s   %-*s",
			widths[0], row[0], widths[1], row[1], widths[2], row[2])
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	writeRow(columns)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// createOutFile opens the report target. Without clobber permission an
// existing target is a hard error; the O_EXCL check makes it atomic.
func createOutFile(path string, allowClobber bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !allowClobber {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return f, nil
}

// WriteCSV persists the records as a UTF-8 CSV report with a header row.
func WriteCSV(records []FileRecord, path string, allowClobber bool) error {
	f, err := createOutFile(path, allowClobber)
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(f)
	w := csv.NewWriter(buf)
	if err := w.Write(columns); err != nil {
		f.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(recordRow(rec)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return err
	}
	_ = f.Sync()
	return f.Close()
}

type ndjsonRecord struct {
	RecordType string `json:"record_type"`
	FileRecord
}

type ndjsonMetrics struct {
	RecordType string `json:"record_type"`
	Metrics
}

// WriteNDJSON persists one JSON object per record followed by a trailing
// metrics record.
func WriteNDJSON(records []FileRecord, metrics Metrics, path string, allowClobber bool) error {
	f, err := createOutFile(path, allowClobber)
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for _, rec := range records {
		if err := enc.Encode(ndjsonRecord{RecordType: "file", FileRecord: rec}); err != nil {
			f.Close()
			return err
		}
	}
	if err := enc.Encode(ndjsonMetrics{RecordType: "metrics", Metrics: metrics}); err != nil {
		f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return err
	}
	_ = f.Sync()
	return f.Close()
}
