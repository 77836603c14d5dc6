package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/domain/types"
)

// TimestampLayout is the layout of the timestamp column written by CSV
const TimestampLayout = "2006-01-02 15:04:05"

// Column names written to a new file
const (
	colID            = "id"
	colTimestamp     = "timestamp"
	colName          = "name"
	colEmail         = "email"
	colCategory      = "category"
	colMunicipality  = "municipality"
	colSeverity      = "severity"
	colSeverityScore = "severity_score"
	colDescription   = "description"
	colStatus        = "status"
)

// DefaultHeader is the header of a file created by AppendComplaint
var DefaultHeader = []string{
	colID, colTimestamp, colName, colEmail, colCategory, colMunicipality,
	colSeverity, colSeverityScore, colDescription, colStatus,
}

// aliases maps alternative header names found in exported datasets to canonical columns
var aliases = map[string]string{
	"date":         colTimestamp,
	"datetime":     colTimestamp,
	"created_at":   colTimestamp,
	"complaint_en": colDescription,
	"complaint":    colDescription,
	"text":         colDescription,
	"score":        colSeverityScore,
	"city":         colMunicipality,
}

var dateLayouts = []string{
	TimestampLayout,
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"01/02/2006 15:04",
}

// CSV implements Repository interface on a comma-separated flat file.
// Appends are serialized within the process; other processes writing the same file are not coordinated.
type CSV struct {
	path string
	mu   sync.Mutex
}

// NewCSV creates a CSV repository for path. The file does not need to exist yet.
func NewCSV(path string) (interfaces.Repository, error) {
	if path == "" {
		return nil, goerr.New("CSV file path is required")
	}
	return &CSV{path: path}, nil
}

// ListComplaints reads the whole file. Rows whose date cannot be parsed are skipped.
func (r *CSV) ListComplaints(ctx context.Context) ([]*model.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(err, "complaint file not found",
				goerr.V("path", r.path),
				goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to open complaint file", goerr.V("path", r.path))
	}
	defer f.Close()

	reader := newReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return []*model.Complaint{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV header", goerr.V("path", r.path))
	}
	columns := indexColumns(header)
	if _, ok := columns[colTimestamp]; !ok {
		return nil, goerr.New("CSV file has no date column",
			goerr.V("path", r.path),
			goerr.V("header", header))
	}

	complaints := []*model.Complaint{}
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read CSV record",
				goerr.V("path", r.path),
				goerr.V("row", len(complaints)+skipped+1))
		}

		complaint, ok := decodeRecord(columns, record)
		if !ok {
			skipped++
			continue
		}
		complaints = append(complaints, complaint)
	}

	if skipped > 0 {
		ctxlog.From(ctx).Warn("Skipped CSV rows with unparsable date",
			"path", r.path,
			"skipped", skipped,
			"loaded", len(complaints),
		)
	}

	return complaints, nil
}

// AppendComplaint appends one row. A new file gets DefaultHeader; an existing file keeps its own
// column order and columns it does not have are dropped.
func (r *CSV) AppendComplaint(ctx context.Context, complaint *model.Complaint) error {
	if complaint == nil {
		return goerr.New("complaint is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	header, err := r.readHeader()
	if err != nil {
		return err
	}
	writeHeader := header == nil
	if writeHeader {
		header = DefaultHeader
		if dir := filepath.Dir(r.path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
			}
		}
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open complaint file for append", goerr.V("path", r.path))
	}

	// a last line without newline would swallow the new record
	if err := terminateLastLine(f); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to terminate last CSV line", goerr.V("path", r.path))
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return goerr.Wrap(err, "failed to write CSV header", goerr.V("path", r.path))
		}
	}
	if err := w.Write(encodeRecord(header, complaint)); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write CSV record", goerr.V("path", r.path))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to flush CSV record", goerr.V("path", r.path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close complaint file", goerr.V("path", r.path))
	}

	ctxlog.From(ctx).Debug("Complaint appended to CSV", "path", r.path, "id", complaint.ID)
	return nil
}

// terminateLastLine writes a newline when a non-empty file does not end with one
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte("\n"))
	return err
}

// Close closes the repository (no-op for CSV)
func (r *CSV) Close() error {
	return nil
}

// readHeader returns the existing header, or nil if the file is missing or empty
func (r *CSV) readHeader() ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open complaint file", goerr.V("path", r.path))
	}
	defer f.Close()

	header, err := newReader(f).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV header", goerr.V("path", r.path))
	}
	return header, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// canonicalColumn normalises a header cell and resolves aliases
func canonicalColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// indexColumns maps canonical column names to positions; the first occurrence wins
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := canonicalColumn(name)
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func decodeRecord(columns map[string]int, record []string) (*model.Complaint, bool) {
	get := func(col string) string {
		i, ok := columns[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, ok := parseTimestamp(get(colTimestamp))
	if !ok {
		return nil, false
	}

	complaint := &model.Complaint{
		ID:            types.ComplaintID(get(colID)),
		Timestamp:     ts,
		Name:          get(colName),
		Email:         get(colEmail),
		Category:      get(colCategory),
		Municipality:  get(colMunicipality),
		Severity:      get(colSeverity),
		SeverityScore: model.NoScore(),
		Description:   get(colDescription),
		Status:        types.ComplaintStatus(get(colStatus)),
	}

	if score, err := model.ParseScore(get(colSeverityScore)); err == nil {
		complaint.SeverityScore = score
	}
	if !complaint.SeverityScore.IsDefined() {
		// the severity column may carry a number instead of a label
		if score, err := model.ParseScore(complaint.Severity); err == nil {
			complaint.SeverityScore = score
		}
	}

	return complaint, true
}

func encodeRecord(header []string, c *model.Complaint) []string {
	score := ""
	if c.SeverityScore.IsDefined() {
		score = c.SeverityScore.String()
	}

	values := map[string]string{
		colID:            c.ID.String(),
		colTimestamp:     c.Timestamp.Format(TimestampLayout),
		colName:          c.Name,
		colEmail:         c.Email,
		colCategory:      c.Category,
		colMunicipality:  c.Municipality,
		colSeverity:      c.Severity,
		colSeverityScore: score,
		colDescription:   c.Description,
		colStatus:        c.Status.String(),
	}

	record := make([]string, len(header))
	for i, name := range header {
		record[i] = values[canonicalColumn(name)]
	}
	return record
}

func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
