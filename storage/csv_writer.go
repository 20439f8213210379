package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"social-analytics/models"
)

var csvHeader = []string{
	"id", "platform", "handle", "source", "followers",
	"total_interactions", "engagement_rate", "engagement_trend", "error",
}

var _ AnalyticsWriter = (*CSVWriter)(nil)

// CSVWriter writes collected analytics as CSV rows.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter writes to w. The header is emitted with the first Write.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// CreateCSVFile creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func CreateCSVFile(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// Write emits the header and one row per account, ordered by account id.
// Followers and trend are blank for accounts without post-level details.
func (c *CSVWriter) Write(results map[int64]models.AccountAnalytics) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	ids := make([]int64, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a := results[id]
		followers, trend := "", ""
		if a.Details != nil {
			followers = strconv.Itoa(a.Details.Followers)
			trend = strconv.FormatFloat(a.Details.EngagementTrend, 'f', 4, 64)
		}
		row := []string{
			strconv.FormatInt(id, 10),
			a.Platform.String(),
			a.Handle,
			string(a.Source),
			followers,
			strconv.Itoa(a.Metrics.TotalInteractions),
			strconv.FormatFloat(a.Metrics.EngagementRate, 'f', 2, 64),
			trend,
			a.Error,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if the writer owns one.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.file == nil {
		return c.writer.Error()
	}
	return c.file.Close()
}
