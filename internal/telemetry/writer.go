// Package telemetry records per-frame visualizer statistics as CSV.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
)

// FrameRecord is one row of a scene's frame log.
type FrameRecord struct {
	Scene            string `csv:"scene"`
	Frame            int    `csv:"frame"`
	Time             string `csv:"time"`
	Active           int    `csv:"active"`
	Resources        int    `csv:"resources"`
	Visible          int    `csv:"visible"`
	Created          uint64 `csv:"created"`
	Destroyed        uint64 `csv:"destroyed"`
	ChangedSnapshots int    `csv:"changed_snapshots"`
	Bounded          int    `csv:"bounded"`
	ChangeBatches    int    `csv:"change_batches"`
	HandlerErrors    int    `csv:"handler_errors"`
	UpdateUS         int64  `csv:"update_us"`
}

// Writer appends FrameRecords to <dir>/<scene>.csv. A nil Writer discards
// everything, so callers need not check whether telemetry is enabled.
type Writer struct {
	path          string
	file          *os.File
	headerWritten bool
}

// NewWriter creates the output file for scene. It returns nil when dir is
// empty.
func NewWriter(dir, scene string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}

	path := filepath.Join(dir, FileName(scene))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Writer{path: path, file: f}, nil
}

// FileName maps a scene name to a safe CSV file name.
func FileName(scene string) string {
	base := strings.TrimSuffix(filepath.Base(scene), filepath.Ext(scene))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "_" {
		base = "scene"
	}
	return base + ".csv"
}

func (w *Writer) Write(r FrameRecord) error {
	if w == nil {
		return nil
	}

	records := []FrameRecord{r}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

func (w *Writer) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}
