package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/pkg/logger"
)

// Writer publishes run artifacts to an output directory:
//
//	latest.json            full run report
//	data.js                same report wrapped for static-page consumption
//	signals_history.json   the signal ledger alone
//	sectors/<ETF>.json     per-sector constituent details
//
// All files are written via temp file and rename so readers never observe a
// partial artifact.
type Writer struct {
	dir string
	log *logger.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

// WriteRun publishes the top-level report and its JS mirror.
func (w *Writer) WriteRun(rep *contracts.RunReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := w.writeAtomic("latest.json", data); err != nil {
		return err
	}

	js := append([]byte("window.ROTATION_DATA = "), data...)
	js = append(js, []byte(";\n")...)
	if err := w.writeAtomic("data.js", js); err != nil {
		return err
	}

	history, err := json.MarshalIndent(rep.SignalsHistory, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal signal history: %w", err)
	}
	if err := w.writeAtomic("signals_history.json", history); err != nil {
		return err
	}

	w.log.WithFields(map[string]interface{}{
		"dir":     w.dir,
		"date":    rep.Metadata.Date,
		"sectors": len(rep.Nodes),
	}).Info("run artifacts written")
	return nil
}

// WriteSectorDetail publishes one sector's constituent report.
func (w *Writer) WriteSectorDetail(detail *contracts.SectorDetail) error {
	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sector detail %s: %w", detail.ETF, err)
	}
	return w.writeAtomic(filepath.Join("sectors", detail.ETF+".json"), data)
}

func (w *Writer) writeAtomic(name string, data []byte) error {
	path := filepath.Join(w.dir, name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
