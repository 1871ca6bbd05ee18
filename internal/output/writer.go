package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"whaletrack/internal/service"
)

const (
	MetadataFile   = "metadata.json"
	PortfoliosFile = "trader_portfolios.json"
	AggregatedFile = "aggregated_portfolio.json"
	ChangesFile    = "recent_changes.json"
)

// Writer persists the four run documents. All documents are marshalled
// before anything touches disk, and each file lands via rename, so a
// failing run never leaves a torn document set behind.
type Writer struct {
	Dir    string
	Logger *zap.Logger
}

func (w *Writer) WriteRun(res *service.RunResult) error {
	if res == nil {
		return fmt.Errorf("run result is nil")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	docs := []struct {
		name string
		v    any
	}{
		{MetadataFile, res.Metadata},
		{PortfoliosFile, res.Portfolios},
		{AggregatedFile, res.Aggregated},
		{ChangesFile, res.Changes},
	}

	encoded := make([][]byte, len(docs))
	for i, doc := range docs {
		b, err := json.MarshalIndent(doc.v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", doc.name, err)
		}
		encoded[i] = b
	}

	for i, doc := range docs {
		if err := writeAtomic(filepath.Join(w.Dir, doc.name), encoded[i]); err != nil {
			return err
		}
	}

	if w.Logger != nil {
		w.Logger.Info("run documents written", zap.String("dir", w.Dir))
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
