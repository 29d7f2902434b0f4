// Package sink writes decision values to a well-known file for
// consumption by CI and orchestration systems.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/mender/internal/ports/secondary"
)

// FileSink implements secondary.DecisionSink by writing a flat JSON
// map. Writes go through a temp file and rename so consumers never
// observe a partial file.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Export writes the decision map, replacing any previous export.
func (s *FileSink) Export(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create sink directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decision values: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write decision file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to publish decision file: %w", err)
	}

	return nil
}

// Path returns the sink file location.
func (s *FileSink) Path() string { return s.path }

// Ensure FileSink implements the interface
var _ secondary.DecisionSink = (*FileSink)(nil)
