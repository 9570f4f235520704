/* pkg/ztp_io/yaml.go */

package ztp_io

import (
	"context"
	"fmt"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML marshals in and writes it to filePath with the given mode.
func WriteYAML(ctx context.Context, filePath string, in interface{}, mode os.FileMode) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Writing YAML file", zap.String("path", filePath))

	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, mode); err != nil {
		logger.Error("Failed to write YAML file", zap.String("path", filePath), zap.Error(err))
		return fmt.Errorf("write YAML file %s: %w", filePath, err)
	}

	logger.Debug("YAML file written", zap.String("path", filePath), zap.Int("size", len(data)))
	return nil
}

// ReadYAML reads filePath into out.
func ReadYAML(ctx context.Context, filePath string, out interface{}) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Reading YAML file", zap.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read YAML file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal YAML file %s: %w", filePath, err)
	}
	return nil
}
