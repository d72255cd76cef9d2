package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"starlift/internal/config"
	"starlift/internal/logging"
	"starlift/pkg/models"
)

// ExportCSV writes one CSV file per assembled table into the configured
// output directory, named after the lowercased table name. Returns a
// mapping from table name to file path.
func ExportCSV(cfg *config.Config, tables models.TableSet) (map[string]string, error) {
	logger := logging.GetGlobalLogger()

	outputDir := cfg.Export.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	paths := make(map[string]string, len(tables))
	for name, table := range tables {
		path := filepath.Join(outputDir, strings.ToLower(name)+".csv")
		if err := writeTable(path, table); err != nil {
			return nil, fmt.Errorf("failed to export table %s: %w", name, err)
		}

		paths[name] = path
		logger.Info("Exported table", map[string]interface{}{
			"table": name,
			"rows":  len(table.Rows),
			"path":  path,
		})
	}

	return paths, nil
}

// writeTable writes one table using its declared column order
func writeTable(path string, table *models.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			if value, ok := row[column]; ok && value != nil {
				record[i] = formatValue(value)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}
