package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/partyload/internal/core"
)

// FailedPath returns "<dir>/<name> - failed.csv" for the input file.
func FailedPath(input string) string {
	dir, file := filepath.Split(input)
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, base+" - failed.csv")
}

// WriteFailed writes the failed rows with a leading Status column holding
// "line N: reason". Cells keep the input header order. The file is written
// as UTF-8 with ';' separators so it opens like the source export.
func WriteFailed(path string, header []string, rows []core.FailedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create failed rows file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(append([]string{"Status"}, header...)); err != nil {
		return fmt.Errorf("write failed rows header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(header)+1)
		record = append(record, fmt.Sprintf("line %d: %s", row.LineNumber, row.Reason))
		for _, col := range header {
			record = append(record, row.Data[col])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write failed row %d: %w", row.LineNumber, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush failed rows file: %w", err)
	}
	return f.Close()
}
