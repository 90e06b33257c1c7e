package sink

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/neomantra/ymdflag"
)

const ymdPathFormat = "2006" + string(filepath.Separator) + "01" + string(filepath.Separator) + "02"

// DatePartitionPath turns a record's date ("2026-08-01") into a
// "YYYY/MM/DD" path segment joined under root, matching
// internal/file/split.go's ymdPathFormat convention for sharding
// output by trading day.
func DatePartitionPath(root, date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, t.Format(ymdPathFormat)), nil
}

// DatePartitionFilename builds a "<ticker>.<YYYYMMDD>.<ext>" filename,
// the naming half of split.go's destination-file scheme.
func DatePartitionFilename(ticker, date, ext string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%d.%s", ticker, ymdflag.TimeToYMD(t), ext), nil
}
