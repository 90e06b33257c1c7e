package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marketfeeds/itch-go/internal/sink"
)

// closeFunc is whatever cleanup a backend's file handles need once the
// decode loop finishes; openSink's caller always defers it.
type closeFunc func() error

// openSink constructs the sink.Sink named by format, rooted at
// outDir/<date's YYYY/MM/DD partition>. CSV, JSON-lines and Parquet
// each get four files (orders/snapshots/trades/noii); DuckDB gets a
// single database file holding all four tables.
func openSink(format, outDir, date string, depth int) (sink.Sink, closeFunc, error) {
	dir, err := sink.DatePartitionPath(outDir, date)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	switch format {
	case "csv":
		return openCSVSink(dir, date)
	case "json":
		return openJSONSink(dir, date)
	case "parquet":
		return openParquetSink(dir, date, depth)
	case "duckdb":
		return openDuckDBSink(dir, date)
	default:
		return nil, nil, fmt.Errorf("unknown sink format %q (want csv, json, parquet or duckdb)", format)
	}
}

// perKindFiles opens one file per record kind under dir, named
// "<kind>.<date>.<ext>".
func perKindFiles(dir, date, ext string) (orders, snapshots, trades, noii *os.File, err error) {
	open := func(kind string) (*os.File, error) {
		name, err := sink.DatePartitionFilename(kind, date, ext)
		if err != nil {
			return nil, err
		}
		return os.Create(filepath.Join(dir, name))
	}
	if orders, err = open("orders"); err != nil {
		return
	}
	if snapshots, err = open("snapshots"); err != nil {
		return
	}
	if trades, err = open("trades"); err != nil {
		return
	}
	noii, err = open("noii")
	return
}

func closeAll(files ...*os.File) closeFunc {
	return func() error {
		var first error
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

func openCSVSink(dir, date string) (sink.Sink, closeFunc, error) {
	orders, snapshots, trades, noii, err := perKindFiles(dir, date, "csv")
	if err != nil {
		return nil, nil, err
	}
	s, err := sink.NewCSVSink(orders, snapshots, trades, noii)
	if err != nil {
		closeAll(orders, snapshots, trades, noii)()
		return nil, nil, err
	}
	return s, closeAll(orders, snapshots, trades, noii), nil
}

func openJSONSink(dir, date string) (sink.Sink, closeFunc, error) {
	orders, snapshots, trades, noii, err := perKindFiles(dir, date, "jsonl")
	if err != nil {
		return nil, nil, err
	}
	return sink.NewJSONLinesSink(orders, snapshots, trades, noii), closeAll(orders, snapshots, trades, noii), nil
}

func openParquetSink(dir, date string, depth int) (sink.Sink, closeFunc, error) {
	orders, snapshots, trades, noii, err := perKindFiles(dir, date, "parquet")
	if err != nil {
		return nil, nil, err
	}
	s := sink.NewParquetSink(orders, snapshots, trades, noii, depth)
	closeFn := func() error {
		err := s.Close()
		closeAll(orders, snapshots, trades, noii)()
		return err
	}
	return s, closeFn, nil
}

func openDuckDBSink(dir, date string) (sink.Sink, closeFunc, error) {
	name, err := sink.DatePartitionFilename("itch", date, "duckdb")
	if err != nil {
		return nil, nil, err
	}
	s, err := sink.NewDuckDBSink(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
