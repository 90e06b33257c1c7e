package sink

import (
	"database/sql"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/marketfeeds/itch-go"
)

// DuckDBSink appends each batch into a local DuckDB database, one
// table per record kind, giving the batched-flush design an embedded-
// analytics destination alongside the flat-file sinks. Opens its
// handle the same way internal/mcp_data/cache.go's InitCache does
// (sql.Open("duckdb", path) against the blank-imported driver) and
// drives it with plain database/sql statements rather than a separate
// client library.
type DuckDBSink struct {
	db *sql.DB
}

// NewDuckDBSink opens (or creates) path and the four destination
// tables, matching the persisted record shapes column-for-column.
func NewDuckDBSink(path string) (*DuckDBSink, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	schema := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			date VARCHAR, nanoseconds UBIGINT, kind VARCHAR, ticker VARCHAR, side VARCHAR,
			price UINTEGER, shares UINTEGER, refno UBIGINT, from_replace BOOLEAN,
			mpid VARCHAR, printable BOOLEAN, execution_price UINTEGER)`,
		`CREATE TABLE IF NOT EXISTS trades (
			date VARCHAR, nanoseconds UBIGINT, kind VARCHAR, refno UBIGINT, side VARCHAR,
			shares UBIGINT, ticker VARCHAR, price UINTEGER, matchno UBIGINT,
			cross_price UINTEGER, cross_type VARCHAR)`,
		`CREATE TABLE IF NOT EXISTS noii (
			date VARCHAR, nanoseconds UBIGINT, kind VARCHAR, ticker VARCHAR,
			paired_shares UBIGINT, imbalance_shares UBIGINT, imbalance_direction VARCHAR,
			far_price UINTEGER, near_price UINTEGER, ref_price UINTEGER,
			cross_type VARCHAR, var_indicator VARCHAR)`,
		`CREATE TABLE IF NOT EXISTS snapshots (ticker VARCHAR, timestamp UBIGINT, data BIGINT[])`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &DuckDBSink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *DuckDBSink) Close() error { return s.db.Close() }

// insertBatch runs n inserts against query inside a single transaction
// so a batch is persisted atomically from the caller's perspective.
func insertBatch(db *sql.DB, query string, n int, row func(i int) []any) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(row(i)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *DuckDBSink) FlushOrders(batch []itch.OrderRecord) error {
	const q = `INSERT INTO orders VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(s.db, q, len(batch), func(i int) []any {
		r := batch[i]
		return []any{r.Date, r.Nanos, string(r.Kind), r.Ticker, r.Side.String(),
			r.Price, r.Shares, r.Refno, r.FromReplace, r.MPID, r.Printable, r.ExecutionPrice}
	})
}

func (s *DuckDBSink) FlushTrades(batch []itch.TradeRecord) error {
	const q = `INSERT INTO trades VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(s.db, q, len(batch), func(i int) []any {
		r := batch[i]
		return []any{r.Date, r.Nanos, string(r.Kind), r.Refno, r.Side.String(),
			r.Shares, r.Ticker, r.Price, r.Matchno, r.CrossPrice, string(r.CrossType)}
	})
}

func (s *DuckDBSink) FlushNOII(batch []itch.NOIIRecord) error {
	const q = `INSERT INTO noii VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(s.db, q, len(batch), func(i int) []any {
		r := batch[i]
		return []any{r.Date, r.Nanos, string(r.Kind), r.Ticker, r.PairedShares, r.ImbalanceShares,
			string(r.ImbalanceDirection), r.FarPrice, r.NearPrice, r.RefPrice,
			string(r.CrossType), string(r.PriceVariationIndicator)}
	})
}

func (s *DuckDBSink) FlushSnapshots(batch []itch.SnapshotRecord) error {
	const q = `INSERT INTO snapshots VALUES (?, ?, ?)`
	return insertBatch(s.db, q, len(batch), func(i int) []any {
		r := batch[i]
		return []any{r.Ticker, r.Timestamp, r.Data}
	})
}
