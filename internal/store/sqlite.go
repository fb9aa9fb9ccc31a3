package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded-database alternative to the CSV file. It
// honours the same contract, so the transaction manager does not care
// which of the two is configured.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, storageErr("open", err)
	}
	// Busy timeout + WAL so a reader never blocks the write path.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL")
	if err != nil {
		return nil, storageErr("open", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, storageErr("migrate", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS line_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  transaction_id TEXT NOT NULL,
  date TEXT NOT NULL,
  time TEXT NOT NULL,
  item_name TEXT NOT NULL,
  price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  subtotal TEXT NOT NULL,
  tax TEXT NOT NULL,
  total TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_line_items_txn ON line_items(transaction_id);
`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, rows []LineRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("append", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
  INSERT INTO line_items(transaction_id, date, time, item_name, price, quantity, subtotal, tax, total)
  VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return storageErr("append", err)
	}
	defer stmt.Close()

	for _, rec := range rows {
		if _, err := stmt.ExecContext(ctx,
			rec.TransactionID, rec.Date, rec.Time, rec.ItemName,
			rec.Price.StringFixed(2), rec.Quantity,
			rec.Subtotal.StringFixed(2), rec.Tax.StringFixed(2), rec.Total.StringFixed(2)); err != nil {
			return storageErr("append", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("append", err)
	}
	return nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]LineRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT transaction_id, date, time, item_name, price, quantity, subtotal, tax, total
    FROM line_items ORDER BY id`)
	if err != nil {
		return nil, storageErr("read", err)
	}
	defer rows.Close()

	var out []LineRecord
	for rows.Next() {
		var rec LineRecord
		var price, subtotal, tax, total string
		if err := rows.Scan(&rec.TransactionID, &rec.Date, &rec.Time, &rec.ItemName,
			&price, &rec.Quantity, &subtotal, &tax, &total); err != nil {
			return nil, storageErr("read", err)
		}
		for _, col := range []struct {
			dst *decimal.Decimal
			val string
		}{
			{&rec.Price, price}, {&rec.Subtotal, subtotal}, {&rec.Tax, tax}, {&rec.Total, total},
		} {
			d, err := decimal.NewFromString(col.val)
			if err != nil {
				return nil, storageErr("read", err)
			}
			*col.dst = d
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, transactionID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM line_items WHERE transaction_id=?`, transactionID)
	if err != nil {
		return 0, storageErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
