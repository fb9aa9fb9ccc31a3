// Package store holds the durable record store behind the transaction
// manager: one row per line item, keyed by transaction ID.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// LineRecord is one row of the record store: one line item of one
// persisted transaction. All rows of a transaction share TransactionID,
// Date and Time.
type LineRecord struct {
	TransactionID string
	Date          string
	Time          string
	ItemName      string
	Price         decimal.Decimal
	Quantity      int
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// RecordStore is the persistence contract the transaction manager works
// against. Append must write all rows or none; Delete must leave the
// relative order of the surviving rows intact.
type RecordStore interface {
	Append(ctx context.Context, rows []LineRecord) error
	ReadAll(ctx context.Context) ([]LineRecord, error)
	Delete(ctx context.Context, transactionID string) (removed int, err error)
	Close() error
}

// StorageError marks a failure of the underlying store (permissions,
// disk full, corruption). The store's prior durable state is preserved
// whenever one is returned from a write path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "record store " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
