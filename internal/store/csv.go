package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// header is the first row of the CSV store, written once on creation.
var header = []string{
	"Transaction_ID", "Date", "Time", "Item_Name",
	"Price", "Quantity", "Subtotal", "Tax", "Total",
}

// CSVStore keeps every line-item row in a single delimited text file.
// Appends go to the end of the file in one write; deletes rewrite the
// whole file to a temp sibling and rename it over the original, so a
// failed delete leaves the prior file untouched.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// OpenCSV creates the file with its header row if it does not exist yet.
func OpenCSV(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("open", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write(header)
		w.Flush()
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, storageErr("init", err)
		}
	} else if err != nil {
		return nil, storageErr("open", err)
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Append(ctx context.Context, rows []LineRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, rec := range rows {
		if err := w.Write(encodeRecord(rec)); err != nil {
			return storageErr("append", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storageErr("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return storageErr("append", err)
	}
	// One Write call for all rows of the transaction, so a concurrent
	// reader never sees a partial append.
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return storageErr("append", err)
	}
	if err := f.Close(); err != nil {
		return storageErr("append", err)
	}
	return nil
}

func (s *CSVStore) ReadAll(ctx context.Context) ([]LineRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAllLocked()
}

func (s *CSVStore) readAllLocked() ([]LineRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, storageErr("read", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	first := true
	var out []LineRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, storageErr("read", err)
		}
		if first {
			first = false
			continue
		}
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, storageErr("read", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *CSVStore) Delete(ctx context.Context, transactionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAllLocked()
	if err != nil {
		return 0, err
	}

	kept := all[:0]
	removed := 0
	for _, rec := range all {
		if rec.TransactionID == transactionID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, rec := range kept {
		if err := w.Write(encodeRecord(rec)); err != nil {
			return 0, storageErr("delete", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, storageErr("delete", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return 0, storageErr("delete", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return 0, storageErr("delete", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, storageErr("delete", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, storageErr("delete", err)
	}
	return removed, nil
}

func (s *CSVStore) Close() error { return nil }

func encodeRecord(rec LineRecord) []string {
	return []string{
		rec.TransactionID,
		rec.Date,
		rec.Time,
		rec.ItemName,
		rec.Price.StringFixed(2),
		strconv.Itoa(rec.Quantity),
		rec.Subtotal.StringFixed(2),
		rec.Tax.StringFixed(2),
		rec.Total.StringFixed(2),
	}
}

func decodeRecord(row []string) (LineRecord, error) {
	if len(row) != len(header) {
		return LineRecord{}, fmt.Errorf("row has %d columns, want %d", len(row), len(header))
	}
	qty, err := strconv.Atoi(row[5])
	if err != nil {
		return LineRecord{}, fmt.Errorf("quantity %q: %v", row[5], err)
	}
	nums := make([]decimal.Decimal, 4)
	for i, col := range []int{4, 6, 7, 8} {
		d, err := decimal.NewFromString(row[col])
		if err != nil {
			return LineRecord{}, fmt.Errorf("column %s %q: %v", header[col], row[col], err)
		}
		nums[i] = d
	}
	return LineRecord{
		TransactionID: row[0],
		Date:          row[1],
		Time:          row[2],
		ItemName:      row[3],
		Price:         nums[0],
		Quantity:      qty,
		Subtotal:      nums[1],
		Tax:           nums[2],
		Total:         nums[3],
	}, nil
}
