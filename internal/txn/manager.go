// Package txn is the persistence boundary of the shop: it turns a
// finalized cart into durable line-item records, assigns transaction
// IDs and serves the list/detail/delete queries over the record store.
package txn

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/arestrepo/shopcart/internal/shop"
	"github.com/arestrepo/shopcart/internal/store"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04:05"
)

// Summary is one entry of the receipts listing.
type Summary struct {
	ID    string
	Date  string
	Time  string
	Total decimal.Decimal
}

// Line is one line item of a persisted receipt.
type Line struct {
	ItemName string
	Price    decimal.Decimal
	Quantity int
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Receipt is the full detail of one transaction. The aggregates are
// recomputed from the lines rather than trusted from storage.
type Receipt struct {
	ID       string
	Date     string
	Time     string
	Lines    []Line
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Manager owns the record store. The write path (checkout, delete) is
// serialized by an internal mutex so two checkouts can never interleave
// their rows.
type Manager struct {
	mu    sync.Mutex
	store store.RecordStore
	seq   uint64
	now   func() time.Time
}

// NewManager seeds the ID counter from the highest sequence already in
// the store, so IDs stay unique across process restarts.
func NewManager(ctx context.Context, st store.RecordStore) (*Manager, error) {
	rows, err := st.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var seq uint64
	for _, rec := range rows {
		if n, ok := parseSeq(rec.TransactionID); ok && n > seq {
			seq = n
		}
	}
	return &Manager{store: st, seq: seq, now: time.Now}, nil
}

// Checkout persists every line of the cart under one fresh transaction
// ID and clears the cart on success. All rows are written or none.
func (m *Manager) Checkout(ctx context.Context, cart *shop.Cart) (*Receipt, error) {
	items := cart.Items()
	if len(items) == 0 {
		return nil, shop.ErrEmptyCart
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.seq++
	id := fmt.Sprintf("TXN_%s_%06d", now.Format("20060102_150405"), m.seq)

	rows := make([]store.LineRecord, 0, len(items))
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		sub := it.Subtotal()
		tax := it.Tax()
		rows = append(rows, store.LineRecord{
			TransactionID: id,
			Date:          now.Format(dateFormat),
			Time:          now.Format(timeFormat),
			ItemName:      it.Name,
			Price:         it.UnitPrice,
			Quantity:      it.Quantity,
			Subtotal:      sub,
			Tax:           tax,
			Total:         sub.Add(tax),
		})
		lines = append(lines, Line{
			ItemName: it.Name,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
			Subtotal: sub,
			Tax:      tax,
			Total:    sub.Add(tax),
		})
	}

	if err := m.store.Append(ctx, rows); err != nil {
		m.seq--
		return nil, err
	}
	cart.Clear()

	sub, tax, total := sumLines(lines)
	log.Info().Str("transaction_id", id).Int("items", len(lines)).
		Str("total", total.StringFixed(2)).Msg("transaction committed")
	return &Receipt{
		ID: id, Date: now.Format(dateFormat), Time: now.Format(timeFormat),
		Lines: lines, Subtotal: sub, Tax: tax, Total: total,
	}, nil
}

// ListTransactions groups the store's rows by transaction ID and
// returns one summary each, most recent first (IDs sort chronologically).
func (m *Manager) ListTransactions(ctx context.Context) ([]Summary, error) {
	rows, err := m.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	subtotals := map[string]decimal.Decimal{}
	byID := map[string]Summary{}
	for _, rec := range rows {
		if _, ok := byID[rec.TransactionID]; !ok {
			byID[rec.TransactionID] = Summary{ID: rec.TransactionID, Date: rec.Date, Time: rec.Time}
			subtotals[rec.TransactionID] = decimal.Zero
		}
		subtotals[rec.TransactionID] = subtotals[rec.TransactionID].Add(rec.Subtotal)
	}

	out := make([]Summary, 0, len(byID))
	for id, s := range byID {
		sub := subtotals[id]
		s.Total = sub.Add(shop.TaxOn(sub))
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// GetTransaction returns all lines of one transaction with aggregates
// recomputed from the rows.
func (m *Manager) GetTransaction(ctx context.Context, id string) (*Receipt, error) {
	rows, err := m.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var rc *Receipt
	for _, rec := range rows {
		if rec.TransactionID != id {
			continue
		}
		if rc == nil {
			rc = &Receipt{ID: id, Date: rec.Date, Time: rec.Time}
		}
		rc.Lines = append(rc.Lines, Line{
			ItemName: rec.ItemName,
			Price:    rec.Price,
			Quantity: rec.Quantity,
			Subtotal: rec.Subtotal,
			Tax:      rec.Tax,
			Total:    rec.Total,
		})
	}
	if rc == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, shop.ErrNotFound)
	}
	rc.Subtotal, rc.Tax, rc.Total = sumLines(rc.Lines)
	return rc, nil
}

// DeleteTransaction removes every row of the transaction.
func (m *Manager) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, err := m.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("transaction %s: %w", id, shop.ErrNotFound)
	}
	log.Info().Str("transaction_id", id).Int("rows", removed).Msg("transaction deleted")
	return nil
}

// sumLines recomputes aggregates from line subtotals using the shared
// tax rule, so list, detail and checkout never disagree.
func sumLines(lines []Line) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, ln := range lines {
		subtotal = subtotal.Add(ln.Subtotal)
	}
	tax = shop.TaxOn(subtotal)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// parseSeq extracts the trailing counter of an ID like
// TXN_20250901_153000_000042.
func parseSeq(id string) (uint64, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 4 || parts[0] != "TXN" {
		return 0, false
	}
	n, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
