package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/arestrepo/shopcart/internal/events"
	"github.com/arestrepo/shopcart/internal/shop"
	"github.com/arestrepo/shopcart/internal/store"
)

type itemView struct {
	Name     string
	Price    string
	Quantity int
	Subtotal string
	Tax      string
	Total    string
}

type cartView struct {
	Items    []itemView
	Subtotal string
	Tax      string
	Total    string
	Msg      string
	Err      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	cart := s.sessionCart(w, r)

	vm := cartView{
		Msg: r.URL.Query().Get("msg"),
		Err: r.URL.Query().Get("err"),
	}
	for _, it := range cart.Items() {
		vm.Items = append(vm.Items, itemView{
			Name:     it.Name,
			Price:    it.UnitPrice.StringFixed(2),
			Quantity: it.Quantity,
			Subtotal: it.Subtotal().StringFixed(2),
			Tax:      it.Tax().StringFixed(2),
			Total:    it.Total().StringFixed(2),
		})
	}
	sub, tax, total := cart.Totals()
	vm.Subtotal, vm.Tax, vm.Total = sub.StringFixed(2), tax.StringFixed(2), total.StringFixed(2)

	s.render(w, "cart.html", vm)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	name := r.FormValue("name")
	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		redirectErr(w, r, "/", "Please enter a valid price (numbers only)")
		return
	}
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		redirectErr(w, r, "/", "Please enter a valid quantity (whole numbers only)")
		return
	}

	cart := s.sessionCart(w, r)
	if err := cart.Add(name, price, qty); err != nil {
		redirectErr(w, r, "/", userMessage(err))
		return
	}
	redirectMsg(w, r, "/", "Added "+strconv.Itoa(qty)+" x "+name+" to cart")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	name := r.FormValue("name")
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		redirectErr(w, r, "/", "Please enter a valid quantity (whole numbers only)")
		return
	}

	cart := s.sessionCart(w, r)
	if err := cart.UpdateQuantity(name, qty); err != nil {
		redirectErr(w, r, "/", userMessage(err))
		return
	}
	if qty <= 0 {
		redirectMsg(w, r, "/", "Removed "+name+" from cart")
		return
	}
	redirectMsg(w, r, "/", "Updated "+name+" quantity to "+strconv.Itoa(qty))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	name := r.FormValue("name")
	cart := s.sessionCart(w, r)
	if cart.Remove(name) {
		redirectMsg(w, r, "/", "Removed "+name+" from cart")
		return
	}
	redirectErr(w, r, "/", "Item not found in cart")
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.sessionCart(w, r).Clear()
	redirectMsg(w, r, "/", "Cart cleared")
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	cart := s.sessionCart(w, r)

	ctx, cancel := s.ctx()
	defer cancel()
	rc, err := s.mgr.Checkout(ctx, cart)
	if err != nil {
		redirectErr(w, r, "/", userMessage(err))
		return
	}

	s.pub.PublishJSON(ctx, events.RKTransactionCompleted, events.TransactionCompletedPayload{
		TransactionID: rc.ID,
		Date:          rc.Date,
		Time:          rc.Time,
		Items:         len(rc.Lines),
		Total:         rc.Total.StringFixed(2),
	})
	redirectMsg(w, r, "/", "Transaction completed! Transaction ID: "+rc.ID)
}

type summaryView struct {
	ID    string
	Date  string
	Time  string
	Total string
}

type receiptsView struct {
	Transactions []summaryView
	Msg          string
	Err          string
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx()
	defer cancel()
	list, err := s.mgr.ListTransactions(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}

	vm := receiptsView{
		Msg: r.URL.Query().Get("msg"),
		Err: r.URL.Query().Get("err"),
	}
	for _, t := range list {
		vm.Transactions = append(vm.Transactions, summaryView{
			ID: t.ID, Date: t.Date, Time: t.Time, Total: t.Total.StringFixed(2),
		})
	}
	s.render(w, "receipts.html", vm)
}

type receiptView struct {
	ID       string
	Date     string
	Time     string
	Items    []itemView
	Subtotal string
	Tax      string
	Total    string
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		redirectErr(w, r, "/receipts", "Invalid transaction ID")
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	rc, err := s.mgr.GetTransaction(ctx, id)
	if errors.Is(err, shop.ErrNotFound) {
		redirectErr(w, r, "/receipts", "Transaction not found")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	vm := receiptView{
		ID: rc.ID, Date: rc.Date, Time: rc.Time,
		Subtotal: rc.Subtotal.StringFixed(2),
		Tax:      rc.Tax.StringFixed(2),
		Total:    rc.Total.StringFixed(2),
	}
	for _, ln := range rc.Lines {
		vm.Items = append(vm.Items, itemView{
			Name:     ln.ItemName,
			Price:    ln.Price.StringFixed(2),
			Quantity: ln.Quantity,
			Subtotal: ln.Subtotal.StringFixed(2),
			Tax:      ln.Tax.StringFixed(2),
			Total:    ln.Total.StringFixed(2),
		})
	}
	s.render(w, "receipt.html", vm)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id := r.FormValue("id")
	if id == "" {
		redirectErr(w, r, "/receipts", "Invalid transaction ID")
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	err := s.mgr.DeleteTransaction(ctx, id)
	if errors.Is(err, shop.ErrNotFound) {
		redirectErr(w, r, "/receipts", "Transaction not found")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	s.pub.PublishJSON(ctx, events.RKTransactionDeleted, events.TransactionDeletedPayload{TransactionID: id})
	redirectMsg(w, r, "/receipts", "Transaction deleted successfully")
}

func (s *Server) handleAPICart(w http.ResponseWriter, r *http.Request) {
	cart := s.sessionCart(w, r)
	sub, tax, total := cart.Totals()

	type apiItem struct {
		Name     string `json:"name"`
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}
	resp := struct {
		Items    []apiItem `json:"items"`
		Subtotal string    `json:"subtotal"`
		Tax      string    `json:"tax"`
		Total    string    `json:"total"`
	}{
		Items:    []apiItem{},
		Subtotal: sub.StringFixed(2),
		Tax:      tax.StringFixed(2),
		Total:    total.StringFixed(2),
	}
	for _, it := range cart.Items() {
		resp.Items = append(resp.Items, apiItem{
			Name:     it.Name,
			Price:    it.UnitPrice.StringFixed(2),
			Quantity: it.Quantity,
			Subtotal: it.Subtotal().StringFixed(2),
			Tax:      it.Tax().StringFixed(2),
			Total:    it.Total().StringFixed(2),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("encode cart response")
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.tpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// fail reports a storage-level failure. User mistakes never land here.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var se *store.StorageError
	if errors.As(err, &se) {
		log.Error().Err(err).Msg("record store failure")
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// userMessage maps domain errors to the flash text shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shop.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, shop.ErrNotFound):
		return "Item not found in cart"
	case errors.Is(err, shop.ErrInvalidInput):
		return capitalizeAfterPrefix(err)
	default:
		return "Failed to complete the operation"
	}
}

// capitalizeAfterPrefix turns "invalid input: quantity must be at least 1"
// into "Quantity must be at least 1".
func capitalizeAfterPrefix(err error) string {
	msg := err.Error()
	const prefix = "invalid input: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		msg = msg[len(prefix):]
	}
	if msg == "" {
		return "Invalid input"
	}
	b := []byte(msg)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func redirectMsg(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectErr(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?err="+url.QueryEscape(msg), http.StatusSeeOther)
}
