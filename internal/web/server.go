// Package web is the HTTP presentation layer: it translates form posts
// into cart and transaction-manager calls and renders the results. All
// pricing rules live in the domain packages, not here.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/arestrepo/shopcart/internal/events"
	"github.com/arestrepo/shopcart/internal/txn"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	tpl   *template.Template
	mgr   *txn.Manager
	carts *sessionCarts
	pub   *events.Publisher
}

func New(mgr *txn.Manager, pub *events.Publisher) *Server {
	return &Server{
		tpl:   template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		mgr:   mgr,
		carts: newSessionCarts(),
		pub:   pub,
	}
}

// Handler wires the routes. CORS headers cover the JSON endpoint so a
// separate frontend can poll the cart.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/add", s.handleAdd)
	mux.HandleFunc("/update", s.handleUpdate)
	mux.HandleFunc("/remove", s.handleRemove)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/checkout", s.handleCheckout)
	mux.HandleFunc("/receipts", s.handleReceipts)
	mux.HandleFunc("/receipt", s.handleReceipt)
	mux.HandleFunc("/receipt/delete", s.handleDeleteReceipt)
	mux.HandleFunc("/api/cart", s.handleAPICart)
	return cors.Default().Handler(mux)
}

func (s *Server) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
