package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/arestrepo/shopcart/internal/shop"
)

const sessionCookie = "shopcart_sid"

// sessionCarts holds one in-memory cart per browser session.
type sessionCarts struct {
	mu    sync.Mutex
	carts map[string]*shop.Cart
}

func newSessionCarts() *sessionCarts {
	return &sessionCarts{carts: map[string]*shop.Cart{}}
}

func (s *sessionCarts) get(id string) *shop.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		c = shop.NewCart()
		s.carts[id] = c
	}
	return c
}

// sessionCart returns the cart for the request's session, minting a new
// session cookie when the browser has none yet.
func (s *Server) sessionCart(w http.ResponseWriter, r *http.Request) *shop.Cart {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return s.carts.get(c.Value)
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})
	return s.carts.get(sid)
}
