package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arestrepo/shopcart/internal/store"
	"github.com/arestrepo/shopcart/internal/txn"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	st, err := store.OpenCSV(filepath.Join(t.TempDir(), "transactions.csv"))
	require.NoError(t, err)
	mgr, err := txn.NewManager(context.Background(), st)
	require.NoError(t, err)

	ts := httptest.NewServer(New(mgr, nil).Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	return ts, client
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAddItemShowsUpOnCartPage(t *testing.T) {
	ts, client := newTestServer(t)

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"3.50"}, "quantity": {"2"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := body(t, resp)
	assert.Contains(t, page, "Added 2 x Milk to cart")
	assert.Contains(t, page, "Milk")
	assert.Contains(t, page, "$7.73")
}

func TestAddItemInvalidInput(t *testing.T) {
	ts, client := newTestServer(t)

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"abc"}, "quantity": {"1"},
	})
	page := body(t, resp)
	assert.Contains(t, page, "Please enter a valid price")

	resp = postForm(t, client, ts.URL+"/add", url.Values{
		"name": {""}, "price": {"1.00"}, "quantity": {"1"},
	})
	page = body(t, resp)
	assert.Contains(t, page, "Item name is required")
}

func TestCartAPISnapshot(t *testing.T) {
	ts, client := newTestServer(t)

	postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"3.50"}, "quantity": {"2"},
	})
	postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Bread"}, "price": {"2.25"}, "quantity": {"1"},
	})

	resp, err := client.Get(ts.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got struct {
		Items []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Milk", got.Items[0].Name)
	assert.Equal(t, "9.25", got.Subtotal)
	assert.Equal(t, "0.97", got.Tax)
	assert.Equal(t, "10.22", got.Total)
}

func TestCheckoutFlow(t *testing.T) {
	ts, client := newTestServer(t)

	// Empty cart cannot check out.
	resp := postForm(t, client, ts.URL+"/checkout", url.Values{})
	assert.Contains(t, body(t, resp), "Cart is empty")

	postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"3.50"}, "quantity": {"2"},
	})
	resp = postForm(t, client, ts.URL+"/checkout", url.Values{})
	page := body(t, resp)
	assert.Contains(t, page, "Transaction completed! Transaction ID: TXN_")
	assert.Contains(t, page, "Your cart is empty")

	// The receipt is now listed.
	resp2, err := client.Get(ts.URL + "/receipts")
	require.NoError(t, err)
	defer resp2.Body.Close()
	listing := body(t, resp2)
	assert.Contains(t, listing, "TXN_")
	assert.Contains(t, listing, "$7.73")
}

func TestReceiptDetailAndDelete(t *testing.T) {
	ts, client := newTestServer(t)

	postForm(t, client, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"3.50"}, "quantity": {"2"},
	})
	resp := postForm(t, client, ts.URL+"/checkout", url.Values{})
	page := body(t, resp)

	const marker = "Transaction ID: "
	i := strings.Index(page, marker)
	require.GreaterOrEqual(t, i, 0)
	id := page[i+len(marker):]
	id = id[:strings.IndexAny(id, "<\n ")]

	resp2, err := client.Get(ts.URL + "/receipt?id=" + url.QueryEscape(id))
	require.NoError(t, err)
	defer resp2.Body.Close()
	detail := body(t, resp2)
	assert.Contains(t, detail, id)
	assert.Contains(t, detail, "Milk")
	assert.Contains(t, detail, "$7.73")

	resp3 := postForm(t, client, ts.URL+"/receipt/delete", url.Values{"id": {id}})
	assert.Contains(t, body(t, resp3), "Transaction deleted successfully")

	resp4, err := client.Get(ts.URL + "/receipt?id=" + url.QueryEscape(id))
	require.NoError(t, err)
	defer resp4.Body.Close()
	assert.Contains(t, body(t, resp4), "Transaction not found")
}

func TestSessionsDoNotShareCarts(t *testing.T) {
	ts, clientA := newTestServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	clientB := &http.Client{Jar: jar}

	postForm(t, clientA, ts.URL+"/add", url.Values{
		"name": {"Milk"}, "price": {"3.50"}, "quantity": {"2"},
	})

	resp, err := clientB.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, body(t, resp), "Your cart is empty")
}

func TestMethodNotAllowed(t *testing.T) {
	ts, client := newTestServer(t)
	resp, err := client.Get(ts.URL + "/add")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
