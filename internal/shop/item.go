package shop

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TaxRate is the fixed sales tax applied to every subtotal (10.44%).
var TaxRate = decimal.RequireFromString("0.1044")

// Input limits, enforced on Cart.Add and Cart.UpdateQuantity.
const (
	MaxNameLength = 100
	MaxQuantity   = 1000
)

var MaxUnitPrice = decimal.RequireFromString("999999.99")

// ShoppingItem is one line of the cart: a named product, its unit price
// and how many units are being bought.
type ShoppingItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func NewShoppingItem(name string, unitPrice decimal.Decimal, quantity int) (ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if err := validateItem(name, unitPrice, quantity); err != nil {
		return ShoppingItem{}, err
	}
	return ShoppingItem{Name: name, UnitPrice: unitPrice, Quantity: quantity}, nil
}

// Subtotal is unit price times quantity, kept at full precision.
func (it ShoppingItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it ShoppingItem) Tax() decimal.Decimal {
	return TaxOn(it.Subtotal())
}

func (it ShoppingItem) Total() decimal.Decimal {
	return it.Subtotal().Add(it.Tax())
}

// TaxOn computes the tax owed on a subtotal, rounded half-up to cents.
// The same rule is applied per item, per cart and per receipt, so the
// three levels never disagree on a stored amount.
func TaxOn(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

func validateItem(name string, unitPrice decimal.Decimal, quantity int) error {
	if name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: item name must be %d characters or less", ErrInvalidInput, MaxNameLength)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if unitPrice.GreaterThan(MaxUnitPrice) {
		return fmt.Errorf("%w: price must be at most %s", ErrInvalidInput, MaxUnitPrice.StringFixed(2))
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be %d or less", ErrInvalidInput, MaxQuantity)
	}
	return nil
}
