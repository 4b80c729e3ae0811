package domain

import "strings"

// LineItem is one distinct product entry in a cart. Name is the unique key
// within the cart; Quantity is always >= 1 while the item is present.
type LineItem struct {
	Name      string
	UnitPrice Centavos
	Quantity  int
}

// Subtotal returns unit price times quantity.
func (i LineItem) Subtotal() Centavos {
	return i.UnitPrice * Centavos(i.Quantity)
}

// Cart is an ordered collection of line items, at most one per distinct
// name. Insertion order is preserved; adds of an existing name merge into
// the existing entry.
type Cart struct {
	Items []LineItem
}

// Add merges into an existing item with the same name or appends a new item
// with quantity 1. Matching is case-sensitive on the trimmed name.
func (c *Cart) Add(name string, unitPrice Centavos) {
	name = strings.TrimSpace(name)
	for i := range c.Items {
		if c.Items[i].Name == name {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, LineItem{Name: name, UnitPrice: unitPrice, Quantity: 1})
}

// SetQuantity stores the quantity at index, clamping values below 1 to 1.
func (c *Cart) SetQuantity(index, quantity int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	c.Items[index].Quantity = quantity
	return true
}

// Increment raises the quantity at index by one.
func (c *Cart) Increment(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items[index].Quantity++
	return true
}

// Decrement lowers the quantity at index by one. At quantity 1 the item is
// removed entirely rather than clamped.
func (c *Cart) Decrement(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	if c.Items[index].Quantity > 1 {
		c.Items[index].Quantity--
		return true
	}
	return c.Remove(index)
}

// Remove deletes the item at index.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

// Total recomputes the cart total from scratch on every call.
func (c Cart) Total() Centavos {
	var total Centavos
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			continue
		}
		total += item.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart holds no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (c Cart) Clone() Cart {
	if len(c.Items) == 0 {
		return Cart{Items: []LineItem{}}
	}
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// PostalAddress is the result of a successful postal-code lookup. Only the
// fields ViaCEP resolves are present; the house number comes later from the
// visitor.
type PostalAddress struct {
	PostalCode string
	Street     string
	District   string
	City       string
	StateCode  string
}

// DeliveryAddress extends a validated PostalAddress with the visitor-entered
// details. Its presence is the gate token that permits cart mutation.
type DeliveryAddress struct {
	PostalAddress
	Number     string
	Complement string
	Reference  string
}

// PaymentMethod identifies one of the storefront's accepted payment methods.
type PaymentMethod string

// Accepted payment methods. Card is the default selection.
const (
	PaymentCard PaymentMethod = "cartao"
	PaymentCash PaymentMethod = "dinheiro"
	PaymentPix  PaymentMethod = "pix"
)

// Valid reports whether the method belongs to the closed set.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentPix:
		return true
	}
	return false
}

// PaymentSelection is the visitor's current payment choice. Amount is only
// meaningful for cash and records the tendered value.
type PaymentSelection struct {
	Method PaymentMethod
	Amount *Centavos
}

// ChangeInputPolicy describes whether the change-due input applies to the
// selected method.
type ChangeInputPolicy struct {
	Show     bool
	Required bool
}

// PolicyFor derives the change-input policy: visible and required only for
// cash.
func PolicyFor(method PaymentMethod) ChangeInputPolicy {
	if method == PaymentCash {
		return ChangeInputPolicy{Show: true, Required: true}
	}
	return ChangeInputPolicy{}
}
