package domain

import "testing"

func TestCartAddMergesByName(t *testing.T) {
	var cart Cart
	cart.Add("Pizza", 3000)
	cart.Add("Pizza", 3000)
	cart.Add("Soda", 500)

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 distinct items, got %d", len(cart.Items))
	}
	if cart.Items[0].Name != "Pizza" || cart.Items[0].Quantity != 2 {
		t.Fatalf("expected Pizza x2 first, got %+v", cart.Items[0])
	}
	if cart.Items[1].Name != "Soda" || cart.Items[1].Quantity != 1 {
		t.Fatalf("expected Soda x1 appended, got %+v", cart.Items[1])
	}
	if cart.Total() != 6500 {
		t.Fatalf("expected total 6500, got %d", cart.Total())
	}
}

func TestCartAddTrimsName(t *testing.T) {
	var cart Cart
	cart.Add("  Pizza ", 3000)
	cart.Add("Pizza", 3000)

	if len(cart.Items) != 1 {
		t.Fatalf("expected trimmed names to merge, got %d items", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestCartSetQuantityClampsToOne(t *testing.T) {
	var cart Cart
	cart.Add("Pizza", 3000)

	for _, value := range []int{0, -3} {
		if !cart.SetQuantity(0, value) {
			t.Fatalf("expected set quantity to succeed for %d", value)
		}
		if cart.Items[0].Quantity != 1 {
			t.Fatalf("expected clamp to 1 for %d, got %d", value, cart.Items[0].Quantity)
		}
	}

	if !cart.SetQuantity(0, 7) {
		t.Fatalf("expected set quantity to succeed")
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}

	if cart.SetQuantity(5, 2) {
		t.Fatalf("expected out-of-range index to fail")
	}
}

func TestCartDecrementRemovesAtOne(t *testing.T) {
	var cart Cart
	cart.Add("Pizza", 3000)
	cart.Add("Soda", 500)
	cart.Increment(0)

	if !cart.Decrement(0) {
		t.Fatalf("expected decrement to succeed")
	}
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", cart.Items[0].Quantity)
	}

	if !cart.Decrement(0) {
		t.Fatalf("expected decrement at quantity 1 to succeed")
	}
	if len(cart.Items) != 1 || cart.Items[0].Name != "Soda" {
		t.Fatalf("expected Pizza removed, remaining %+v", cart.Items)
	}
}

func TestCartTotalRecomputesFresh(t *testing.T) {
	var cart Cart
	cart.Add("Pizza", 3000)
	cart.Add("Soda", 500)
	cart.SetQuantity(0, 3)
	cart.Remove(1)

	if got := cart.Total(); got != 9000 {
		t.Fatalf("expected total 9000, got %d", got)
	}

	cart.Remove(0)
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart")
	}
	if got := cart.Total(); got != 0 {
		t.Fatalf("expected zero total, got %d", got)
	}
}

func TestCartCloneIsIndependent(t *testing.T) {
	var cart Cart
	cart.Add("Pizza", 3000)

	dup := cart.Clone()
	dup.Items[0].Quantity = 99

	if cart.Items[0].Quantity != 1 {
		t.Fatalf("expected original untouched, got %d", cart.Items[0].Quantity)
	}
}

func TestPolicyFor(t *testing.T) {
	if policy := PolicyFor(PaymentCash); !policy.Show || !policy.Required {
		t.Fatalf("expected cash to require the change input, got %+v", policy)
	}
	for _, method := range []PaymentMethod{PaymentCard, PaymentPix} {
		if policy := PolicyFor(method); policy.Show || policy.Required {
			t.Fatalf("expected no change input for %s, got %+v", method, policy)
		}
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, method := range []PaymentMethod{PaymentCard, PaymentCash, PaymentPix} {
		if !method.Valid() {
			t.Fatalf("expected %s to be valid", method)
		}
	}
	if PaymentMethod("cheque").Valid() {
		t.Fatalf("expected unknown method to be invalid")
	}
}
