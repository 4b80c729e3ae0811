package checkout

import (
	"strings"
	"testing"

	"github.com/gasonil/storefront/internal/domain"
)

func sampleAddress() domain.DeliveryAddress {
	return domain.DeliveryAddress{
		PostalAddress: domain.PostalAddress{
			PostalCode: "01001000",
			Street:     "Praça da Sé",
			District:   "Sé",
			City:       "São Paulo",
			StateCode:  "SP",
		},
		Number: "123",
	}
}

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{Name: "Pizza", UnitPrice: 3000, Quantity: 2},
		{Name: "Soda", UnitPrice: 500, Quantity: 1},
	}
}

func TestMessageFixedOrder(t *testing.T) {
	msg := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentCard},
	})
	rendered := msg.Render()

	markers := []string{
		"🧾 *NOVO PEDIDO GASONIL*",
		"🏠 *ENDEREÇO DE ENTREGA:*",
		"• CEP: 01001000",
		"• Rua: Praça da Sé",
		"• **NÚMERO: 123**",
		"• Bairro/Cidade/UF: Sé, São Paulo/SP",
		"✅ *PAGAMENTO:* CARTAO",
		"📦 *ITENS DO PEDIDO*",
		"• Pizza — Qtd: 2 = R$ 60,00",
		"• Soda — Qtd: 1 = R$ 5,00",
		"💰 *TOTAL:* R$ 65,00",
		"*Aguarde a confirmação da entrega!*",
	}

	last := -1
	for _, marker := range markers {
		idx := strings.Index(rendered, marker)
		if idx < 0 {
			t.Fatalf("missing %q in message:\n%s", marker, rendered)
		}
		if idx <= last {
			t.Fatalf("marker %q out of order in message:\n%s", marker, rendered)
		}
		last = idx
	}
}

func TestMessageOptionalAddressLines(t *testing.T) {
	addr := sampleAddress()
	addr.Complement = "Apto 42"
	addr.Reference = "Em frente à praça"

	rendered := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: addr,
		Payment: domain.PaymentSelection{Method: domain.PaymentPix},
	}).Render()

	if !strings.Contains(rendered, "• Complemento: Apto 42") {
		t.Fatalf("expected complement line:\n%s", rendered)
	}
	if !strings.Contains(rendered, "• Ponto de Ref.: Em frente à praça") {
		t.Fatalf("expected reference line:\n%s", rendered)
	}

	bare := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentPix},
	}).Render()
	if strings.Contains(bare, "Complemento") || strings.Contains(bare, "Ponto de Ref.") {
		t.Fatalf("expected optional lines omitted when empty:\n%s", bare)
	}
}

func TestMessageCashChange(t *testing.T) {
	tendered := domain.Centavos(7000)
	rendered := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentCash, Amount: &tendered},
	}).Render()

	if !strings.Contains(rendered, "*TROCO NECESSÁRIO:* R$ 5,00 (Para: R$ 70,00)") {
		t.Fatalf("expected change line:\n%s", rendered)
	}
}

func TestMessageCashExactPayment(t *testing.T) {
	tendered := domain.Centavos(6500)
	rendered := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentCash, Amount: &tendered},
	}).Render()

	if !strings.Contains(rendered, "*TROCO:* Não Necessário (Valor exato)") {
		t.Fatalf("expected no-change note:\n%s", rendered)
	}
	if strings.Contains(rendered, "TROCO NECESSÁRIO") {
		t.Fatalf("expected no change amount for exact payment:\n%s", rendered)
	}
}

func TestMessageDeterministic(t *testing.T) {
	in := OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentCard},
	}
	if NewMessage(in).Render() != NewMessage(in).Render() {
		t.Fatalf("expected identical inputs to render identically")
	}
}

func TestDeepLink(t *testing.T) {
	msg := NewMessage(OrderInput{
		Items:   sampleItems(),
		Address: sampleAddress(),
		Payment: domain.PaymentSelection{Method: domain.PaymentCard},
	})
	link := DeepLink("5531999306022", msg)

	if !strings.HasPrefix(link, "https://wa.me/5531999306022?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "%0A") {
		t.Fatalf("expected encoded line breaks in link: %s", link)
	}
	if strings.Contains(link, "+") {
		t.Fatalf("expected %%20 space encoding, got plus sign: %s", link)
	}
	if strings.Contains(link, " ") {
		t.Fatalf("expected no raw spaces in link: %s", link)
	}
}
