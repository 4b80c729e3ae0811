// Package checkout assembles the order message handed off to the messaging
// transport. The message is built as ordered sections; encoding for the
// destination transport happens in a single step at link-building time.
package checkout

import (
	"fmt"
	"strings"

	"github.com/gasonil/storefront/internal/domain"
)

const (
	headerLine = "🧾 *NOVO PEDIDO GASONIL*"
	footerLine = "*Aguarde a confirmação da entrega!*"
)

// Message is the fully assembled order text, kept as structured sections
// until serialisation.
type Message struct {
	sections [][]string
}

// OrderInput carries everything the message needs. Callers are responsible
// for the checkout preconditions; the builder itself is pure.
type OrderInput struct {
	Items   []domain.LineItem
	Address domain.DeliveryAddress
	Payment domain.PaymentSelection
}

// NewMessage assembles the order message in fixed section order: header,
// delivery address, payment (with cash change when applicable), itemised
// list, grand total, footer.
func NewMessage(in OrderInput) Message {
	total := domain.Cart{Items: in.Items}.Total()

	sections := [][]string{
		{headerLine},
		addressSection(in.Address),
		paymentSection(in.Payment, total),
		itemsSection(in.Items),
		{fmt.Sprintf("💰 *TOTAL:* %s", total.Format())},
		{footerLine},
	}
	return Message{sections: sections}
}

// Render serialises the sections, joining lines with newlines and sections
// with a blank line. The result is deterministic for identical inputs.
func (m Message) Render() string {
	parts := make([]string, 0, len(m.sections))
	for _, section := range m.sections {
		parts = append(parts, strings.Join(section, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func addressSection(addr domain.DeliveryAddress) []string {
	lines := []string{
		"🏠 *ENDEREÇO DE ENTREGA:*",
		fmt.Sprintf("• CEP: %s", addr.PostalCode),
		fmt.Sprintf("• Rua: %s", addr.Street),
		fmt.Sprintf("• **NÚMERO: %s**", addr.Number),
	}
	if addr.Complement != "" {
		lines = append(lines, fmt.Sprintf("• Complemento: %s", addr.Complement))
	}
	if addr.Reference != "" {
		lines = append(lines, fmt.Sprintf("• Ponto de Ref.: %s", addr.Reference))
	}
	lines = append(lines, fmt.Sprintf("• Bairro/Cidade/UF: %s, %s/%s", addr.District, addr.City, addr.StateCode))
	return lines
}

func paymentSection(payment domain.PaymentSelection, total domain.Centavos) []string {
	lines := []string{
		fmt.Sprintf("✅ *PAGAMENTO:* %s", strings.ToUpper(string(payment.Method))),
	}
	if payment.Method != domain.PaymentCash || payment.Amount == nil {
		return lines
	}

	tendered := *payment.Amount
	if tendered > total {
		change := tendered - total
		lines = append(lines, fmt.Sprintf("*TROCO NECESSÁRIO:* %s (Para: %s)", change.Format(), tendered.Format()))
	} else {
		lines = append(lines, "*TROCO:* Não Necessário (Valor exato)")
	}
	return lines
}

func itemsSection(items []domain.LineItem) []string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "📦 *ITENS DO PEDIDO*")
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("• %s — Qtd: %d = %s", item.Name, item.Quantity, item.Subtotal().Format()))
	}
	return lines
}
