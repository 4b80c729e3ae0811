package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Centavos is a monetary amount in BRL minor units. Keeping money integral
// avoids float drift across repeated cart mutations.
type Centavos int64

// ErrInvalidAmount indicates a decimal string could not be parsed as money.
var ErrInvalidAmount = errors.New("money: invalid amount")

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Format renders the amount as a BRL price string with the pt-BR decimal
// comma, e.g. 6500 -> "R$ 65,00".
func (c Centavos) Format() string {
	negative := c < 0
	if negative {
		c = -c
	}
	value := float64(c) / 100
	formatted := brlPrinter.Sprintf("%v", number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	if negative {
		return "-R$ " + formatted
	}
	return "R$ " + formatted
}

// ParseDecimal converts a decimal price string into centavos. Both "30.00"
// and "30,00" forms are accepted, with at most two fraction digits.
func ParseDecimal(raw string) (Centavos, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "R$")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}

	// Normalise the pt-BR comma separator; thousands separators are not
	// accepted.
	trimmed = strings.ReplaceAll(trimmed, ",", ".")
	if strings.Count(trimmed, ".") > 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	whole := trimmed
	fraction := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole = trimmed[:idx]
		fraction = trimmed[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(fraction) > 2 {
		return 0, fmt.Errorf("%w: %q has more than two fraction digits", ErrInvalidAmount, raw)
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	cents, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	return Centavos(units*100 + cents), nil
}
