// Package cep resolves Brazilian postal codes against the ViaCEP lookup
// service.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gasonil/storefront/internal/domain"
)

// Lookup failure taxonomy. All are recoverable and user-visible.
var (
	// ErrInvalidFormat indicates the raw input did not normalise to 8 digits.
	// The external service is never contacted in this case.
	ErrInvalidFormat = errors.New("cep: invalid format")
	// ErrNotFound indicates the service resolved no address for the code.
	ErrNotFound = errors.New("cep: not found")
	// ErrConnection indicates a transport or decode failure talking to the service.
	ErrConnection = errors.New("cep: connection error")
)

const defaultBaseURL = "https://viacep.com.br"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientDeps wires the transport and logging dependencies for the lookup client.
type ClientDeps struct {
	BaseURL    string
	HTTPClient httpDoer
	Logger     *zap.Logger
}

// Client performs postal-code lookups over HTTP.
type Client struct {
	baseURL string
	http    httpDoer
	logger  *zap.Logger
}

// NewClient constructs a lookup client, defaulting the base URL and transport.
func NewClient(deps ClientDeps) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	doer := deps.HTTPClient
	if doer == nil {
		doer = http.DefaultClient
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, http: doer, logger: logger}
}

// Normalize strips every non-digit rune from the raw input. The result is
// only a valid lookup key when it is exactly 8 digits long.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// viaCEPResponse mirrors the service payload. The error flag arrives as the
// bare boolean true on current responses and as the string "true" on older
// ones, so it is decoded leniently.
type viaCEPResponse struct {
	Erro       json.RawMessage `json:"erro"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
}

func (r viaCEPResponse) notFound() bool {
	flag := strings.Trim(strings.TrimSpace(string(r.Erro)), `"`)
	return strings.EqualFold(flag, "true")
}

// Lookup resolves a postal code into a partial address. The input is
// normalised first; anything other than 8 digits fails with ErrInvalidFormat
// before any network activity.
func (c *Client) Lookup(ctx context.Context, rawPostalCode string) (domain.PostalAddress, error) {
	code := Normalize(rawPostalCode)
	if len(code) != 8 {
		return domain.PostalAddress{}, fmt.Errorf("%w: need 8 digits, got %d", ErrInvalidFormat, len(code))
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PostalAddress{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("postal code lookup transport failure", zap.Error(err))
		return domain.PostalAddress{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("postal code lookup unexpected status", zap.Int("status", resp.StatusCode))
		return domain.PostalAddress{}, fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("postal code lookup decode failure", zap.Error(err))
		return domain.PostalAddress{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if payload.notFound() {
		return domain.PostalAddress{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	return domain.PostalAddress{
		PostalCode: code,
		Street:     strings.TrimSpace(payload.Logradouro),
		District:   strings.TrimSpace(payload.Bairro),
		City:       strings.TrimSpace(payload.Localidade),
		StateCode:  strings.TrimSpace(payload.UF),
	}, nil
}
