package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidCEP      = errors.New("viacep: invalid cep")
	ErrCEPNotFound     = errors.New("viacep: cep not found")
	ErrRequestFailed   = errors.New("viacep: request failed")
	ErrResponseInvalid = errors.New("viacep: response invalid")
)

const (
	defaultBaseURL = "https://viacep.com.br/ws"
	defaultTimeout = 3 * time.Second
)

// Address one CEP lookup result
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	UF           string `json:"uf"`
}

// Client ViaCEP lookup client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a ViaCEP client
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// viaCEPPayload wire format of the ViaCEP API. A bad CEP format returns
// HTTP 400; a well-formed but unknown CEP returns 200 with {"erro": true}.
type viaCEPPayload struct {
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
	Erro        json.RawMessage `json:"erro"`
}

// Lookup resolves a CEP (8 digits) into an address
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cep = strings.TrimSpace(cep)
	if len(cep) != 8 {
		return nil, ErrInvalidCEP
	}
	for _, ch := range cep {
		if ch < '0' || ch > '9' {
			return nil, ErrInvalidCEP
		}
	}

	endpoint := fmt.Sprintf("%s/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	var payload viaCEPPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	// "erro" is historically the bool true, some mirrors return "true"
	if len(payload.Erro) > 0 {
		erro := strings.Trim(strings.TrimSpace(string(payload.Erro)), `"`)
		if erro == "true" {
			return nil, ErrCEPNotFound
		}
	}

	return &Address{
		CEP:          strings.ReplaceAll(payload.CEP, "-", ""),
		Street:       payload.Logradouro,
		Complement:   payload.Complemento,
		Neighborhood: payload.Bairro,
		City:         payload.Localidade,
		UF:           strings.ToUpper(payload.UF),
	}, nil
}
