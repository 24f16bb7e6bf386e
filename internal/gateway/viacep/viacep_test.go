package viacep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookupMapsAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/60115000/json/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cep": "60115-000",
			"logradouro": "Rua Osvaldo Cruz",
			"complemento": "até 999",
			"bairro": "Meireles",
			"localidade": "Fortaleza",
			"uf": "ce"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	address, err := client.Lookup(context.Background(), "60115000")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if address.CEP != "60115000" {
		t.Fatalf("cep want 60115000 got %s", address.CEP)
	}
	if address.Street != "Rua Osvaldo Cruz" || address.Neighborhood != "Meireles" {
		t.Fatalf("unexpected address: %+v", address)
	}
	if address.City != "Fortaleza" || address.UF != "CE" {
		t.Fatalf("city/uf want Fortaleza/CE got %s/%s", address.City, address.UF)
	}
}

func TestLookupUnknownCEP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, ErrCEPNotFound) {
		t.Fatalf("want ErrCEPNotFound got %v", err)
	}
}

func TestLookupUnknownCEPStringErro(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": "true"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Lookup(context.Background(), "99999999"); !errors.Is(err, ErrCEPNotFound) {
		t.Fatalf("want ErrCEPNotFound got %v", err)
	}
}

func TestLookupRejectsMalformedCEPLocally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("malformed CEP must not reach the API")
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	for _, cep := range []string{"", "123", "60115-000", "6011500a"} {
		if _, err := client.Lookup(context.Background(), cep); !errors.Is(err, ErrInvalidCEP) {
			t.Fatalf("cep %q want ErrInvalidCEP got %v", cep, err)
		}
	}
}

func TestLookupBadRequestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Lookup(context.Background(), "60115000"); !errors.Is(err, ErrInvalidCEP) {
		t.Fatalf("want ErrInvalidCEP got %v", err)
	}
}

func TestLookupUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Lookup(context.Background(), "60115000"); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("want ErrRequestFailed got %v", err)
	}
}
