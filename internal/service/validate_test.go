package service

import (
	"errors"
	"testing"
)

func TestNormalizeCNPJAcceptsFormattedInput(t *testing.T) {
	got, err := NormalizeCNPJ("11.444.777/0001-61")
	if err != nil {
		t.Fatalf("normalize cnpj failed: %v", err)
	}
	if got != "11444777000161" {
		t.Fatalf("normalized cnpj want 11444777000161 got %s", got)
	}
}

func TestNormalizeCNPJRejectsBadChecksum(t *testing.T) {
	cases := []string{
		"11.444.777/0001-62", // wrong second check digit
		"11.444.777/0001-71", // wrong first check digit
		"114447770001",       // too short
		"114447770001611",    // too long
		"",                   // empty
	}
	for _, input := range cases {
		if _, err := NormalizeCNPJ(input); !errors.Is(err, ErrInvalidCNPJ) {
			t.Fatalf("cnpj %q: want ErrInvalidCNPJ got %v", input, err)
		}
	}
}

func TestNormalizeCNPJRejectsRepeatedDigits(t *testing.T) {
	// passes the modulus-11 checksum but is not a valid document
	if _, err := NormalizeCNPJ("00000000000000"); !errors.Is(err, ErrInvalidCNPJ) {
		t.Fatalf("want ErrInvalidCNPJ got %v", err)
	}
}

func TestNormalizeCEP(t *testing.T) {
	got, err := NormalizeCEP("60160-230")
	if err != nil {
		t.Fatalf("normalize cep failed: %v", err)
	}
	if got != "60160230" {
		t.Fatalf("normalized cep want 60160230 got %s", got)
	}
	if _, err := NormalizeCEP("6016023"); !errors.Is(err, ErrInvalidCEP) {
		t.Fatalf("want ErrInvalidCEP got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"(85) 99911-0001", "5585999110001"},  // 11-digit mobile
		{"85 3222 0001", "558532220001"},      // 10-digit landline
		{"+55 85 99911-0001", "5585999110001"}, // already prefixed
		{"558532220001", "558532220001"},      // prefixed landline
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.input)
		if err != nil {
			t.Fatalf("phone %q: unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("phone %q: want %s got %s", tc.input, tc.want, got)
		}
	}

	for _, input := range []string{"99911", "55 1234", "", "55999110001999"} {
		if _, err := NormalizePhone(input); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("phone %q: want ErrInvalidPhone got %v", input, err)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Água Azul Distribuidora", "agua-azul-distribuidora"},
		{"  São João  Bebidas ", "sao-joao-bebidas"},
		{"H2O---Já!", "h2o-ja"},
		{"Açaí & Cia", "acai-cia"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.want {
			t.Fatalf("slugify %q: want %s got %s", tc.input, tc.want, got)
		}
	}
}
