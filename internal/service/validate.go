package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aquaponto/aquaponto/internal/constants"
)

var nonDigitPattern = regexp.MustCompile(`\D`)

// OnlyDigits strips every non-digit rune
func OnlyDigits(value string) string {
	return nonDigitPattern.ReplaceAllString(value, "")
}

// NormalizeCNPJ validates the CNPJ check digits and returns the 14-digit form
func NormalizeCNPJ(cnpj string) (string, error) {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return "", ErrInvalidCNPJ
	}
	// all-same-digit sequences pass the checksum but are not valid documents
	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return "", ErrInvalidCNPJ
	}
	if digits[12] != cnpjCheckDigit(digits[:12]) || digits[13] != cnpjCheckDigit(digits[:13]) {
		return "", ErrInvalidCNPJ
	}
	return digits, nil
}

// cnpjCheckDigit computes the modulus-11 check digit over the given prefix
func cnpjCheckDigit(prefix string) byte {
	weight := 2
	sum := 0
	for i := len(prefix) - 1; i >= 0; i-- {
		sum += int(prefix[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + 11 - remainder)
}

// NormalizeCEP returns the 8-digit CEP form
func NormalizeCEP(cep string) (string, error) {
	digits := OnlyDigits(cep)
	if len(digits) != 8 {
		return "", ErrInvalidCEP
	}
	return digits, nil
}

// NormalizePhone returns the digits-only phone with the 55 country code
// prefixed. Accepts 10/11-digit national numbers and already-prefixed ones.
func NormalizePhone(phone string) (string, error) {
	digits := OnlyDigits(phone)
	if strings.HasPrefix(digits, constants.PhoneCountryCode) && (len(digits) == 12 || len(digits) == 13) {
		return digits, nil
	}
	if len(digits) == 10 || len(digits) == 11 {
		return constants.PhoneCountryCode + digits, nil
	}
	return "", ErrInvalidPhone
}

// Slugify builds a url-safe slug from a trade name
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(deaccent(r))
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func deaccent(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ã', 'ä':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'õ', 'ö':
		return 'o'
	case 'ú', 'ù', 'û', 'ü':
		return 'u'
	case 'ç':
		return 'c'
	case 'ñ':
		return 'n'
	default:
		return r
	}
}
