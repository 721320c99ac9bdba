package core

// convert.go normalizes raw cell values from the ERP export.
//
// The export is hand-maintained and inconsistent: phone numbers carry
// punctuation, dates use dots or slashes, amounts use a comma as the decimal
// separator, and text that went through a wrong encoding round-trip shows up
// as mojibake ("JoÃ£o"). Every function here is total: bad input yields an
// absent value (Valid=false) or a documented default, never an error.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const (
	cpfLength        = 11
	cnpjLength       = 14
	postalCodeLength = 8
	minPhoneLength   = 10
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Day-first layouts; single-digit layouts also accept two digits.
var dateLayouts = []string{"2.1.2006", "2/1/2006"}

// mojibakeReplacer repairs UTF-8 text that was decoded as Latin-1 once.
var mojibakeReplacer = strings.NewReplacer(
	"Ã¡", "á", "Ã©", "é", "Ã\u00ad", "í", "Ã³", "ó", "Ãº", "ú",
	"Ã\u00a0", "à", "Ã¢", "â", "Ãª", "ê", "Ã´", "ô",
	"Ã£", "ã", "Ãµ", "õ", "Ã§", "ç", "Ã¼", "ü",
	"Ã\u0081", "Á", "Ã‰", "É", "Ã\u008d", "Í", "Ã“", "Ó", "Ãš", "Ú",
	"Ã€", "À", "Ã‚", "Â", "ÃŠ", "Ê", "Ã”", "Ô",
	"Ãƒ", "Ã", "Ã•", "Õ", "Ã‡", "Ç",
	"Âº", "º", "Âª", "ª", "Â°", "°",
)

// Document is the outcome of classifying a CPF/CNPJ cell.
type Document struct {
	Kind PersonKind
	CPF  pgtype.Text
	CNPJ pgtype.Text
}

// DigitsOnly removes every non-digit character.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ClassifyDocument decides the person kind from a combined CPF/CNPJ cell.
// Anything that is neither a CPF nor a CNPJ falls back to an individual
// with no document.
func ClassifyDocument(raw string) Document {
	digits := DigitsOnly(raw)

	switch {
	case len(digits) == cpfLength && !allZeros(digits):
		return Document{Kind: Individual, CPF: text(digits)}
	case len(digits) == cnpjLength && !allZeros(digits):
		return Document{Kind: Organization, CNPJ: text(digits)}
	default:
		return Document{Kind: Individual}
	}
}

// ToEmail returns the trimmed address when it looks like an email.
func ToEmail(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return pgtype.Text{}
	}
	return text(s)
}

// ToPostalCode returns the 8-digit CEP or absent.
func ToPostalCode(s string) pgtype.Text {
	digits := DigitsOnly(s)
	if len(digits) != postalCodeLength {
		return pgtype.Text{}
	}
	return text(digits)
}

// ToPhone returns the phone digits when there are at least 10 (area code
// plus number).
func ToPhone(s string) pgtype.Text {
	digits := DigitsOnly(s)
	if len(digits) < minPhoneLength {
		return pgtype.Text{}
	}
	return text(digits)
}

// ToISODate parses a day-first date ("25.12.2023", "5/1/2023").
// Impossible calendar dates such as 31.02.2023 are absent.
func ToISODate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}
	return pgtype.Date{}
}

// ToFlag reports whether s is "S" (sim), ignoring case and surrounding space.
func ToFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "S")
}

// CleanText trims s, repairs known mojibake sequences and composes the
// result to NFC. Blank input is absent.
func CleanText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	s = norm.NFC.String(mojibakeReplacer.Replace(s))
	return text(s)
}

// ToDecimal parses an amount written with either separator. When both "."
// and "," appear, whichever comes last is the decimal separator. Unparseable
// input is zero.
func ToDecimal(s string) decimal.Decimal {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "R$")
	if s == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToCode parses the numeric record code. Blank is 0.
func ToCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ToStatus maps the ATIVO column. Blank means active.
func ToStatus(s string) Status {
	s = strings.TrimSpace(s)
	if s == "" || ToFlag(s) {
		return StatusActive
	}
	return StatusInactive
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func allZeros(digits string) bool {
	return strings.Trim(digits, "0") == ""
}
