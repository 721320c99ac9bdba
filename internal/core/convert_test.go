package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// DigitsOnly Tests
// ----------------------------------------------------------------------------

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123.456.789-09", "12345678909"},
		{"(11) 91234-5678", "11912345678"},
		{"abc", ""},
		{"", ""},
		{"１２3", "3"}, // full-width digits are not ASCII digits
	}

	for _, tt := range tests {
		if got := DigitsOnly(tt.input); got != tt.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// ClassifyDocument Tests
// ----------------------------------------------------------------------------

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind PersonKind
		wantCPF  string
		wantCNPJ string
	}{
		{
			name:     "formatted cpf",
			input:    "123.456.789-09",
			wantKind: Individual,
			wantCPF:  "12345678909",
		},
		{
			name:     "formatted cnpj",
			input:    "12.345.678/0001-95",
			wantKind: Organization,
			wantCNPJ: "12345678000195",
		},
		{
			name:     "zero cpf",
			input:    "000.000.000-00",
			wantKind: Individual,
		},
		{
			name:     "zero cnpj",
			input:    "00000000000000",
			wantKind: Individual,
		},
		{
			name:     "wrong length",
			input:    "12345",
			wantKind: Individual,
		},
		{
			name:     "blank",
			input:    "",
			wantKind: Individual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ClassifyDocument(tt.input)
			if doc.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", doc.Kind, tt.wantKind)
			}
			if doc.CPF.Valid && doc.CNPJ.Valid {
				t.Fatal("CPF and CNPJ must not both be set")
			}
			if got := textOrEmpty(doc.CPF.String, doc.CPF.Valid); got != tt.wantCPF {
				t.Errorf("CPF = %q, want %q", got, tt.wantCPF)
			}
			if got := textOrEmpty(doc.CNPJ.String, doc.CNPJ.Valid); got != tt.wantCNPJ {
				t.Errorf("CNPJ = %q, want %q", got, tt.wantCNPJ)
			}
		})
	}
}

func textOrEmpty(s string, valid bool) string {
	if !valid {
		return ""
	}
	return s
}

// ----------------------------------------------------------------------------
// Contact Field Tests
// ----------------------------------------------------------------------------

func TestToEmail(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"ana@example.com", true, "ana@example.com"},
		{"  ana.souza+loja@mail.com.br ", true, "ana.souza+loja@mail.com.br"},
		{"ana@example", false, ""},
		{"ana example.com", false, ""},
		{"@example.com", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got := ToEmail(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("ToEmail(%q) = {%q, %v}, want {%q, %v}", tt.input, got.String, got.Valid, tt.want, tt.wantValid)
		}
	}
}

func TestToPostalCode(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"01310-100", true, "01310100"},
		{"01310100", true, "01310100"},
		{"1234", false, ""},
		{"013101000", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got := ToPostalCode(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("ToPostalCode(%q) = {%q, %v}, want {%q, %v}", tt.input, got.String, got.Valid, tt.want, tt.wantValid)
		}
	}
}

func TestToPhone(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"(11) 91234-5678", true, "11912345678"},
		{"(41) 3333-4444", true, "4133334444"},
		{"123", false, ""},
		{"3333-4444", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got := ToPhone(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("ToPhone(%q) = {%q, %v}, want {%q, %v}", tt.input, got.String, got.Valid, tt.want, tt.wantValid)
		}
	}
}

// ----------------------------------------------------------------------------
// ToISODate Tests
// ----------------------------------------------------------------------------

func TestToISODate(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"25.12.2023", true, "2023-12-25"},
		{"5/1/2023", true, "2023-01-05"},
		{"05/01/2023", true, "2023-01-05"},
		{" 1.2.1990 ", true, "1990-02-01"},
		{"31.02.2023", false, ""},
		{"2023-12-25", false, ""},
		{"25.12.23", false, ""},
		{"not-a-date", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got := ToISODate(tt.input)
		if got.Valid != tt.wantValid {
			t.Errorf("ToISODate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			continue
		}
		if got.Valid {
			if s := got.Time.Format("2006-01-02"); s != tt.want {
				t.Errorf("ToISODate(%q) = %q, want %q", tt.input, s, tt.want)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// ToFlag / ToStatus / ToCode Tests
// ----------------------------------------------------------------------------

func TestToFlag(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"S", true},
		{"s", true},
		{" S ", true},
		{"N", false},
		{"SIM", false},
		{"", false},
		{"1", false},
	}

	for _, tt := range tests {
		if got := ToFlag(tt.input); got != tt.want {
			t.Errorf("ToFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"S", StatusActive},
		{"", StatusActive},
		{"  ", StatusActive},
		{"N", StatusInactive},
		{"X", StatusInactive},
	}

	for _, tt := range tests {
		if got := ToStatus(tt.input); got != tt.want {
			t.Errorf("ToStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToCode(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 7 ", 7, false},
		{"", 0, false},
		{"A12", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ToCode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ToCode(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// CleanText Tests
// ----------------------------------------------------------------------------

func TestCleanText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{"trims", "  Maria  ", true, "Maria"},
		{"blank", "   ", false, ""},
		{"empty", "", false, ""},
		{"lowercase mojibake", "JoÃ£o ConceiÃ§Ã£o", true, "João Conceição"},
		{"acute accents", "JosÃ© MÃ¡rcio", true, "José Márcio"},
		{"uppercase mojibake", "SÃƒO JOÃƒO", true, "SÃO JOÃO"},
		{"cedilla uppercase", "CONCEIÃ‡ÃƒO", true, "CONCEIÇÃO"},
		{"ordinal", "NÂº 10", true, "Nº 10"},
		{"decomposed accent composes", "Jose\u0301", true, "Jos\u00e9"},
		{"clean text unchanged", "São Paulo", true, "São Paulo"},
		{"tilde before space untouched", "IRMÃ SILVA", true, "IRMÃ SILVA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("CleanText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.String != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got.String, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToDecimal Tests
// ----------------------------------------------------------------------------

func TestToDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.234,56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"R$ 1.500,00", "1500"},
		{"-10,5", "-10.5"},
		{"500", "500"},
		{"", "0"},
		{"abc", "0"},
		{"1,2,3", "0"},
	}

	for _, tt := range tests {
		got := ToDecimal(tt.input)
		want := decimal.RequireFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("ToDecimal(%q) = %s, want %s", tt.input, got, want)
		}
	}
}
