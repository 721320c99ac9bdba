package core

// validation.go checks the input header and describes field-level problems.
//
// A missing column is not fatal: the row processor reads it as blank, so the
// header check only produces the list for a warning.

import (
	"fmt"
	"strings"
)

// Input column names of the ERP export.
const (
	ColCode          = "CODIGO"
	ColDocument      = "CNPJ"
	ColTradeName     = "FANTASIA"
	ColLegalName     = "RAZAO"
	ColRG            = "RG"
	ColIE            = "IE"
	ColPhone1        = "FONE1"
	ColPhone2        = "FONE2"
	ColMobile1       = "CELULAR1"
	ColMobile2       = "CELULAR2"
	ColWhatsApp      = "WHATSAPP"
	ColEmail         = "EMAIL1"
	ColPostalCode    = "CEP"
	ColStreet        = "ENDERECO"
	ColNumber        = "NUMERO"
	ColComplement    = "COMPLEMENTO"
	ColDistrict      = "BAIRRO"
	ColCity          = "MUNICIPIO"
	ColState         = "UF"
	ColCityIBGE      = "CODMUN"
	ColBirthDate     = "DT_NASC"
	ColGender        = "SEXO"
	ColMaritalStatus = "ECIVIL"
	ColMother        = "MAE"
	ColFather        = "PAI"
	ColCreditLimit   = "LIMITE"
	ColCustomer      = "CLI"
	ColSupplier      = "FORN"
	ColEmployee      = "FUN"
	ColAdministrator = "ADM"
	ColSPC           = "SPC"
	ColCCF           = "CCF"
	ColTaxRegime     = "REGIME_TRIBUTARIO"
	ColReceiptType   = "TIPO_RECEBIMENTO"
	ColActive        = "ATIVO"
)

// ExpectedColumns is the header set the processor reads, in export order.
var ExpectedColumns = []string{
	ColCode, ColDocument, ColTradeName, ColLegalName, ColRG, ColIE,
	ColPhone1, ColPhone2, ColMobile1, ColMobile2, ColWhatsApp, ColEmail,
	ColPostalCode, ColStreet, ColNumber, ColComplement, ColDistrict, ColCity, ColState, ColCityIBGE,
	ColBirthDate, ColGender, ColMaritalStatus, ColMother, ColFather,
	ColCreditLimit, ColCustomer, ColSupplier, ColEmployee, ColAdministrator, ColSPC, ColCCF,
	ColTaxRegime, ColReceiptType, ColActive,
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// MissingColumns returns the expected columns absent from header.
// Matching is exact after trimming, like the processor's lookups.
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range ExpectedColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// ValidateHeaders returns an error listing missing expected columns, or nil.
func ValidateHeaders(header []string) error {
	missing := MissingColumns(header)
	if len(missing) > 0 {
		return fmt.Errorf("column not found: %s", strings.Join(missing, ", "))
	}
	return nil
}
