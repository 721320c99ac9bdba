package core

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// lineOffset converts a zero-based data row index to its CSV line number:
// line 1 is the header.
const lineOffset = 2

// Processor turns input rows into party records for one company.
type Processor struct {
	companyCode string
	logger      *slog.Logger
}

// NewProcessor creates a processor stamping records with companyCode.
// A nil logger uses slog.Default().
func NewProcessor(companyCode string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{companyCode: companyCode, logger: logger}
}

// LineNumber returns the CSV line number of the data row at index.
func LineNumber(index int) int {
	return index + lineOffset
}

// Process normalizes one row. It never panics; a failure while assembling
// the record becomes a ReasonUnexpected rejection.
func (p *Processor) Process(row Row, index int) RowResult {
	return p.processWith(p.build, row, index)
}

func (p *Processor) processWith(build func(Row, int) (*PartyRecord, *Rejection), row Row, index int) (result RowResult) {
	line := LineNumber(index)

	defer func() {
		if r := recover(); r != nil {
			result = p.reject(line, ReasonUnexpected, fmt.Errorf("panic while processing row: %v", r))
		}
	}()

	rec, rej := build(row, line)
	if rej != nil {
		return p.reject(rej.Line, rej.Reason, rej.Err)
	}
	return RowResult{Record: rec}
}

func (p *Processor) build(row Row, line int) (*PartyRecord, *Rejection) {
	doc := ClassifyDocument(row[ColDocument])

	name := CleanText(row[ColTradeName])
	if !name.Valid {
		name = CleanText(row[ColLegalName])
	}
	if !name.Valid {
		return nil, &Rejection{
			Line:   line,
			Reason: ReasonMissingName,
			Err:    ValidationError{Field: ColTradeName, Message: "required field is empty"},
		}
	}

	code, err := ToCode(row[ColCode])
	if err != nil {
		return nil, &Rejection{
			Line:   line,
			Reason: ReasonInvalidField,
			Err:    ValidationError{Field: ColCode, Value: row[ColCode], Message: "invalid number"},
		}
	}

	rec := &PartyRecord{
		CompanyCode: p.companyCode,
		Code:        code,
		Name:        name.String,
		Kind:        doc.Kind,

		CPF:       doc.CPF,
		CNPJ:      doc.CNPJ,
		RG:        CleanText(row[ColRG]),
		IE:        CleanText(row[ColIE]),
		LegalName: CleanText(row[ColLegalName]),

		Phone:    ToPhone(row[ColPhone1]),
		Phone2:   ToPhone(row[ColPhone2]),
		Mobile1:  ToPhone(row[ColMobile1]),
		Mobile2:  ToPhone(row[ColMobile2]),
		WhatsApp: ToPhone(row[ColWhatsApp]),
		Email:    ToEmail(row[ColEmail]),

		PostalCode: ToPostalCode(row[ColPostalCode]),
		Street:     CleanText(row[ColStreet]),
		Number:     CleanText(row[ColNumber]),
		Complement: CleanText(row[ColComplement]),
		District:   CleanText(row[ColDistrict]),
		City:       CleanText(row[ColCity]),
		State:      CleanText(row[ColState]),
		CityIBGE:   CleanText(row[ColCityIBGE]),

		BirthDate:     ToISODate(row[ColBirthDate]),
		Gender:        CleanText(row[ColGender]),
		MaritalStatus: CleanText(row[ColMaritalStatus]),
		MotherName:    CleanText(row[ColMother]),
		FatherName:    CleanText(row[ColFather]),

		CreditLimit: ToDecimal(row[ColCreditLimit]),
		Balance:     decimal.Zero,

		IsCustomer:         ToFlag(row[ColCustomer]),
		IsSupplier:         ToFlag(row[ColSupplier]),
		IsEmployee:         ToFlag(row[ColEmployee]),
		IsAdministrator:    ToFlag(row[ColAdministrator]),
		IsCreditRestricted: ToFlag(row[ColSPC]) || ToFlag(row[ColCCF]),

		TaxRegime:   CleanText(row[ColTaxRegime]),
		ReceiptType: CleanText(row[ColReceiptType]),
		Status:      ToStatus(row[ColActive]),
	}
	return rec, nil
}

func (p *Processor) reject(line int, reason Reason, err error) RowResult {
	p.logger.Warn("row rejected",
		"line", line,
		"reason", string(reason),
		"error", err,
	)
	return RowResult{Rejection: &Rejection{Line: line, Reason: reason, Err: err}}
}
