package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PersonKind classifies a party by its tax document.
type PersonKind string

const (
	Individual   PersonKind = "FÍSICA"
	Organization PersonKind = "JURÍDICA"
)

// Status is the lifecycle state of a party in the destination.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Row is one input line keyed by header name.
type Row map[string]string

// PartyRecord is a normalized customer, supplier or staff member, ready for
// insertion. JSON tags are the destination column names; absent optional
// values serialize as null.
type PartyRecord struct {
	CompanyCode string     `json:"codigo_empresa"`
	Code        int        `json:"codigo"`
	Name        string     `json:"nome"`
	Kind        PersonKind `json:"tipo_pessoa"`

	CPF       pgtype.Text `json:"cpf"`
	CNPJ      pgtype.Text `json:"cnpj"`
	RG        pgtype.Text `json:"rg"`
	IE        pgtype.Text `json:"ie"`
	LegalName pgtype.Text `json:"apelido"`

	Phone    pgtype.Text `json:"telefone"`
	Phone2   pgtype.Text `json:"fone2"`
	Mobile1  pgtype.Text `json:"celular1"`
	Mobile2  pgtype.Text `json:"celular2"`
	WhatsApp pgtype.Text `json:"whatsapp"`
	Email    pgtype.Text `json:"email"`

	PostalCode pgtype.Text `json:"cep"`
	Street     pgtype.Text `json:"endereco"`
	Number     pgtype.Text `json:"numero"`
	Complement pgtype.Text `json:"complemento"`
	District   pgtype.Text `json:"bairro"`
	City       pgtype.Text `json:"cidade"`
	State      pgtype.Text `json:"uf"`
	CityIBGE   pgtype.Text `json:"cidade_ibge"`

	BirthDate     pgtype.Date `json:"aniversario"`
	Gender        pgtype.Text `json:"sexo"`
	MaritalStatus pgtype.Text `json:"estado_civil"`
	MotherName    pgtype.Text `json:"nome_mae"`
	FatherName    pgtype.Text `json:"nome_pai"`

	CreditLimit decimal.Decimal `json:"limite_credito"`
	Balance     decimal.Decimal `json:"saldo"`

	IsCustomer         bool `json:"flag_cliente"`
	IsSupplier         bool `json:"flag_fornecedor"`
	IsEmployee         bool `json:"flag_funcionario"`
	IsAdministrator    bool `json:"flag_administradora"`
	IsCreditRestricted bool `json:"flag_ccf_spc"`

	TaxRegime   pgtype.Text `json:"regime_tributario"`
	ReceiptType pgtype.Text `json:"tipo_recebimento"`
	Status      Status      `json:"status"`
	Notes       pgtype.Text `json:"observacoes"`
}

// RecordColumns lists destination columns in the order returned by Values.
var RecordColumns = []string{
	"codigo_empresa", "codigo", "nome", "tipo_pessoa",
	"cpf", "cnpj", "rg", "ie", "apelido",
	"telefone", "fone2", "celular1", "celular2", "whatsapp", "email",
	"cep", "endereco", "numero", "complemento", "bairro", "cidade", "uf", "cidade_ibge",
	"aniversario", "sexo", "estado_civil", "nome_mae", "nome_pai",
	"limite_credito", "saldo",
	"flag_cliente", "flag_fornecedor", "flag_funcionario", "flag_administradora", "flag_ccf_spc",
	"regime_tributario", "tipo_recebimento", "status", "observacoes",
}

// Values returns the record as a row of values matching RecordColumns.
func (r *PartyRecord) Values() []any {
	return []any{
		r.CompanyCode, r.Code, r.Name, string(r.Kind),
		r.CPF, r.CNPJ, r.RG, r.IE, r.LegalName,
		r.Phone, r.Phone2, r.Mobile1, r.Mobile2, r.WhatsApp, r.Email,
		r.PostalCode, r.Street, r.Number, r.Complement, r.District, r.City, r.State, r.CityIBGE,
		r.BirthDate, r.Gender, r.MaritalStatus, r.MotherName, r.FatherName,
		r.CreditLimit, r.Balance,
		r.IsCustomer, r.IsSupplier, r.IsEmployee, r.IsAdministrator, r.IsCreditRestricted,
		r.TaxRegime, r.ReceiptType, string(r.Status), r.Notes,
	}
}

// Flags returns the display labels of the role flags that are set.
func (r *PartyRecord) Flags() []string {
	var flags []string
	if r.IsCustomer {
		flags = append(flags, "CLIENTE")
	}
	if r.IsSupplier {
		flags = append(flags, "FORNECEDOR")
	}
	if r.IsEmployee {
		flags = append(flags, "FUNCIONÁRIO")
	}
	if r.IsAdministrator {
		flags = append(flags, "ADMIN")
	}
	return flags
}

// Reason categorizes why a row was rejected.
type Reason string

const (
	ReasonMissingName  Reason = "missing name"
	ReasonInvalidField Reason = "invalid field"
	ReasonUnexpected   Reason = "unexpected error"
)

// Rejection describes a row that did not produce a record.
type Rejection struct {
	Line   int // CSV line number, header is line 1
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return string(r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Code returns the support code for the rejection, such as VAL002.
func (r *Rejection) Code() string {
	return MapError(r).Code
}

// RowResult is the outcome of processing one row: exactly one of Record or
// Rejection is set.
type RowResult struct {
	Record    *PartyRecord
	Rejection *Rejection
}

// Accepted reports whether the row produced a record.
func (r RowResult) Accepted() bool {
	return r.Record != nil
}

// FailedRow is a row that was rejected or failed to insert, kept for the
// failed rows report.
type FailedRow struct {
	LineNumber int
	Reason     string
	Data       Row
}
