// Package report renders the human-readable console output of an import run.
//
// Output is for the operator, not a machine contract: logs go to stderr via
// slog, this report goes to stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/partyload/internal/core"
)

const width = 80

// Printer writes report sections to w. Write errors are ignored.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) rule(ch string) {
	p.printf("%s\n", strings.Repeat(ch, width))
}

// Banner prints the run header.
func (p *Printer) Banner(companyCode, file, mode string) {
	p.rule("=")
	p.printf("IMPORTAÇÃO DE CLIENTES/FORNECEDORES\n")
	p.rule("=")
	p.printf("Empresa: %s\n", companyCode)
	p.printf("Arquivo: %s\n", file)
	p.printf("Modo: %s\n", mode)
	p.rule("=")
	p.printf("\n")
}

// Loaded prints the chosen encoding and row count.
func (p *Printer) Loaded(encoding string, rows int) {
	p.printf("✅ Arquivo lido com encoding: %s\n", encoding)
	p.printf("📊 Total de linhas no CSV: %d\n\n", rows)
	p.printf("🔄 Processando registros...\n")
}

// MissingColumns warns about expected columns absent from the header.
// err is the header check failure the columns came from.
func (p *Printer) MissingColumns(err error, cols []string) {
	if len(cols) == 0 {
		return
	}
	p.printf("⚠️  Colunas ausentes (lidas como vazias): %s (Code: %s)\n",
		strings.Join(cols, ", "), core.MapError(err).Code)
}

// Accepted prints one line per accepted record.
func (p *Printer) Accepted(rec *core.PartyRecord) {
	p.printf("  ✓ [%3d] %-40s | %-8s | %s\n",
		rec.Code, truncate(rec.Name, 40), rec.Kind, strings.Join(rec.Flags(), ", "))
}

// Rejected prints one line per rejected row.
func (p *Printer) Rejected(rej *core.Rejection) {
	p.printf("  ⚠️  Linha %d: %s (Code: %s)\n", rej.Line, rej.Error(), rej.Code())
}

// Statistics prints the processed count and category totals.
func (p *Printer) Statistics(s core.Summary) {
	p.printf("\n✅ Registros processados: %d/%d\n\n", s.Accepted, s.TotalRows)
	p.printf("📈 ESTATÍSTICAS:\n")
	p.printf("   • Clientes: %d\n", s.Customers)
	p.printf("   • Fornecedores: %d\n", s.Suppliers)
	p.printf("   • Funcionários: %d\n", s.Employees)
	p.printf("   • Administradoras: %d\n", s.Administrators)
	p.printf("   • Restrição CCF/SPC: %d\n", s.CreditRestricted)
	p.printf("   • Pessoas Físicas: %d\n", s.Individuals)
	p.printf("   • Pessoas Jurídicas: %d\n", s.Organizations)
	p.printf("   • Rejeitados: %d\n\n", s.Rejected)
}

// DryRun prints the dry-run notice and a pretty-printed sample record.
// sample may be nil when no row was accepted.
func (p *Printer) DryRun(sample *core.PartyRecord) error {
	p.rule("=")
	p.printf("🔍 MODO DRY-RUN ATIVO\n")
	p.rule("=")
	p.printf("Os dados foram processados mas NÃO foram inseridos no banco.\n")
	p.printf("Para inserir de verdade, execute novamente com --apply.\n\n")
	p.printf("📋 EXEMPLO DE REGISTRO PROCESSADO:\n")
	p.rule("-")
	if sample != nil {
		data, err := json.MarshalIndent(sample, "", "  ")
		if err != nil {
			return fmt.Errorf("format sample record: %w", err)
		}
		p.printf("%s\n", data)
	}
	p.rule("=")
	return nil
}

// InsertStart prints the live-mode header.
func (p *Printer) InsertStart(backend string) {
	p.printf("🔌 Destino: %s\n\n", backend)
	p.printf("💾 Inserindo registros no banco...\n")
}

// Inserted prints a successful insert.
func (p *Printer) Inserted(rec *core.PartyRecord) {
	p.printf("  ✓ [%3d] %s\n", rec.Code, truncate(rec.Name, 50))
}

// InsertFailed prints a failed insert with its friendly error.
func (p *Printer) InsertFailed(rec *core.PartyRecord, err error) {
	p.printf("  ✗ [%3d] %s - ERRO: %s\n", rec.Code, truncate(rec.Name, 50), core.FormatUserError(err))
}

// Done prints the final insert tally.
func (p *Printer) Done(succeeded, failed int) {
	p.printf("\n")
	p.rule("=")
	p.printf("✅ IMPORTAÇÃO CONCLUÍDA!\n")
	p.rule("=")
	p.printf("   • Sucesso: %d\n", succeeded)
	p.printf("   • Erros: %d\n", failed)
	p.printf("   • Total: %d\n", succeeded+failed)
	p.rule("=")
}

// ScriptWritten prints where the SQL script went and how many INSERTs it holds.
func (p *Printer) ScriptWritten(path string, statements int) {
	p.printf("\n📝 Script SQL gravado em: %s (%d INSERT(s))\n", path, statements)
	p.printf("   Execute-o no SQL Editor do banco de destino.\n")
}

// FailedReport prints where the failed rows were written.
func (p *Printer) FailedReport(path string, rows int) {
	p.printf("\n📄 %d linha(s) com falha gravada(s) em: %s\n", rows, path)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
