package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/partyload/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Script writes one INSERT statement per record to an SQL file that an
// operator runs in the database SQL editor. Row-level security is disabled
// around the inserts, so the script must be run with owner privileges.
type Script struct {
	w      *bufio.Writer
	closer io.Closer
	table  string
	count  int
}

// CreateScript creates (or truncates) path and writes the script header.
func CreateScript(path, companyCode, table string) (*Script, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sql script: %w", err)
	}
	s := NewScript(f, f, table)
	if err := s.writeHeader(companyCode, time.Now()); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// NewScript writes to w. closer, if non-nil, is closed after the footer.
func NewScript(w io.Writer, closer io.Closer, table string) *Script {
	return &Script{w: bufio.NewWriter(w), closer: closer, table: table}
}

func (s *Script) writeHeader(companyCode string, now time.Time) error {
	rule := strings.Repeat("=", 76)
	_, err := fmt.Fprintf(s.w,
		"-- %s\n-- IMPORTAÇÃO DE CLIENTES/FORNECEDORES - EMPRESA %s\n-- Gerado em %s\n-- %s\n\n"+
			"-- 1. Desabilita RLS temporariamente\nALTER TABLE %s DISABLE ROW LEVEL SECURITY;\n\n"+
			"-- 2. Insere os dados\n",
		rule, companyCode, now.Format("02/01/2006 15:04:05"), rule, quoteIdentifier(s.table))
	return err
}

// Insert appends an INSERT statement for rec. table must match the table
// the script was created for.
func (s *Script) Insert(_ context.Context, table string, rec *core.PartyRecord) error {
	if table != s.table {
		return fmt.Errorf("sql script is for table %s, not %s", s.table, table)
	}

	values := rec.Values()
	literals := make([]string, len(values))
	for i, v := range values {
		lit, err := sqlLiteral(v)
		if err != nil {
			return fmt.Errorf("column %s: %w", core.RecordColumns[i], err)
		}
		literals[i] = lit
	}

	cols := make([]string, len(core.RecordColumns))
	for i, col := range core.RecordColumns {
		cols[i] = quoteIdentifier(col)
	}

	if _, err := fmt.Fprintf(s.w, "INSERT INTO %s (%s)\nVALUES (%s);\n",
		quoteIdentifier(table), strings.Join(cols, ", "), strings.Join(literals, ", ")); err != nil {
		return fmt.Errorf("write sql script: %w", err)
	}
	s.count++
	return nil
}

// Count returns the number of statements written.
func (s *Script) Count() int {
	return s.count
}

// Close writes the footer re-enabling row-level security and flushes.
func (s *Script) Close() error {
	_, err := fmt.Fprintf(s.w,
		"\n-- 3. Reabilita RLS\nALTER TABLE %s ENABLE ROW LEVEL SECURITY;\n\n-- Total de registros: %d\n",
		quoteIdentifier(s.table), s.count)
	if ferr := s.w.Flush(); err == nil {
		err = ferr
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("finish sql script: %w", err)
	}
	return nil
}

// sqlLiteral renders one value from PartyRecord.Values as a SQL literal.
func sqlLiteral(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteLiteral(v), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case decimal.Decimal:
		return v.String(), nil
	case pgtype.Text:
		if !v.Valid {
			return "NULL", nil
		}
		return quoteLiteral(v.String), nil
	case pgtype.Date:
		if !v.Valid {
			return "NULL", nil
		}
		return quoteLiteral(v.Time.Format("2006-01-02")), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
