package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/partyload/internal/config"
	"github.com/JonMunkholm/partyload/internal/core"
	"github.com/JonMunkholm/partyload/internal/loader"
	"github.com/JonMunkholm/partyload/internal/logging"
	"github.com/JonMunkholm/partyload/internal/store"
)

const header = "CODIGO;CNPJ;FANTASIA;RAZAO;FONE1;EMAIL1;CEP;DT_NASC;LIMITE;CLI;FORN;FUN;ADM;SPC;CCF;ATIVO\n"

// fakeStore records inserts and fails the codes listed in failCodes.
// afterInsert, when set, runs after each recorded attempt.
type fakeStore struct {
	failCodes   map[int]bool
	attempts    []int
	panicCode   int
	afterInsert func(code int)
	closeErr    error
	closed      bool
}

func (f *fakeStore) Insert(ctx context.Context, table string, rec *core.PartyRecord) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("insert called without a deadline")
	}
	if table != "clientes" {
		return errors.New("unexpected table " + table)
	}
	f.attempts = append(f.attempts, rec.Code)
	if f.afterInsert != nil {
		f.afterInsert(rec.Code)
	}
	if rec.Code == f.panicCode {
		panic("backend exploded")
	}
	if f.failCodes[rec.Code] {
		return errors.New(`duplicate key value violates unique constraint "clientes_pkey"`)
	}
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return f.closeErr
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pessoas.csv")
	if err := os.WriteFile(path, []byte(header+body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(file string, dryRun bool) *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			File:         file,
			CompanyCode:  "1006",
			Table:        "clientes",
			DryRun:       dryRun,
			Encodings:    []string{"utf-8", "latin1"},
			FailedReport: true,
		},
		Store: config.StoreConfig{
			URL:      "https://example.supabase.co",
			Key:      "k",
			Backend:  config.BackendREST,
			Timeout:  time.Second,
			MaxConns: 1,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

const rows = "" +
	"1;123.456.789-09;Maria;;(11) 91234-5678;maria@example.com;01310-100;25.12.1980;1.500,00;S;N;N;N;N;N;S\n" +
	"2;12.345.678/0001-95;;ACME LTDA;;;;;;S;S;N;N;N;N;S\n" +
	"3;;;;;;;;;S;N;N;N;N;N;S\n" +
	"4;999;Joao;;;;;;;N;N;S;S;S;N;N\n"

func TestRun_DryRunNeverCallsStore(t *testing.T) {
	path := writeInput(t, rows)

	called := false
	factory := func(context.Context) (store.Inserter, error) {
		called = true
		return &fakeStore{}, nil
	}

	var out bytes.Buffer
	svc, err := NewService(testConfig(path, true), factory, &out)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if called {
		t.Error("dry run must not construct the destination store")
	}
	if res.Inserted != 0 || res.Failed != 0 {
		t.Errorf("Inserted/Failed = %d/%d, want 0/0", res.Inserted, res.Failed)
	}

	want := core.Summary{
		TotalRows: 4, Accepted: 3, Rejected: 1,
		Customers: 2, Suppliers: 1, Employees: 1, Administrators: 1, CreditRestricted: 1,
		Individuals: 2, Organizations: 1,
	}
	if res.Summary != want {
		t.Errorf("Summary = %+v, want %+v", res.Summary, want)
	}
	if res.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", res.Encoding)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	console := out.String()
	for _, want := range []string{"MODO DRY-RUN ATIVO", `"nome": "Maria"`, "Registros processados: 3/4", "Linha 4"} {
		if !strings.Contains(console, want) {
			t.Errorf("console missing %q", want)
		}
	}
	if strings.Contains(console, "Inserindo registros") {
		t.Error("dry run should not print the insert section")
	}
}

func TestRun_LiveContinuesAfterFailure(t *testing.T) {
	path := writeInput(t, rows)

	fake := &fakeStore{failCodes: map[int]bool{1: true}}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	var out bytes.Buffer
	svc, err := NewService(testConfig(path, false), factory, &out)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := len(fake.attempts); got != 3 {
		t.Fatalf("insert attempts = %d, want 3 (one per accepted record)", got)
	}
	if fake.attempts[0] != 1 || fake.attempts[1] != 2 || fake.attempts[2] != 4 {
		t.Errorf("attempt order = %v, want [1 2 4]", fake.attempts)
	}
	if res.Inserted != 2 || res.Failed != 1 {
		t.Errorf("Inserted/Failed = %d/%d, want 2/1", res.Inserted, res.Failed)
	}
	if !fake.closed {
		t.Error("store should be closed after the run")
	}

	console := out.String()
	if !strings.Contains(console, "(Code: DB001)") || !strings.Contains(console, "Sucesso: 2") {
		t.Errorf("console missing insert outcome:\n%s", console)
	}
}

func TestRun_LiveRecoversBackendPanic(t *testing.T) {
	path := writeInput(t, rows)

	fake := &fakeStore{panicCode: 2}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	svc, err := NewService(testConfig(path, false), factory, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(fake.attempts) != 3 || res.Inserted != 2 || res.Failed != 1 {
		t.Errorf("attempts=%v inserted=%d failed=%d", fake.attempts, res.Inserted, res.Failed)
	}
}

func TestRun_FailedReport(t *testing.T) {
	path := writeInput(t, rows)

	fake := &fakeStore{failCodes: map[int]bool{4: true}}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	svc, err := NewService(testConfig(path, false), factory, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPath := filepath.Join(filepath.Dir(path), "pessoas - failed.csv")
	if res.FailedPath != wantPath {
		t.Fatalf("FailedPath = %q, want %q", res.FailedPath, wantPath)
	}

	f, err := os.Open(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("failed report has %d lines, want header + 2", len(records))
	}
	if !strings.HasPrefix(records[1][0], "line 4: ") {
		t.Errorf("first failure = %q, want the rejected row at line 4", records[1][0])
	}
	if !strings.HasPrefix(records[2][0], "line 5: insert: ") || records[2][1] != "4" {
		t.Errorf("second failure = %v, want the failed insert at line 5", records[2])
	}
}

func TestRun_CancelledBeforeInsertsIsFatal(t *testing.T) {
	path := writeInput(t, rows)

	fake := &fakeStore{}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	svc, err := NewService(testConfig(path, false), factory, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(fake.attempts) != 0 {
		t.Errorf("insert attempts = %v, want none", fake.attempts)
	}
	if res.Inserted != 0 || res.Failed != 0 {
		t.Errorf("Inserted/Failed = %d/%d, want 0/0", res.Inserted, res.Failed)
	}
	if len(res.FailedRows) != 1 || res.FailedRows[0].LineNumber != 4 {
		t.Errorf("FailedRows = %+v, want only the rejected row", res.FailedRows)
	}
	if !fake.closed {
		t.Error("store should be closed after an interrupted run")
	}
	if got := core.MapError(err).Code; got != "DB009" {
		t.Errorf("MapError() code = %q, want DB009", got)
	}
}

func TestRun_CancelledMidRunKeepsCompletedInserts(t *testing.T) {
	path := writeInput(t, rows)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStore{afterInsert: func(code int) {
		if code == 1 {
			cancel()
		}
	}}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	var out bytes.Buffer
	svc, err := NewService(testConfig(path, false), factory, &out)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(fake.attempts) != 1 || res.Inserted != 1 || res.Failed != 0 {
		t.Errorf("attempts=%v inserted=%d failed=%d, want [1] 1 0", fake.attempts, res.Inserted, res.Failed)
	}
	if strings.Contains(out.String(), "IMPORTAÇÃO CONCLUÍDA") {
		t.Error("an interrupted run must not report completion")
	}
}

func TestRun_CloseErrorIsFatal(t *testing.T) {
	path := writeInput(t, rows)

	fake := &fakeStore{closeErr: errors.New("finish sql script: disk full")}
	factory := func(context.Context) (store.Inserter, error) { return fake, nil }

	var out bytes.Buffer
	svc, err := NewService(testConfig(path, false), factory, &out)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Run() error = %v, want the close failure", err)
	}
	if strings.Contains(out.String(), "IMPORTAÇÃO CONCLUÍDA") {
		t.Error("a run whose destination failed to close must not report completion")
	}
}

func TestRun_SQLBackendReportsScript(t *testing.T) {
	path := writeInput(t, rows)
	cfg := testConfig(path, false)
	cfg.Store.Backend = config.BackendSQL
	cfg.Store.SQLOut = filepath.Join(t.TempDir(), "importacao_clientes.sql")

	var out bytes.Buffer
	svc, err := NewService(cfg, nil, &out)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", res.Inserted)
	}
	if !strings.Contains(out.String(), cfg.Store.SQLOut+" (3 INSERT(s))") {
		t.Errorf("console missing script summary:\n%s", out.String())
	}

	data, err := os.ReadFile(cfg.Store.SQLOut)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "INSERT INTO"); got != 3 {
		t.Errorf("script holds %d INSERTs, want 3", got)
	}
}

func TestRun_LogsCarryRunID(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&logs, "info", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	svc, err := NewService(testConfig(writeInput(t, rows), true), nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var loaded string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `msg="file loaded"`) {
			loaded = line
		}
	}
	if loaded == "" {
		t.Fatalf("no file loaded entry in logs:\n%s", logs.String())
	}
	if !strings.Contains(loaded, "run_id="+res.RunID) {
		t.Errorf("file loaded entry lacks run_id: %s", loaded)
	}
}

func TestRun_StoreConstructionFails(t *testing.T) {
	path := writeInput(t, rows)

	factory := func(context.Context) (store.Inserter, error) {
		return nil, errors.New("connection refused")
	}

	svc, err := NewService(testConfig(path, false), factory, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Run(context.Background()); err == nil {
		t.Error("Run() expected error when the store cannot be built")
	}
}

func TestRun_MissingFile(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent.csv"), true)

	svc, err := NewService(cfg, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Run(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run() error = %v, want os.ErrNotExist", err)
	}
}

func TestRun_UndecodableFile(t *testing.T) {
	path := writeInput(t, "1;;Jos\xe9\n")
	cfg := testConfig(path, true)
	cfg.Import.Encodings = []string{"utf-8"}

	svc, err := NewService(cfg, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Run(context.Background())
	if !errors.Is(err, loader.ErrNoEncoding) {
		t.Errorf("Run() error = %v, want ErrNoEncoding", err)
	}
}

func TestNewService_UnknownEncoding(t *testing.T) {
	cfg := testConfig("pessoas.csv", true)
	cfg.Import.Encodings = []string{"klingon"}

	if _, err := NewService(cfg, nil, &bytes.Buffer{}); err == nil {
		t.Error("NewService() expected error for unknown encoding")
	}
}
