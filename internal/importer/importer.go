// Package importer runs the party import pipeline:
// file -> rows -> normalized records -> summary -> insert.
//
// The run is sequential in one goroutine. Row rejections and insert
// failures are logged and counted; only startup problems (unreadable file,
// store construction) abort a run.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/partyload/internal/config"
	"github.com/JonMunkholm/partyload/internal/core"
	"github.com/JonMunkholm/partyload/internal/loader"
	"github.com/JonMunkholm/partyload/internal/logging"
	"github.com/JonMunkholm/partyload/internal/report"
	"github.com/JonMunkholm/partyload/internal/store"
	"github.com/google/uuid"
)

// StoreFactory builds the destination on demand. It is only called in live
// mode.
type StoreFactory func(ctx context.Context) (store.Inserter, error)

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Encoding   string
	Summary    core.Summary
	Records    []*core.PartyRecord
	Inserted   int
	Failed     int
	FailedRows []core.FailedRow
	FailedPath string
}

// Service orchestrates one import run.
type Service struct {
	cfg       *config.Config
	newStore  StoreFactory
	printer   *report.Printer
	encodings []loader.Encoding
}

// NewService validates the configured encodings and prepares a run.
// newStore may be nil to use store.New with cfg.Store.
func NewService(cfg *config.Config, newStore StoreFactory, out io.Writer) (*Service, error) {
	encodings, err := loader.ParseEncodings(cfg.Import.Encodings)
	if err != nil {
		return nil, fmt.Errorf("import encodings: %w", err)
	}

	if newStore == nil {
		newStore = func(ctx context.Context) (store.Inserter, error) {
			return store.New(ctx, cfg.Store, cfg.Import.CompanyCode, cfg.Import.Table)
		}
	}

	return &Service{
		cfg:       cfg,
		newStore:  newStore,
		printer:   report.New(out),
		encodings: encodings,
	}, nil
}

// Run executes the pipeline. The returned error is non-nil only for fatal
// problems; per-row and per-insert failures are reported in Result.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	imp := s.cfg.Import
	s.printer.Banner(imp.CompanyCode, imp.File, imp.Mode())

	logger.Info("import started",
		"file", imp.File,
		"company", imp.CompanyCode,
		"dry_run", imp.DryRun,
		"backend", s.cfg.Store.Backend,
	)

	table, err := loader.Load(imp.File, s.encodings)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", imp.File, err)
	}
	logger.Info("file loaded",
		"file", imp.File,
		"encoding", table.Encoding,
		"rows", len(table.Rows),
	)
	s.printer.Loaded(table.Encoding, len(table.Rows))

	if err := core.ValidateHeaders(table.Header); err != nil {
		logger.Warn("input header incomplete", "error", err)
		s.printer.MissingColumns(err, core.MissingColumns(table.Header))
	}

	res := &Result{RunID: runID, Encoding: table.Encoding}

	processor := core.NewProcessor(imp.CompanyCode, logger)
	sources := make([]sourceRow, 0, len(table.Rows))
	for i, raw := range table.Rows {
		row := core.Row(raw)

		result := processor.Process(row, i)
		res.Summary.Add(result)

		if !result.Accepted() {
			s.printer.Rejected(result.Rejection)
			res.FailedRows = append(res.FailedRows, core.FailedRow{
				LineNumber: result.Rejection.Line,
				Reason:     fmt.Sprintf("%s (Code: %s)", result.Rejection.Error(), result.Rejection.Code()),
				Data:       row,
			})
			continue
		}

		res.Records = append(res.Records, result.Record)
		sources = append(sources, sourceRow{line: core.LineNumber(i), row: row})
		s.printer.Accepted(result.Record)
	}

	s.printer.Statistics(res.Summary)
	logger.Info("rows processed",
		"total", res.Summary.TotalRows,
		"accepted", res.Summary.Accepted,
		"rejected", res.Summary.Rejected,
	)

	if imp.DryRun {
		var sample *core.PartyRecord
		if len(res.Records) > 0 {
			sample = res.Records[0]
		}
		if err := s.printer.DryRun(sample); err != nil {
			logger.Warn("could not print sample record", "error", err)
		}
	} else if err := s.insertAll(ctx, res, sources); err != nil {
		s.writeFailedReport(logger, res, table.Header)
		return res, err
	}

	s.writeFailedReport(logger, res, table.Header)

	logger.Info("import finished",
		"inserted", res.Inserted,
		"failed", res.Failed,
		"rejected", res.Summary.Rejected,
	)
	return res, nil
}

// statementCounter is implemented by backends that buffer statements, such
// as the SQL script writer.
type statementCounter interface {
	Count() int
}

// insertAll issues one insert per accepted record. A failed insert is
// recorded and the loop moves on. Cancellation of ctx stops the loop before
// the next record, and records never attempted are not counted as failed.
// A destination that cannot be closed cleanly fails the run.
func (s *Service) insertAll(ctx context.Context, res *Result, sources []sourceRow) error {
	logger := logging.WithFields(ctx, "table", s.cfg.Import.Table, "backend", s.cfg.Store.Backend)

	dest, err := s.newStore(ctx)
	if err != nil {
		return fmt.Errorf("connect to destination: %w", err)
	}

	s.printer.InsertStart(s.cfg.Store.Backend)

	runErr := s.insertRecords(ctx, logger, dest, res, sources)

	if err := dest.Close(); err != nil {
		logger.Error("close destination", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("close destination: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	s.printer.Done(res.Inserted, res.Failed)
	if counter, ok := dest.(statementCounter); ok {
		s.printer.ScriptWritten(s.cfg.Store.SQLOut, counter.Count())
	}
	return nil
}

func (s *Service) insertRecords(ctx context.Context, logger *slog.Logger, dest store.Inserter, res *Result, sources []sourceRow) error {
	for i, rec := range res.Records {
		if err := ctx.Err(); err != nil {
			logger.Warn("insert interrupted",
				"attempted", i,
				"remaining", len(res.Records)-i,
				"error", err,
			)
			return fmt.Errorf("insert interrupted after %d of %d records: %w", i, len(res.Records), err)
		}

		err := s.insertOne(ctx, dest, rec)
		if err == nil {
			res.Inserted++
			s.printer.Inserted(rec)
			continue
		}

		res.Failed++
		s.printer.InsertFailed(rec, err)
		logger.Error("insert failed",
			"code", rec.Code,
			"name", rec.Name,
			"line", sources[i].line,
			"error", err,
		)
		res.FailedRows = append(res.FailedRows, core.FailedRow{
			LineNumber: sources[i].line,
			Reason:     "insert: " + core.FormatUserError(err),
			Data:       sources[i].row,
		})
	}
	return nil
}

// insertOne bounds a single insert by the configured timeout. A panicking
// backend counts as a failed insert.
func (s *Service) insertOne(ctx context.Context, dest store.Inserter, rec *core.PartyRecord) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Store.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during insert: %v", r)
		}
	}()

	return dest.Insert(ctx, s.cfg.Import.Table, rec)
}

// sourceRow is the input behind an accepted record, kept for the failed
// rows report.
type sourceRow struct {
	line int
	row  core.Row
}

func (s *Service) writeFailedReport(logger *slog.Logger, res *Result, header []string) {
	if !s.cfg.Import.FailedReport || len(res.FailedRows) == 0 {
		return
	}

	path := report.FailedPath(s.cfg.Import.File)
	if err := report.WriteFailed(path, header, res.FailedRows); err != nil {
		logger.Error("write failed rows report", "path", path, "error", err)
		return
	}
	res.FailedPath = path
	s.printer.FailedReport(path, len(res.FailedRows))
}
