// Package core holds the party import domain: the record type, the field
// normalizers, the row processor and the run summary.
//
// It has no I/O of its own. The loader feeds it rows, and the importer hands
// its records to a store backend.
//
// # Normalization
//
// The ERP export is inconsistent, so every normalizer in convert.go is total:
// a bad phone, date or amount becomes an absent value or zero, never an
// error. The only conditions that reject a row are a missing name (neither
// FANTASIA nor RAZAO) and a non-numeric CODIGO.
//
// # Documents
//
// The CNPJ column holds either a CPF (11 digits) or a CNPJ (14 digits).
// [ClassifyDocument] decides the person kind from the digit count. Anything
// else, including the all-zero placeholders, yields an individual with no
// document; the row is still imported.
//
// # Row Outcomes
//
// [Processor.Process] returns a [RowResult] holding either a [PartyRecord]
// or a [Rejection] with the CSV line number. A panic while building a record
// is recovered and reported as [ReasonUnexpected] so one bad row never stops
// a run.
//
// # Error Handling
//
// Technical errors from the loader and the store are mapped to operator
// messages with support codes by [MapError]:
//
//   - DB001-DB009: Destination errors (duplicates, constraints, connectivity, RLS)
//   - AUTH001: Rejected access key
//   - VAL001-VAL003: Row and header validation
//   - FILE001-FILE004: Input file problems
package core
