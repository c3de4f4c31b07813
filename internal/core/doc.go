// Package core turns CSV metric exports into a project tree.
//
// This package holds the domain logic independent of any transport. It is
// used by the web handlers, the csvtree CLI and tests without modification.
//
// # Pipeline
//
// An ingestion reads the first row as the header and every following row as
// one file:
//
//  1. [ResolveHeader] cleans and renames header cells ([Substitutions]) and
//     picks the path column (default "path", case-insensitive).
//  2. [DecodeRow] splits the path cell on the project's separator into
//     folders and a file name, and types each attribute cell as a [Number]
//     or [Text].
//  3. [Insert] walks from the root, creating missing folders, and attaches
//     the file according to the project's [DuplicatePolicy].
//
// [Project.AddProjectFromCSV] and [Project.AddProjectFromCSVWith] drive the
// pipeline; [Project.Ingest] is the general form. Rows that cannot be placed
// are skipped, recorded as [FailedRow] and reported through
// [IngestOptions.Diagnostics]. Only a bad header or a broken stream stops an
// ingestion.
//
// # Profiles
//
// Known export formats register a [Profile] at init time (see
// internal/core/profiles) with the substitutions and path separator they need.
//
// # Service
//
// [Service] runs imports for the outer layers: it resolves profiles and
// defaults, bounds concurrency with an [ImportLimiter], stores results in a
// [Repository] and optionally publishes them to an [ExportSink].
// [Service.Preview] runs the same pipeline and stores nothing.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// See error_messages.go for the code reference.
package core
