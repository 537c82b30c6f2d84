// Package sqlite persists pipeline runs and housekeeping scheduler state.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database connection backs two stores:
//
//   - RunStore: pipeline runs with one row per stage output
//   - SchedulerStore: housekeeping tasks and their execution history
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/. Each
// applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at <home>/data/aioffice.db, where home
// is $AIOFFICE_HOME or ~/.aioffice.
package sqlite
