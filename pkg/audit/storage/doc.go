// Package storage provides audit storage backends.
//
// MemoryStorage keeps records in an in-memory map and is intended for
// testing and short-lived deployments. SQLiteStorage persists records
// to a SQLite database file with WAL mode for concurrent access.
package storage
