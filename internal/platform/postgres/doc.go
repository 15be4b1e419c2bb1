// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It owns the SQL, the row mapping, the
// translation of PostgreSQL error codes into store errors, and the embedded
// goose migrations that define the schema.
package postgres
