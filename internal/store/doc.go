// Package store defines the persistence contracts for users and tasks.
// Implementations live under internal/platform; services only see these
// interfaces plus the Transactor that scopes a unit of work to one
// database transaction.
package store
