// Package service contains the application use cases: registration and
// login, task management and the user directory.
//
// Services receive their stores, a store.Transactor and other collaborators
// through constructor injection and never touch infrastructure directly.
// Every mutating call runs as one transaction; lifecycle events are emitted
// only after that transaction commits, and an emission failure is logged
// without failing the call.
//
// Callers always supply the acting user id. Task operations compare it with
// the task's owner and return ErrTaskNotOwned on mismatch, which is distinct
// from store.ErrTaskNotFound.
package service
