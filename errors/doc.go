// Package errors provides the participant's error taxonomy.
//
// Every failure that ends an invocation is an *AppError carrying one of the
// codes in codes.go. Configuration, connection setup, transport and handler
// failures are fatal for the invocation and are reported to the engine exactly
// once; none of them are retried. Non-success HTTP statuses are not errors.
package errors
