package db

import "context"

// TransactionFunc runs inside a store transaction. Repository calls made with
// the ctx it receives join that transaction.
type TransactionFunc func(ctx context.Context) error

// TransactionManager runs fn atomically: every write made through ctx commits
// together or not at all. A returned error aborts the transaction and is passed
// back unchanged when it is an application error.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}
