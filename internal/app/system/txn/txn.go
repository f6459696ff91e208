// internal/app/system/txn/txn.go

// Package txn runs multi-document writes inside a MongoDB transaction
// when the deployment supports one (replica set / mongos), and degrades
// to a plain call on standalone servers where sessions or transactions
// are unavailable.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes that indicate transactions are not available on
// this deployment.
const (
	codeTransactionNumbers    = 20 // "Transaction numbers are only allowed on..."
	codeIllegalOperation      = 51 // IllegalOperation
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (as opposed to the transaction failing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeTransactionNumbers, codeIllegalOperation, codeOperationNotSupported:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "illegal operation") {
		return true
	}
	if strings.Contains(s, "transaction") && strings.Contains(s, "replica set") {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	if strings.Contains(s, "transaction") && strings.Contains(s, "session") {
		return true
	}
	return false
}

// Run executes fn inside a transaction if the server supports one;
// otherwise fn runs directly with the caller's context. Callers that
// need all-or-nothing semantics on standalone servers must make fn a
// single ordered operation (e.g. one InsertMany).
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}
