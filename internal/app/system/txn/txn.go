// Package txn runs MongoDB multi-document transactions and classifies the
// errors they produce.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Run executes fn inside a snapshot, majority-acknowledged transaction.
//
// The driver's automatic retry of transient errors is not used: fn runs at
// most once, and a write conflict is returned to the caller so it can decide
// whether to try again.
func Run(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(opts); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sess.AbortTransaction(context.WithoutCancel(sc))
			return err
		}
		return sess.CommitTransaction(sc)
	})
}

// transientTxnLabel is the server error label for transaction errors that
// may succeed on retry.
const transientTxnLabel = "TransientTransactionError"

// IsNotSupported reports whether err means the server cannot run
// transactions at all (standalone server, or an operation not allowed in
// a transaction). Transient failures must not match: a true result
// switches admissions off transactions for the life of the process.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation: transactions on a standalone
			51,  // transaction numbers only on replica sets (older servers)
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set")
}

// IsWriteConflict reports whether err is a conflict with a concurrent
// transaction that a retry could resolve.
func IsWriteConflict(err error) bool {
	if err == nil {
		return false
	}
	var le mongo.LabeledError
	if errors.As(err, &le) && le.HasErrorLabel(transientTxnLabel) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 112 {
		return true
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 112 {
				return true
			}
		}
	}
	return false
}
