// Package txn runs multi-document writes inside a MongoDB transaction and
// falls back to running them without one when the server cannot do
// transactions (a standalone mongod).
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes that mean "transactions are not available here".
// NoSuchTransaction (251) is left out: it also follows an ordinary abort,
// and WithTransaction retries it.
const (
	codeIllegalOperation           = 20
	codeOperationNotSupportedInTxn = 263
)

var warnedFallback atomic.Bool

// Run executes fn inside a transaction on db's client. If the deployment
// rejects transactions, fn is executed again without one and a warning is
// logged once per process.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

func warnFallback(log *zap.Logger, err error) {
	if log == nil || !warnedFallback.CompareAndSwap(false, true) {
		return
	}
	log.Warn("transactions not supported, running writes without a transaction", zap.Error(err))
}

// IsNotSupported reports whether err indicates the server does not support
// transactions or sessions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeOperationNotSupportedInTxn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case hasTxn && strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}

// Runner is a unit of work bound to one database. It satisfies the
// planner's UnitOfWork interface.
type Runner struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewRunner returns a Runner for db.
func NewRunner(db *mongo.Database, log *zap.Logger) *Runner {
	return &Runner{DB: db, Log: log}
}

// Do runs fn as one unit of work.
func (r *Runner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.DB, r.Log, fn)
}
