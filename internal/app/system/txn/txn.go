// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when the deployment cannot run transactions
// (standalone server, unsupported storage engine, or an operation that is
// not allowed inside one).
var unsupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means multi-document transactions are
// unavailable on this deployment.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && unsupportedCodes[ce.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") {
		return strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation")
	}
	return strings.Contains(msg, "session") && strings.Contains(msg, "not supported")
}

// Run executes fn inside a transaction. When the deployment does not
// support transactions, fn runs once more without one and its steps are
// not atomic.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, op string, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if !IsNotSupported(err) {
			return err
		}
		log.Warn("transactions unavailable, running non-atomically", zap.String("op", op), zap.Error(err))
		return fn(ctx)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions unavailable, running non-atomically", zap.String("op", op), zap.Error(err))
		return fn(ctx)
	}
	return err
}
