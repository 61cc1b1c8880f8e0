package utils

import (
	"time"

	"github.com/okatau/tsm"
)

// Logging writes one log line per transaction with its path and duration.
// Failures are logged as errors, successful deliveries as info and
// successful checks as debug.
type Logging struct{}

var _ tsm.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Checker) (*tsm.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var log string
	if res != nil {
		log = res.Log
	}
	logResult(ctx, tx, time.Since(start), log, err, true)
	return res, err
}

func (Logging) Deliver(ctx tsm.Context, db tsm.KVStore, tx tsm.Tx, next tsm.Deliverer) (*tsm.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var log string
	if res != nil {
		log = res.Log
	}
	logResult(ctx, tx, time.Since(start), log, err, false)
	return res, err
}

// logResult emits a line even for an empty message, since the path and
// duration are still of interest.
func logResult(ctx tsm.Context, tx tsm.Tx, took time.Duration, msg string, err error, check bool) {
	logger := tsm.GetLogger(ctx).With(
		"path", tsm.GetPath(tx),
		"duration_us", took.Microseconds(),
	)
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
