package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/pricebook/pkg/logger"
)

// SlowQuery is the latency above which statements are logged at WARN.
var SlowQuery = 200 * time.Millisecond

// slogGorm routes GORM's statement log through pkg/logger: failures at
// ERROR, slow statements at WARN, everything else dropped.
type slogGorm struct{}

func (slogGorm) LogMode(gormlogger.LogLevel) gormlogger.Interface { return slogGorm{} }

func (slogGorm) Info(ctx context.Context, msg string, args ...interface{}) {
	logger.WithCtx(ctx).Info("gorm: "+msg, "args", args)
}

func (slogGorm) Warn(ctx context.Context, msg string, args ...interface{}) {
	logger.WithCtx(ctx).Warn("gorm: "+msg, "args", args)
}

func (slogGorm) Error(ctx context.Context, msg string, args ...interface{}) {
	logger.WithCtx(ctx).Error("gorm: "+msg, "args", args)
}

func (slogGorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.WithCtx(ctx).Error("sql failed", "sql", sql, "rows", rows, "duration", elapsed, "error", err)
	case elapsed > SlowQuery:
		sql, rows := fc()
		logger.WithCtx(ctx).Warn("slow sql", "sql", sql, "rows", rows, "duration", elapsed)
	}
}
