// Package oplog records how application operations end: rejections with a
// taxonomy code are logged at Warn and counted, anything else at Error.
package oplog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Fail logs err for op and returns it unchanged. A nil err is passed through.
func Fail(ctx context.Context, m *telemetry.BusinessMetrics, op string, err error) error {
	if err == nil {
		return nil
	}
	code := shared.CodeOf(err)
	if code == "" {
		logger.L(ctx).Error("Operation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	logger.L(ctx).Warn("Operation rejected",
		zap.String("op", op),
		zap.String("code", code),
		zap.Error(err),
	)
	m.RecordRejection(ctx, op, code)
	return err
}
