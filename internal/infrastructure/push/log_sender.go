package push

import (
	"context"

	appdispatch "github.com/quickcart/backend/internal/application/dispatch"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"go.uber.org/zap"
)

// LogSender writes offers to the log instead of a messaging gateway. It is
// the development fallback when no gateway endpoint is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only push sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the offer instead of delivering it
func (s *LogSender) Send(_ context.Context, token string, offer *dispatch.DispatchOffer) error {
	s.logger.Info("dispatch offer push (log only)",
		zap.String("token", token),
		zap.String("order_id", offer.OrderID.String()),
		zap.String("order_number", offer.OrderNumber),
		zap.Int("dispatch_attempt", offer.DispatchAttempt),
		zap.Time("deadline", offer.Deadline),
	)
	return nil
}

var _ appdispatch.PushSender = (*LogSender)(nil)
