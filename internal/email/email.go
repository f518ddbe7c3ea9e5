package email

import (
	"context"

	"github.com/Domenick1991/seatflow/internal/notify"
	"go.uber.org/zap"
)

// Sender delivers announcement events to passengers. Delivery is a log line per recipient.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log.With(zap.String("component", "email"))}
}

func (s *Sender) Send(ctx context.Context, event notify.Event) error {
	if len(event.Recipients) == 0 {
		s.log.Info("broadcast announcement",
			zap.Int64("announcement_id", event.AnnouncementID),
			zap.String("type", string(event.Type)),
			zap.String("title", event.Title))
		return nil
	}
	for _, userID := range event.Recipients {
		s.log.Info("send email",
			zap.Int64("user_id", userID),
			zap.Int64("announcement_id", event.AnnouncementID),
			zap.String("type", string(event.Type)),
			zap.String("title", event.Title),
			zap.String("message", event.Message))
	}
	return nil
}
