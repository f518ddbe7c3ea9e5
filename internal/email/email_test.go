package email

import (
	"context"
	"testing"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSender_OneLinePerRecipient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(zap.New(core))

	err := s.Send(context.Background(), notify.Event{
		AnnouncementID: 9,
		Type:           domain.AnnouncementGateChange,
		Recipients:     []int64{1, 2},
		Title:          "Gate change",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("send email").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].ContextMap()["user_id"])
	assert.Equal(t, int64(2), entries[1].ContextMap()["user_id"])
}

func TestSender_Broadcast(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), notify.Event{Type: domain.AnnouncementGeneral, Title: "Welcome"}))
	assert.Equal(t, 1, logs.FilterMessage("broadcast announcement").Len())
}
