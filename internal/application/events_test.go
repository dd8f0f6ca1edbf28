package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedEventDecodes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pub := &recordingPublisher{}
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	e := events{publisher: pub, logger: logger, now: func() time.Time { return at }}

	e.publish(context.Background(), EventVersionCreated, 18446744073709551615, 12)
	require.Len(t, pub.events, 1)

	body, err := json.Marshal(pub.events[0])
	require.NoError(t, err)
	ev, err := DecodeProfileEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", ev.DiscordUserID)
	assert.Equal(t, int64(12), ev.ProfileID)
	assert.True(t, at.Equal(ev.OccurredAt))
}

func TestDecodeProfileEventRejects(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":    `{"type":`,
		"unknown type": `{"type":"profile.deleted","discord_user_id":"1"}`,
		"bad user id":  `{"type":"profile.version_created","discord_user_id":"abc"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeProfileEvent([]byte(body))
			assert.Error(t, err)
		})
	}
}
