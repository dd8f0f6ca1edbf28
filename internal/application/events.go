package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// EventPublisher delivers profile events to an external queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

const (
	EventVersionCreated   = "profile.version_created"
	EventVersionActivated = "profile.version_activated"
	EventCodesUpdated     = "identity.codes_updated"
)

// ProfileEvent is the JSON body published after a successful write. Discord
// ids are strings so consumers with float64 numbers keep them intact.
type ProfileEvent struct {
	Type          string    `json:"type"`
	DiscordUserID string    `json:"discord_user_id"`
	ProfileID     int64     `json:"profile_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const publishTimeout = 5 * time.Second

type events struct {
	publisher EventPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// publish is best effort: failures are logged and swallowed.
func (e events) publish(ctx context.Context, typ string, discordUserID uint64, profileID int64) {
	if e.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := ProfileEvent{
		Type:          typ,
		DiscordUserID: strconv.FormatUint(discordUserID, 10),
		ProfileID:     profileID,
		OccurredAt:    e.now().UTC(),
	}
	if err := e.publisher.PublishJSON(ctx, ev); err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"event":           typ,
			"discord_user_id": discordUserID,
		}).Warn("publish profile event failed")
	}
}

var knownEvents = map[string]bool{
	EventVersionCreated:   true,
	EventVersionActivated: true,
	EventCodesUpdated:     true,
}

// DecodeProfileEvent parses a queued event body and rejects unknown types
// and malformed ids.
func DecodeProfileEvent(body []byte) (ProfileEvent, error) {
	var ev ProfileEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ProfileEvent{}, fmt.Errorf("decode profile event: %w", err)
	}
	if !knownEvents[ev.Type] {
		return ProfileEvent{}, fmt.Errorf("unknown profile event type %q", ev.Type)
	}
	if _, err := strconv.ParseUint(ev.DiscordUserID, 10, 64); err != nil {
		return ProfileEvent{}, fmt.Errorf("invalid discord_user_id %q", ev.DiscordUserID)
	}
	return ev, nil
}
