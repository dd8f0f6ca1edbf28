package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/domain/repository"
)

const internalErrorText = "Please contact a bot administrator to review the logs for further details."

// StaffOnlyError is returned when a non-staff member acts on someone else's
// data.
type StaffOnlyError struct {
	Command string
}

func (e *StaffOnlyError) Error() string {
	return fmt.Sprintf("staff-only command `%s` cannot be run by non-staff users", e.Command)
}

// CooldownError is returned when a member exceeds the command cooldown.
type CooldownError struct {
	Command    string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown hit in command `%s` (%s remaining)", e.Command, e.RetryAfter)
}

// userMessage is what a member sees for err, and the level it is logged at.
type userMessage struct {
	Title       string
	Description string
	Level       logrus.Level
}

func translateError(err error) userMessage {
	var (
		staff    *StaffOnlyError
		cooldown *CooldownError
		backend  *repository.BackendError
	)
	switch {
	case errors.As(err, &staff):
		return userMessage{"Staff Only Command", fmt.Sprintf("`/%s` can only be used by staff.", staff.Command), logrus.InfoLevel}
	case errors.As(err, &cooldown):
		return userMessage{"Cooldown Hit", fmt.Sprintf("You can't use that command right now. Try again in %s.", formatWait(cooldown.RetryAfter)), logrus.InfoLevel}
	case errors.As(err, &backend):
		return userMessage{"Repository Backend Error", internalErrorText, logrus.ErrorLevel}
	default:
		return userMessage{"Internal Error", internalErrorText, logrus.ErrorLevel}
	}
}

func formatWait(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		d = time.Second
	}
	return d.String()
}
