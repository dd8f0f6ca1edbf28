// Package editor runs interactive edit sessions: a draft is staged across
// several sub-form submissions and committed as one new version on save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/pkg/validation"
)

type State int

const (
	Loading State = iota
	AwaitingChoice
	AwaitingSubmission
	Committed
	Abandoned
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case AwaitingChoice:
		return "awaiting_choice"
	case AwaitingSubmission:
		return "awaiting_submission"
	case Committed:
		return "committed"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reason explains how a session reached its terminal state.
type Reason string

const (
	ReasonSaved     Reason = "saved"
	ReasonCancelled Reason = "cancelled"
	ReasonTimeout   Reason = "timeout"
	ReasonError     Reason = "error"
)

type Outcome struct {
	State  State
	Reason Reason
	// Draft is the committed draft, or the discarded one.
	Draft entity.ProfileFields
}

const DefaultTimeout = 5 * time.Minute

type Option func(*Session)

// WithTimeout sets how long the session waits for each interaction.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithValidator(v *validator.Validate) Option {
	return func(s *Session) { s.validate = v }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one user's edit of one target. It is not safe for concurrent
// use; Run owns it until it returns.
type Session struct {
	owner    uint64
	target   Target
	prompter Prompter
	validate *validator.Validate
	timeout  time.Duration
	logger   logrus.FieldLogger

	state  State
	draft  entity.ProfileFields
	groups []Group
}

// New creates a session that only accepts interactions from owner.
func New(owner uint64, target Target, prompter Prompter, opts ...Option) *Session {
	s := &Session{
		owner:    owner,
		target:   target,
		prompter: prompter,
		timeout:  DefaultTimeout,
		state:    Loading,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	s.logger = s.logger.WithField("discord_user_id", owner)
	return s
}

func (s *Session) State() State { return s.state }

// Run drives the session to a terminal state. A timeout or an explicit
// cancel yields an Abandoned outcome and a nil error. Load and commit
// failures abandon the session and are returned.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	s.groups = s.target.Groups()

	draft, err := s.target.Load(ctx)
	if err != nil {
		return s.finish(ctx, Abandoned, ReasonError), fmt.Errorf("load draft: %w", err)
	}
	s.draft = draft
	s.transition(AwaitingChoice)

	var rejected []FieldError
	for {
		choice, err := s.choose(ctx, Menu{Draft: s.draft.Clone(), Groups: s.groups, Errors: rejected})
		if err != nil {
			return s.abandon(ctx, err)
		}
		rejected = nil

		switch choice.Kind {
		case ChooseCancel:
			return s.finish(ctx, Abandoned, ReasonCancelled), nil

		case ChooseSave:
			// the commit must run to completion even if ctx ends meanwhile
			if err := s.target.Commit(context.WithoutCancel(ctx), s.draft.Clone()); err != nil {
				return s.finish(ctx, Abandoned, ReasonError), fmt.Errorf("commit draft: %w", err)
			}
			return s.finish(ctx, Committed, ReasonSaved), nil

		case ChooseGroup:
			group, ok := findGroup(s.groups, choice.GroupID)
			if !ok {
				rejected = []FieldError{{Message: fmt.Sprintf("unknown section %q", choice.GroupID)}}
				continue
			}
			s.transition(AwaitingSubmission)
			res, err := s.form(ctx, FormRequest{Group: group, Prefill: group.Prefill(s.draft)})
			if err != nil {
				return s.abandon(ctx, err)
			}
			s.transition(AwaitingChoice)
			if !res.Submitted {
				continue
			}
			updated, err := group.Apply(s.validate, s.draft, res.Values)
			var verr *ValidationError
			if errors.As(err, &verr) {
				s.logger.WithField("group", group.ID).Debug("edit rejected")
				rejected = verr.Fields
				continue
			}
			s.draft = updated
		}
	}
}

// choose waits for the owner's choice. Events from other users are dropped
// and the wait resumes against the same deadline.
func (s *Session) choose(ctx context.Context, menu Menu) (Choice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for {
		c, err := s.prompter.Choose(ctx, menu)
		if err != nil {
			return Choice{}, err
		}
		if c.UserID == s.owner {
			return c, nil
		}
		s.logger.WithField("from", c.UserID).Debug("ignoring choice from another user")
	}
}

func (s *Session) form(ctx context.Context, req FormRequest) (FormResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for {
		r, err := s.prompter.Form(ctx, req)
		if err != nil {
			return FormResult{}, err
		}
		if r.UserID == s.owner {
			return r, nil
		}
		s.logger.WithField("from", r.UserID).Debug("ignoring form result from another user")
	}
}

func (s *Session) abandon(ctx context.Context, err error) (Outcome, error) {
	switch {
	case ctx.Err() != nil:
		return s.finish(ctx, Abandoned, ReasonCancelled), ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return s.finish(ctx, Abandoned, ReasonTimeout), nil
	default:
		return s.finish(ctx, Abandoned, ReasonError), err
	}
}

func (s *Session) finish(ctx context.Context, state State, reason Reason) Outcome {
	s.transition(state)
	out := Outcome{State: state, Reason: reason, Draft: s.draft.Clone()}
	if err := s.prompter.Finish(context.WithoutCancel(ctx), out); err != nil {
		s.logger.WithError(err).Warn("failed to render session outcome")
	}
	s.logger.WithField("reason", reason).Info("edit session ended")
	return out
}

func (s *Session) transition(to State) {
	s.logger.WithFields(logrus.Fields{"from": s.state, "to": to}).Debug("edit session transition")
	s.state = to
}
