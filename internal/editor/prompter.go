package editor

import (
	"context"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

// ChoiceKind is what the user picked from the menu.
type ChoiceKind int

const (
	ChooseGroup ChoiceKind = iota
	ChooseSave
	ChooseCancel
)

// Menu is shown while the session awaits a choice.
type Menu struct {
	Draft  entity.ProfileFields
	Groups []Group
	// Errors from the last rejected submission, if any.
	Errors []FieldError
}

type Choice struct {
	Kind    ChoiceKind
	GroupID string
	// UserID is the platform user who made the choice.
	UserID uint64
}

// FormRequest opens the sub-form of one group.
type FormRequest struct {
	Group   Group
	Prefill map[entity.Field]string
}

// FormResult is a submitted or dismissed sub-form. Values holds one entry per
// field of the group; missing or blank entries clear the field.
type FormResult struct {
	Submitted bool
	UserID    uint64
	Values    map[entity.Field]string
}

// Prompter is the UI the session talks to. Choose and Form block until the
// user answers or ctx is done, in which case they return ctx.Err().
// Implementations may deliver events from any user; the session discards
// those that do not come from its owner.
type Prompter interface {
	Choose(ctx context.Context, menu Menu) (Choice, error)
	Form(ctx context.Context, req FormRequest) (FormResult, error)
	// Finish renders the terminal state. Its error is only logged.
	Finish(ctx context.Context, outcome Outcome) error
}

// Target loads the initial draft and persists the final one.
type Target interface {
	Groups() []Group
	Load(ctx context.Context) (entity.ProfileFields, error)
	Commit(ctx context.Context, draft entity.ProfileFields) error
}
