package entity

import "time"

// Profile is one immutable version of a user's extended profile.
// Only IsActive changes after insert, and at most one version per user is active.
type Profile struct {
	ID     int64
	UserID int64
	ProfileFields
	CreatedAt time.Time
	IsActive  bool
}

// NewProfile is the input of a new profile version.
type NewProfile struct {
	UserID int64
	ProfileFields
}

// Draft strips identity and version metadata from the snapshot.
func (p Profile) Draft() ProfileFields {
	return p.ProfileFields.Clone()
}
