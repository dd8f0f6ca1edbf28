package entity

// StaffRole marks a Discord role whose members may manage other users' data.
type StaffRole struct {
	ID            int64
	DiscordRoleID uint64
}
