package model

// Presence setting keys. The key-space is closed: unknown keys are rejected
// at validation time and never reach storage.
const (
	SettingMaxOnlineUsers        = "max_online_users"
	SettingEnableQueue           = "enable_queue"
	SettingBlockQueuedWriteHeavy = "block_queued_write_heavy"
)

// PresenceSettings are the runtime flags that gate how many end users may
// be concurrently active and how excess users are handled.
type PresenceSettings struct {
	MaxOnlineUsers        int  `json:"max_online_users"`
	EnableQueue           bool `json:"enable_queue"`
	BlockQueuedWriteHeavy bool `json:"block_queued_write_heavy"`
}

// DefaultPresenceSettings returns the values used for keys that have never
// been written.
func DefaultPresenceSettings() PresenceSettings {
	return PresenceSettings{
		MaxOnlineUsers:        0,
		EnableQueue:           false,
		BlockQueuedWriteHeavy: true,
	}
}
