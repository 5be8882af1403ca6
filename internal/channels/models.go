package channels

import "time"

// Channel identifies a messaging surface the assistant can be reached on.
//
// Adding a channel is one constant plus one entry in AllChannels; nothing else
// branches on channel names.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
	ChannelFacebook  Channel = "facebook"
	ChannelTelegram  Channel = "telegram"
	ChannelVoice     Channel = "voice"
)

// AllChannels is the closed set of supported channels.
var AllChannels = []Channel{
	ChannelWhatsApp,
	ChannelInstagram,
	ChannelFacebook,
	ChannelTelegram,
	ChannelVoice,
}

func ValidChannel(c Channel) bool {
	for _, ch := range AllChannels {
		if ch == c {
			return true
		}
	}
	return false
}

// MasterKey is the toggle row gating the whole assistant. A channel is live
// only when both its own flag and the master flag are on.
const MasterKey = "master"

// Toggle is a persisted boolean flag, one row per channel plus the master row.
type Toggle struct {
	Key       string    `json:"key" db:"key"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Connection holds per-channel webhook/assistant identifiers.
type Connection struct {
	Channel     Channel   `json:"channel" db:"channel"`
	WebhookURL  string    `json:"webhook_url,omitempty" db:"webhook_url"`
	ExternalID  string    `json:"external_id,omitempty" db:"external_id"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
