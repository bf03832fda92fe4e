package model

import "strings"

// EventMessagesUpsert is the only event type this pipeline processes. Any
// other event type is acknowledged and ignored.
const EventMessagesUpsert = "messages.upsert"

// WebhookEvent is the inbound chat-platform payload. The provider sends it
// schemaless; fields are validated explicitly before any use.
type WebhookEvent struct {
	Event    string      `json:"event" validate:"required"`
	Instance string      `json:"instance" validate:"required"`
	Data     WebhookData `json:"data" validate:"required"`
}

// WebhookData carries the message-level fields of a webhook event.
type WebhookData struct {
	Key              EventKey      `json:"key" validate:"required"`
	PushName         string        `json:"pushName,omitempty"`
	Message          *EventMessage `json:"message,omitempty"`
	MessageTimestamp int64         `json:"messageTimestamp,omitempty" validate:"gte=0"`
	Status           string        `json:"status,omitempty"`
}

// EventKey identifies the remote party and message ownership.
type EventKey struct {
	RemoteJid string `json:"remoteJid" validate:"required"`
	FromMe    bool   `json:"fromMe"`
}

// EventMessage holds the text payload of a message event.
type EventMessage struct {
	Conversation string `json:"conversation,omitempty"`
}

// Body returns the text payload, or the empty string when absent. An absent
// body is not an error (media-only messages arrive without one).
func (d WebhookData) Body() string {
	if d.Message == nil {
		return ""
	}
	return d.Message.Conversation
}

// RemotePhone strips the provider domain suffix from the remote JID, leaving
// the raw phone identifier.
func (e WebhookEvent) RemotePhone() string {
	jid := e.Data.Key.RemoteJid
	if at := strings.IndexByte(jid, '@'); at >= 0 {
		return jid[:at]
	}
	return jid
}

// Direction derives the transcript direction from the own-message flag.
func (e WebhookEvent) Direction() string {
	if e.Data.Key.FromMe {
		return DirectionOutbound
	}
	return DirectionInbound
}

// providerStatuses maps provider status codes to delivery statuses.
var providerStatuses = map[string]string{
	"DELIVERY_ACK": StatusDelivered,
	"READ":         StatusRead,
	"PLAYED":       StatusPlayed,
	"DELETED":      StatusDeleted,
	"ERROR":        StatusFailed,
	"PENDING":      StatusPending,
}

// MapProviderStatus translates a provider status code into a delivery status.
// Unrecognized codes default to sent.
func MapProviderStatus(raw string) string {
	if status, ok := providerStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return status
	}
	return StatusSent
}
