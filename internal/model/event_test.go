package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEvent_Unmarshal(t *testing.T) {
	payload := []byte(`{
		"event": "messages.upsert",
		"instance": "leadtalk-main",
		"data": {
			"key": {"remoteJid": "5511987654321@s.whatsapp.net", "fromMe": false},
			"pushName": "Maria",
			"message": {"conversation": "oi, tudo bem?"},
			"messageTimestamp": 1756700000,
			"status": "DELIVERY_ACK"
		}
	}`)

	var event WebhookEvent
	require.NoError(t, json.Unmarshal(payload, &event))

	assert.Equal(t, EventMessagesUpsert, event.Event)
	assert.Equal(t, "leadtalk-main", event.Instance)
	assert.Equal(t, "5511987654321@s.whatsapp.net", event.Data.Key.RemoteJid)
	assert.False(t, event.Data.Key.FromMe)
	assert.Equal(t, "oi, tudo bem?", event.Data.Body())
	assert.Equal(t, int64(1756700000), event.Data.MessageTimestamp)
}

func TestWebhookData_Body(t *testing.T) {
	withBody := WebhookData{Message: &EventMessage{Conversation: "texto"}}
	assert.Equal(t, "texto", withBody.Body())

	mediaOnly := WebhookData{Message: &EventMessage{}}
	assert.Empty(t, mediaOnly.Body())

	noMessage := WebhookData{}
	assert.Empty(t, noMessage.Body())
}

func TestWebhookEvent_RemotePhone(t *testing.T) {
	testCases := []struct {
		name     string
		jid      string
		expected string
	}{
		{"whatsapp jid", "5511987654321@s.whatsapp.net", "5511987654321"},
		{"no suffix", "5511987654321", "5511987654321"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event := WebhookEvent{Data: WebhookData{Key: EventKey{RemoteJid: tc.jid}}}
			assert.Equal(t, tc.expected, event.RemotePhone())
		})
	}
}

func TestWebhookEvent_Direction(t *testing.T) {
	inbound := WebhookEvent{Data: WebhookData{Key: EventKey{FromMe: false}}}
	assert.Equal(t, DirectionInbound, inbound.Direction())

	outbound := WebhookEvent{Data: WebhookData{Key: EventKey{FromMe: true}}}
	assert.Equal(t, DirectionOutbound, outbound.Direction())
}

func TestMapProviderStatus(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"DELIVERY_ACK", StatusDelivered},
		{"READ", StatusRead},
		{"PLAYED", StatusPlayed},
		{"DELETED", StatusDeleted},
		{"ERROR", StatusFailed},
		{"PENDING", StatusPending},
		{"read", StatusRead},
		{"  READ  ", StatusRead},
		{"SERVER_ACK", StatusSent},
		{"", StatusSent},
		{"anything-else", StatusSent},
	}

	for _, tc := range testCases {
		t.Run("status "+tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapProviderStatus(tc.raw))
		})
	}
}
