package unit

import (
	"testing"

	"talk_message_service/internal/message/domain"

	"github.com/stretchr/testify/assert"
)

func TestConversationKeys(t *testing.T) {
	assert.Equal(t, "chat:c-1", domain.Channel(domain.KindDirect, "c-1"))
	assert.Equal(t, "group:g-1:messages", domain.HotKey(domain.KindGroup, "g-1"))
	assert.Equal(t, "chat:c-1:unseen_in_cold", domain.UnseenFlagKey(domain.KindDirect, "c-1"))
}

func TestChannelMatchesSubscribePatterns(t *testing.T) {
	// the fanout demuxes the conversation id from the channel name,
	// so every kind must produce a "{kind}:{id}" channel
	assert.Equal(t, "chat:abc", domain.Channel(domain.KindDirect, "abc"))
	assert.Equal(t, "group:abc", domain.Channel(domain.KindGroup, "abc"))
	assert.Equal(t, "call:abc", domain.Channel(domain.KindCall, "abc"))
}
