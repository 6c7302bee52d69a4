package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdocs/teamdocs-server/internal/core"
	"github.com/teamdocs/teamdocs-server/internal/proto"
)

func inbound(t *testing.T, msgType string, data any) proto.Inbound {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return proto.Inbound{Type: msgType, Data: raw}
}

func TestInboundToCommandJoinChat(t *testing.T) {
	client := core.NewClient("conn-1", "alice", "Alice A")

	cmd, protoErr := inboundToCommand(client, inbound(t, proto.InboundTypeJoinChat, proto.JoinChatData{
		UserID:       "alice",
		TargetUserID: "bob",
	}))
	require.Nil(t, protoErr)
	assert.Equal(t, core.CommandJoinChat, cmd.Kind)
	assert.Equal(t, "bob", cmd.TargetUserID)
}

func TestInboundToCommandRejectsForeignIdentity(t *testing.T) {
	client := core.NewClient("conn-1", "alice", "Alice A")

	cmd, protoErr := inboundToCommand(client, inbound(t, proto.InboundTypeSendMessage, proto.SendMessageData{
		SenderID:     "mallory",
		TargetUserID: "bob",
		Text:         "hi",
	}))
	require.Nil(t, cmd)
	require.NotNil(t, protoErr)
	assert.Equal(t, core.ErrCodeBadRequest, protoErr.Code)

	cmd, protoErr = inboundToCommand(client, inbound(t, proto.InboundTypeJoinChat, proto.JoinChatData{
		UserID:       "mallory",
		TargetUserID: "bob",
	}))
	require.Nil(t, cmd)
	require.NotNil(t, protoErr)
}

func TestInboundToCommandMissingTarget(t *testing.T) {
	client := core.NewClient("conn-1", "alice", "Alice A")

	cmd, protoErr := inboundToCommand(client, inbound(t, proto.InboundTypeSendMessage, proto.SendMessageData{Text: "hi"}))
	require.Nil(t, cmd)
	require.NotNil(t, protoErr)
	assert.Equal(t, core.ErrCodeValidationFailed, protoErr.Code)

	cmd, protoErr = inboundToCommand(client, inbound(t, proto.InboundTypeCheckOnlineStatus, proto.CheckOnlineStatusData{}))
	require.Nil(t, cmd)
	require.NotNil(t, protoErr)
}

func TestInboundToCommandMalformedData(t *testing.T) {
	client := core.NewClient("conn-1", "alice", "Alice A")

	// Malformed or absent data is answered with a protocol error; it
	// must never escalate into closing the connection.
	for _, msgType := range []string{
		proto.InboundTypeJoinChat,
		proto.InboundTypeSendMessage,
		proto.InboundTypeIsOnline,
		proto.InboundTypeCheckOnlineStatus,
	} {
		cmd, protoErr := inboundToCommand(client, proto.Inbound{Type: msgType, Data: []byte(`"not an object"`)})
		require.Nil(t, cmd, msgType)
		require.NotNil(t, protoErr, msgType)
		assert.Equal(t, core.ErrCodeBadRequest, protoErr.Code, msgType)

		cmd, protoErr = inboundToCommand(client, proto.Inbound{Type: msgType})
		require.Nil(t, cmd, msgType)
		require.NotNil(t, protoErr, msgType)
		assert.Equal(t, core.ErrCodeBadRequest, protoErr.Code, msgType)
	}
}

func TestInboundToCommandUnknownType(t *testing.T) {
	client := core.NewClient("conn-1", "alice", "Alice A")

	cmd, protoErr := inboundToCommand(client, proto.Inbound{Type: "dance", Data: []byte(`{}`)})
	require.Nil(t, cmd)
	require.NotNil(t, protoErr)
	assert.Equal(t, "invalid_message", protoErr.Code)
}

func TestOutboundFromEvent(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	out := outboundFromEvent(&core.Event{Kind: core.EventChatJoined, SessionID: "s-1"})
	assert.Equal(t, proto.OutboundTypeChatJoined, out.Type)
	assert.Equal(t, proto.ChatJoinedData{ChatID: "s-1"}, out.Data)

	out = outboundFromEvent(&core.Event{
		Kind:      core.EventMessageReceived,
		SessionID: "s-1",
		Message: core.Message{
			SenderID:   "alice",
			SenderName: "Alice A",
			Text:       "hi",
			CreatedAt:  ts,
		},
	})
	assert.Equal(t, proto.OutboundTypeMessageReceived, out.Type)
	data, ok := out.Data.(proto.MessageReceivedData)
	require.True(t, ok)
	assert.Equal(t, "s-1", data.ChatID)
	assert.Equal(t, ts.UnixMilli(), data.Message.Timestamp)

	out = outboundFromEvent(&core.Event{Kind: core.EventOnlineStatus, UserID: "bob", Online: true})
	assert.Equal(t, proto.OutboundTypeOnlineStatus, out.Type)
	assert.Equal(t, proto.OnlineStatusData{UserID: "bob", Online: true}, out.Data)

	out = outboundFromEvent(&core.Event{Kind: core.EventError, Error: &core.CoreError{Code: "not_found", Message: "gone"}})
	assert.Equal(t, proto.OutboundTypeError, out.Type)
	require.NotNil(t, out.Error)
	assert.Equal(t, "not_found", out.Error.Code)
}
