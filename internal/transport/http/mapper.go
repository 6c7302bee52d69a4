package http

import (
	"encoding/json"

	"github.com/teamdocs/teamdocs-server/internal/core"
	"github.com/teamdocs/teamdocs-server/internal/proto"
)

// inboundToCommand validates a wire message against the authenticated
// client and maps it onto a core command. Identity fields in the
// payload must match the connection's user; mismatches are rejected
// rather than trusted. Bad input yields a protocol error for the
// sending connection, never a connection teardown.
func inboundToCommand(client *core.Client, inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinChat:
		var join proto.JoinChatData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if join.UserID != "" && join.UserID != client.UserID {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId does not match connection"}
		}
		if join.TargetUserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidationFailed, Msg: "targetUserId is required"}
		}
		return &core.Command{
			Kind:         core.CommandJoinChat,
			TargetUserID: join.TargetUserID,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if msg.SenderID != "" && msg.SenderID != client.UserID {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "senderId does not match connection"}
		}
		if msg.TargetUserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidationFailed, Msg: "targetUserId is required"}
		}
		return &core.Command{
			Kind:         core.CommandSendMessage,
			TargetUserID: msg.TargetUserID,
			SenderName:   msg.SenderName,
			Text:         msg.Text,
		}, nil
	case proto.InboundTypeIsOnline:
		var online proto.IsOnlineData
		if err := json.Unmarshal(inbound.Data, &online); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if online.UserID != "" && online.UserID != client.UserID {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId does not match connection"}
		}
		return &core.Command{Kind: core.CommandPresenceUpdate}, nil
	case proto.InboundTypeCheckOnlineStatus:
		var check proto.CheckOnlineStatusData
		if err := json.Unmarshal(inbound.Data, &check); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if check.TargetUserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeValidationFailed, Msg: "targetUserId is required"}
		}
		return &core.Command{
			Kind:         core.CommandPresenceQuery,
			TargetUserID: check.TargetUserID,
		}, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChatJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeChatJoined,
			Data: proto.ChatJoinedData{ChatID: event.SessionID},
		}
	case core.EventMessageReceived:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageReceived,
			Data: proto.MessageReceivedData{
				ChatID: event.SessionID,
				Message: proto.MessageData{
					SenderID:   event.Message.SenderID,
					SenderName: event.Message.SenderName,
					Text:       event.Message.Text,
					Timestamp:  event.Message.CreatedAt.UnixMilli(),
				},
			},
		}
	case core.EventOnlineStatus:
		return proto.Outbound{
			Type: proto.OutboundTypeOnlineStatus,
			Data: proto.OnlineStatusData{
				UserID: event.UserID,
				Online: event.Online,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}
