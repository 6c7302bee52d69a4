package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinChat          = "joinChat"
	InboundTypeSendMessage       = "sendMessage"
	InboundTypeIsOnline          = "isOnline"
	InboundTypeCheckOnlineStatus = "checkOnlineStatus"

	OutboundTypeChatJoined      = "chatJoined"
	OutboundTypeMessageReceived = "messageReceived"
	OutboundTypeOnlineStatus    = "onlineStatus"
	OutboundTypeError           = "error"
)

// JoinChatData requests to join the conversation with a target user.
type JoinChatData struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// SendMessageData is a chat message addressed to a target user.
type SendMessageData struct {
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	TargetUserID string `json:"targetUserId"`
	Text         string `json:"text"`
}

// IsOnlineData registers the connection as online for its user.
type IsOnlineData struct {
	UserID string `json:"userId"`
}

// CheckOnlineStatusData asks whether a target user is online.
type CheckOnlineStatusData struct {
	TargetUserID string `json:"targetUserId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ChatJoinedData confirms a join and carries the session ID.
type ChatJoinedData struct {
	ChatID string `json:"chatId"`
}

// MessageData is a chat message as delivered on the wire.
type MessageData struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// MessageReceivedData is broadcast to a session's room for each message.
type MessageReceivedData struct {
	ChatID  string      `json:"chatId"`
	Message MessageData `json:"message"`
}

// OnlineStatusData answers a checkOnlineStatus request.
type OnlineStatusData struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
