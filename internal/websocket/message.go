package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"

	// Server to Client
	MessageTypeScoreSubmitted   MessageType = "score_submitted"
	MessageTypeArtworkPublished MessageType = "artwork_published"
	MessageTypeArtworkDeleted   MessageType = "artwork_deleted"
	MessageTypeSubscribed       MessageType = "subscribed"
	MessageTypeError            MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`

	// contentID scopes game events; clients subscribed to another content skip it.
	contentID string
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

// SubscribePayload narrows score events to one game or quiz. Empty means all.
type SubscribePayload struct {
	ContentID string `json:"contentId"`
}

// Server to Client payloads

type ScoreSubmittedPayload struct {
	SessionID   uuid.UUID `json:"sessionId"`
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	ContentID   string    `json:"contentId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	IsCompleted bool      `json:"isCompleted"`
}

type ArtworkPublishedPayload struct {
	Artwork domain.PublicArtwork `json:"artwork"`
}

type ArtworkDeletedPayload struct {
	ArtworkID uuid.UUID `json:"artworkId"`
}

type SubscribedPayload struct {
	ContentID string `json:"contentId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
