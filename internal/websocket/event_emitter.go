package websocket

import (
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
)

// ScoreSubmitted announces a new game session.
func (h *Hub) ScoreSubmitted(session *domain.GameSession, displayName string) {
	msg, err := NewMessage(MessageTypeScoreSubmitted, ScoreSubmittedPayload{
		SessionID:   session.ID,
		UserID:      session.UserID,
		DisplayName: displayName,
		ContentID:   session.ContentID,
		Score:       session.Score,
		MaxScore:    session.MaxScore,
		IsCompleted: session.IsCompleted,
	})
	if err != nil {
		h.log.Error("failed to build score event", "error", err)
		return
	}
	msg.contentID = session.ContentID
	h.Publish(msg)
}

// ArtworkPublished announces a new artwork using its public view.
func (h *Hub) ArtworkPublished(artwork *domain.Artwork) {
	msg, err := NewMessage(MessageTypeArtworkPublished, ArtworkPublishedPayload{
		Artwork: artwork.PublicView(),
	})
	if err != nil {
		h.log.Error("failed to build artwork event", "error", err)
		return
	}
	h.Publish(msg)
}

func (h *Hub) ArtworkDeleted(artworkID uuid.UUID) {
	msg, err := NewMessage(MessageTypeArtworkDeleted, ArtworkDeletedPayload{ArtworkID: artworkID})
	if err != nil {
		h.log.Error("failed to build artwork event", "error", err)
		return
	}
	h.Publish(msg)
}
