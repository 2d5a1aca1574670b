package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

// ErrNotParticipant rejects sends and read-marks from users outside the
// conversation.
var ErrNotParticipant = errors.New("user is not a participant of this conversation")

// UserDirectory resolves user ids to rows for summary payloads.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*dbsql.User, error)
}

// Summary is one row of the conversation listing: the counterpart's
// handle (meaningful for two-party conversations only), the latest
// message and the viewer's unread state.
type Summary struct {
	Conversation dbsql.Conversation
	Counterpart  string
	LastMessage  *dbsql.Message
	Unread       bool
}

type ChatService struct {
	repo  ChatRepository
	users UserDirectory
}

func NewChatService(repo ChatRepository, users UserDirectory) *ChatService {
	return &ChatService{repo: repo, users: users}
}

// OpenDirect returns the unique direct conversation between the two
// users, creating it on first use. Lookup order: canonical pair key,
// then the legacy participant-set intersection for rows that predate
// pair keys, then create. A creation race resolves through the unique
// index on pair_key and retries as a lookup. Symmetric in its arguments.
func (s *ChatService) OpenDirect(ctx context.Context, a, b *dbsql.User) (*dbsql.Conversation, error) {
	pairKey := dbsql.DirectPairKey(a.ID, b.ID)

	conv, err := s.repo.GetByPairKey(ctx, pairKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv, err = s.repo.FindByParticipants(ctx, a.ID, b.ID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv, err = s.repo.CreateDirect(ctx, a.ID, b.ID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.repo.GetByPairKey(ctx, pairKey)
	}
	return conv, err
}

// SendMessage stores a message after checking the sender actually
// belongs to the conversation.
func (s *ChatService) SendMessage(ctx context.Context, conversationID string, sender *dbsql.User, content string) (*dbsql.Message, error) {
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	member, err := s.repo.IsParticipant(ctx, conversationID, sender.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotParticipant
	}

	msg := &dbsql.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        content,
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ChatService) ListMessages(ctx context.Context, conversationID string, limit int) ([]dbsql.Message, error) {
	return s.repo.ListMessages(ctx, conversationID, limit)
}

// MarkRead moves the viewer's read cursor to now.
func (s *ChatService) MarkRead(ctx context.Context, conversationID string, viewer *dbsql.User) error {
	member, err := s.repo.IsParticipant(ctx, conversationID, viewer.ID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotParticipant
	}
	return s.repo.MarkRead(ctx, conversationID, viewer.ID, time.Now().UTC())
}

// Summaries lists the viewer's conversations with counterpart handle,
// latest message and unread state. The counterpart is the first
// participant who is not the viewer; for group conversations that is
// only a display heuristic.
func (s *ChatService) Summaries(ctx context.Context, viewer *dbsql.User) ([]Summary, error) {
	convs, err := s.repo.ListForUser(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(convs))
	for _, conv := range convs {
		parts, err := s.repo.Participants(ctx, conv.ID)
		if err != nil {
			return nil, err
		}

		counterpart := "unknown"
		var viewerPart *dbsql.ConversationParticipant
		for i := range parts {
			if parts[i].UserID == viewer.ID {
				viewerPart = &parts[i]
				continue
			}
			if counterpart == "unknown" {
				if u, err := s.users.GetUserByID(ctx, parts[i].UserID); err == nil {
					counterpart = u.Handle
				}
			}
		}

		last, err := s.repo.LastMessage(ctx, conv.ID)
		if err != nil {
			return nil, err
		}

		unread := false
		if last != nil && last.SenderID != viewer.ID {
			unread = viewerPart == nil || viewerPart.LastReadAt == nil ||
				viewerPart.LastReadAt.Before(last.CreatedAt)
		}

		summaries = append(summaries, Summary{
			Conversation: conv,
			Counterpart:  counterpart,
			LastMessage:  last,
			Unread:       unread,
		})
	}
	return summaries, nil
}
