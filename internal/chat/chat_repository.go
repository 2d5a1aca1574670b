package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

type ChatRepository interface {
	GetConversation(ctx context.Context, id string) (*dbsql.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (*dbsql.Conversation, error)
	FindByParticipants(ctx context.Context, userA, userB string) (*dbsql.Conversation, error)
	CreateDirect(ctx context.Context, userA, userB string) (*dbsql.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]dbsql.Conversation, error)
	Participants(ctx context.Context, conversationID string) ([]dbsql.ConversationParticipant, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	SaveMessage(ctx context.Context, m *dbsql.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]dbsql.Message, error)
	LastMessage(ctx context.Context, conversationID string) (*dbsql.Message, error)
	MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetConversation(ctx context.Context, id string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) GetByPairKey(ctx context.Context, pairKey string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).First(&conv, "pair_key = ?", pairKey).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByParticipants intersects the junction table for the two users.
// Kept for conversations created before pair keys existed; new direct
// conversations are found through GetByPairKey.
func (r *chatRepository) FindByParticipants(ctx context.Context, userA, userB string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&dbsql.ConversationParticipant{}).
			Select("conversation_id").Where("user_id = ?", userA)).
		Where("id IN (?)", r.db.Model(&dbsql.ConversationParticipant{}).
			Select("conversation_id").Where("user_id = ?", userB)).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateDirect inserts the conversation row and both participant rows in
// one transaction. The unique index on pair_key is what makes the
// two-party conversation unique; callers retry as a lookup on conflict.
func (r *chatRepository) CreateDirect(ctx context.Context, userA, userB string) (*dbsql.Conversation, error) {
	pairKey := dbsql.DirectPairKey(userA, userB)
	conv := &dbsql.Conversation{PairKey: &pairKey}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		participants := []dbsql.ConversationParticipant{
			{ConversationID: conv.ID, UserID: userA},
			{ConversationID: conv.ID, UserID: userB},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID string) ([]dbsql.Conversation, error) {
	var convs []dbsql.Conversation
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&dbsql.ConversationParticipant{}).
			Select("conversation_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *chatRepository) Participants(ctx context.Context, conversationID string) ([]dbsql.ConversationParticipant, error) {
	var parts []dbsql.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Find(&parts).Error
	return parts, err
}

func (r *chatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *chatRepository) SaveMessage(ctx context.Context, m *dbsql.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]dbsql.Message, error) {
	var msgs []dbsql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *chatRepository) LastMessage(ctx context.Context, conversationID string) (*dbsql.Message, error) {
	var msg dbsql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&dbsql.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", at).Error
}
