package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
)

// PostgresConversationRepository persists conversations via GORM.
type PostgresConversationRepository struct {
	db *transaction.Database
}

func NewPostgresConversationRepository(db *transaction.Database) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var record entities.Conversation
	err := r.db.GetTx(ctx).WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return conversationToDomain(&record), nil
}

func (r *PostgresConversationRepository) GetLatestActiveBySession(ctx context.Context, customerSessionID string) (*domain.Conversation, error) {
	var record entities.Conversation
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("customer_session_id = ? AND status <> ?", customerSessionID, string(domain.StatusClosed)).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return conversationToDomain(&record), nil
}

func (r *PostgresConversationRepository) Create(ctx context.Context, customerSessionID string) (*domain.Conversation, error) {
	record := entities.Conversation{
		ID:                uuid.New(),
		CustomerSessionID: customerSessionID,
		Status:            string(domain.StatusAutomated),
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return conversationToDomain(&record), nil
}

// Touch persists the conversation's mutable fields and bumps its
// updated_at stamp.
func (r *PostgresConversationRepository) Touch(ctx context.Context, conversation *domain.Conversation) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":             string(conversation.Status),
		"assigned_agent_id":  conversation.AssignedAgentID,
		"requested_agent_at": conversation.RequestedAgentAt,
		"closed_at":          conversation.ClosedAt,
		"updated_at":         now,
	}
	err := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conversation.ID).
		Updates(updates).Error
	if err != nil {
		return err
	}
	conversation.UpdatedAt = now
	return nil
}

func (r *PostgresConversationRepository) CountActiveAssignedTo(ctx context.Context, agentID uuid.UUID) (int, error) {
	var count int64
	err := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("assigned_agent_id = ? AND status = ?", agentID, string(domain.StatusAgent)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// AssignAgent claims a conversation for an agent with a conditional
// update, so two concurrent claimants cannot both win. On success the
// in-memory conversation is updated to match.
func (r *PostgresConversationRepository) AssignAgent(ctx context.Context, conversation *domain.Conversation, agentID uuid.UUID) error {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND assigned_agent_id IS NULL", conversation.ID).
		Update("assigned_agent_id", agentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConversationAlreadyAssigned, conversation.ID)
	}
	assigned := agentID
	conversation.AssignedAgentID = &assigned
	return nil
}

func (r *PostgresConversationRepository) ListForAgentWorkspace(ctx context.Context, agentID uuid.UUID, statusFilter *domain.ConversationStatus) ([]*domain.Conversation, error) {
	query := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Conversation{}).
		Where(
			"assigned_agent_id = ? OR (assigned_agent_id IS NULL AND status = ?)",
			agentID, string(domain.StatusAgent),
		)
	if statusFilter != nil {
		query = query.Where("status = ?", string(*statusFilter))
	}

	var records []entities.Conversation
	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Conversation, 0, len(records))
	for i := range records {
		out = append(out, conversationToDomain(&records[i]))
	}
	return out, nil
}

var _ domain.ConversationRepository = (*PostgresConversationRepository)(nil)
