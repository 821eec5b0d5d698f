package chat

import (
	"context"

	"github.com/google/uuid"

	domain "support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
)

// PostgresMessageRepository persists conversation messages via GORM.
type PostgresMessageRepository struct {
	db *transaction.Database
}

func NewPostgresMessageRepository(db *transaction.Database) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	record := messageToEntity(message)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return messageToDomain(record), nil
}

// ListByConversation returns the full history in insertion order. The
// id tie-break keeps messages created in the same instant stable.
func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	var records []entities.Message
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Message, 0, len(records))
	for i := range records {
		out = append(out, messageToDomain(&records[i]))
	}
	return out, nil
}

var _ domain.MessageRepository = (*PostgresMessageRepository)(nil)
