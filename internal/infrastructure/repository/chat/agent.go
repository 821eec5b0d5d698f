package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
)

// PostgresAgentRepository persists agent profiles via GORM.
type PostgresAgentRepository struct {
	db *transaction.Database
}

func NewPostgresAgentRepository(db *transaction.Database) *PostgresAgentRepository {
	return &PostgresAgentRepository{db: db}
}

func (r *PostgresAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	var record entities.Agent
	err := r.db.GetTx(ctx).WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return agentToDomain(&record), nil
}

func (r *PostgresAgentRepository) ListOnline(ctx context.Context) ([]*domain.Agent, error) {
	var records []entities.Agent
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("presence = ?", string(domain.PresenceOnline)).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Agent, 0, len(records))
	for i := range records {
		out = append(out, agentToDomain(&records[i]))
	}
	return out, nil
}

func (r *PostgresAgentRepository) Create(ctx context.Context, agent *domain.Agent) (*domain.Agent, error) {
	record := entities.Agent{
		ID:             uuid.New(),
		DisplayName:    agent.DisplayName,
		Presence:       string(agent.Presence),
		MaxActiveChats: agent.MaxActiveChats,
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return agentToDomain(&record), nil
}

func (r *PostgresAgentRepository) UpdatePresence(ctx context.Context, agent *domain.Agent) error {
	now := time.Now().UTC()
	err := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Agent{}).
		Where("id = ?", agent.ID).
		Updates(map[string]any{
			"presence":   string(agent.Presence),
			"updated_at": now,
		}).Error
	if err != nil {
		return err
	}
	agent.UpdatedAt = now
	return nil
}

var _ domain.AgentRepository = (*PostgresAgentRepository)(nil)

// PostgresAgentUserRepository persists agent login accounts via GORM.
type PostgresAgentUserRepository struct {
	db *transaction.Database
}

func NewPostgresAgentUserRepository(db *transaction.Database) *PostgresAgentUserRepository {
	return &PostgresAgentUserRepository{db: db}
}

func (r *PostgresAgentUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AgentUser, error) {
	var record entities.AgentUser
	err := r.db.GetTx(ctx).WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return agentUserToDomain(&record), nil
}

func (r *PostgresAgentUserRepository) GetByUsername(ctx context.Context, username string) (*domain.AgentUser, error) {
	var record entities.AgentUser
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("username = ?", username).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return agentUserToDomain(&record), nil
}

func (r *PostgresAgentUserRepository) Create(ctx context.Context, account *domain.AgentUser) (*domain.AgentUser, error) {
	record := entities.AgentUser{
		ID:           uuid.New(),
		AgentID:      account.AgentID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		IsActive:     account.IsActive,
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return agentUserToDomain(&record), nil
}

var _ domain.AgentUserRepository = (*PostgresAgentUserRepository)(nil)
