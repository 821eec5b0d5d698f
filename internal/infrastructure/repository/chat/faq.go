package chat

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
)

// PostgresFaqRepository serves the canned question catalog via GORM.
type PostgresFaqRepository struct {
	db *transaction.Database
}

func NewPostgresFaqRepository(db *transaction.Database) *PostgresFaqRepository {
	return &PostgresFaqRepository{db: db}
}

func (r *PostgresFaqRepository) ListActive(ctx context.Context) ([]*domain.FaqEntry, error) {
	var records []entities.FaqEntry
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC, slug ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.FaqEntry, 0, len(records))
	for i := range records {
		out = append(out, faqToDomain(&records[i]))
	}
	return out, nil
}

func (r *PostgresFaqRepository) GetActiveBySlug(ctx context.Context, slug string) (*domain.FaqEntry, error) {
	var record entities.FaqEntry
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("slug = ? AND is_active = ?", strings.TrimSpace(slug), true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return faqToDomain(&record), nil
}

// FindByQuestionOrSlug matches free text against the catalog, first by
// exact question (case-insensitive), then by slug.
func (r *PostgresFaqRepository) FindByQuestionOrSlug(ctx context.Context, text string) (*domain.FaqEntry, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	var record entities.FaqEntry
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("is_active = ? AND (LOWER(question) = ? OR slug = ?)", true, needle, needle).
		Order("display_order ASC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return faqToDomain(&record), nil
}

var _ domain.FaqRepository = (*PostgresFaqRepository)(nil)
