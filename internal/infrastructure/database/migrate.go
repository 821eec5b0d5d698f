package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
)

type seedFaqEntry struct {
	Slug         string
	Question     string
	Answer       string
	DisplayOrder int
}

type seedAgentAccount struct {
	DisplayName    string
	Username       string
	Password       string
	MaxActiveChats int
}

var defaultFaqEntries = []seedFaqEntry{
	{
		Slug:         "delivery-date",
		Question:     "What is the delivery date?",
		Answer:       "Most orders are delivered in 3-5 business days based on your shipping location.",
		DisplayOrder: 1,
	},
	{
		Slug:         "return-policy",
		Question:     "What is the return policy?",
		Answer:       "You can return unused items within 30 days of delivery for a full refund.",
		DisplayOrder: 2,
	},
	{
		Slug:         "order-status",
		Question:     "Where is my order?",
		Answer:       "Share your order ID and I can help check the latest order tracking status.",
		DisplayOrder: 3,
	},
}

var defaultAgentAccounts = []seedAgentAccount{
	{DisplayName: "Bibek Joshi", Username: "bibek.joshi", Password: "BibekJoshi@123!", MaxActiveChats: 5},
	{DisplayName: "John Doe", Username: "john.doe", Password: "AgentPass123!", MaxActiveChats: 5},
	{DisplayName: "Admin", Username: "admin", Password: "Admin@123", MaxActiveChats: 5},
}

// AutoMigrate applies database schema changes and seeds baseline rows.
// Seeding is idempotent: existing slugs and usernames are left alone.
func AutoMigrate(ctx context.Context, db *gorm.DB, hasher chat.PasswordHasher, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Message{},
		&entities.Agent{},
		&entities.AgentUser{},
		&entities.FaqEntry{},
	); err != nil {
		return err
	}

	if err := seedDefaultFaqEntries(ctx, db, log); err != nil {
		return err
	}
	return seedDefaultAgentAccounts(ctx, db, hasher, log)
}

func seedDefaultFaqEntries(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	var existing []string
	if err := db.WithContext(ctx).Model(&entities.FaqEntry{}).Pluck("slug", &existing).Error; err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, slug := range existing {
		known[slug] = struct{}{}
	}

	seeded := 0
	for _, item := range defaultFaqEntries {
		if _, ok := known[item.Slug]; ok {
			continue
		}
		row := entities.FaqEntry{
			ID:           uuid.New(),
			Slug:         item.Slug,
			Question:     item.Question,
			Answer:       item.Answer,
			DisplayOrder: item.DisplayOrder,
			IsActive:     true,
		}
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		log.Info().Int("count", seeded).Msg("seeded default faq entries")
	}
	return nil
}

func seedDefaultAgentAccounts(ctx context.Context, db *gorm.DB, hasher chat.PasswordHasher, log zerolog.Logger) error {
	var existing []string
	if err := db.WithContext(ctx).Model(&entities.AgentUser{}).Pluck("username", &existing).Error; err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, username := range existing {
		known[username] = struct{}{}
	}

	for _, item := range defaultAgentAccounts {
		if _, ok := known[item.Username]; ok {
			continue
		}
		passwordHash, err := hasher.Hash(item.Password)
		if err != nil {
			return err
		}
		agent := entities.Agent{
			ID:             uuid.New(),
			DisplayName:    item.DisplayName,
			Presence:       string(chat.PresenceOffline),
			MaxActiveChats: item.MaxActiveChats,
		}
		if err := db.WithContext(ctx).Create(&agent).Error; err != nil {
			return err
		}
		account := entities.AgentUser{
			ID:           uuid.New(),
			AgentID:      agent.ID,
			Username:     item.Username,
			PasswordHash: passwordHash,
			IsActive:     true,
		}
		if err := db.WithContext(ctx).Create(&account).Error; err != nil {
			return err
		}
		log.Info().Str("username", item.Username).Msg("seeded default agent account")
	}
	return nil
}
