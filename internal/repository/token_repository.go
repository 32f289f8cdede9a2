package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasknest/internal/model"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Add(token *model.SessionToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("create session token failed: %w", err)
	}
	return nil
}

// Get returns the stored token row for (userID, token), or nil if the token
// has been revoked or never existed.
func (r *TokenRepository) Get(userID uint, token string) (*model.SessionToken, error) {
	var stored model.SessionToken
	if err := r.db.Where("user_id = ? AND token = ?", userID, token).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session token failed: %w", err)
	}
	return &stored, nil
}

func (r *TokenRepository) ListByUserID(userID uint) ([]model.SessionToken, error) {
	var tokens []model.SessionToken
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("list session tokens failed: %w", err)
	}
	return tokens, nil
}

func (r *TokenRepository) Delete(userID uint, token string) error {
	if err := r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&model.SessionToken{}).Error; err != nil {
		return fmt.Errorf("delete session token failed: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteAllForUser(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.SessionToken{}).Error; err != nil {
		return fmt.Errorf("delete session tokens failed: %w", err)
	}
	return nil
}
