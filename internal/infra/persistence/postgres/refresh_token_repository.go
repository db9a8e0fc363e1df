package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// refreshTokenRepository implements the repository.RefreshTokenRepository interface.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// CreateRefreshToken persists a new refresh token, representing a user session.
func (repo *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate refresh token id")
		}
		token.ID = id
	}

	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindRefreshTokenByHashForUpdate locks the row (SELECT ... FOR UPDATE) so that
// concurrent rotations of the same token serialise on it. Revoked and expired
// records are returned as-is; callers decide usability.
func (repo *refreshTokenRepository) FindRefreshTokenByHashForUpdate(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	return repo.findByHash(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tokenHash)
}

func (repo *refreshTokenRepository) findByHash(db *gorm.DB, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	if err := db.Where("token_hash = ?", tokenHash).Take(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find refresh token")
	}

	return toRefreshTokenDomain(&tokenM), nil
}

// RevokeRefreshToken is a compare-and-set on the revoked flag. Only one caller
// can observe true for a given token.
func (repo *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, tokenHash string, replacedBy *uuid.UUID, at time.Time) (bool, error) {
	updates := map[string]any{
		"revoked":    true,
		"revoked_at": at,
	}
	if replacedBy != nil {
		updates["replaced_by"] = *replacedBy
	}

	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		Updates(updates)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke refresh token")
	}

	return result.RowsAffected == 1, nil
}

// RevokeRefreshTokensByUserID revokes every live session of a user.
func (repo *refreshTokenRepository) RevokeRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{
			"revoked":    true,
			"revoked_at": at,
		})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke user refresh tokens")
	}

	return result.RowsAffected, nil
}

// FindActiveRefreshTokensByUserID retrieves all usable refresh tokens for a user, newest first.
func (repo *refreshTokenRepository) FindActiveRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error) {
	var tokenModels []*model.RefreshTokenModel

	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").
		Find(&tokenModels).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list refresh tokens")
	}

	tokens := make([]*entity.RefreshToken, 0, len(tokenModels))
	for _, tokenM := range tokenModels {
		tokens = append(tokens, toRefreshTokenDomain(tokenM))
	}

	return tokens, nil
}

// --- Mapper Functions ---

// toRefreshTokenDomain converts a GORM RefreshTokenModel to a domain RefreshToken entity.
func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	if data == nil {
		return nil
	}

	return &entity.RefreshToken{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		Revoked:    data.Revoked,
		RevokedAt:  data.RevokedAt,
		ReplacedBy: data.ReplacedBy,
		CreatedAt:  data.CreatedAt,
	}
}

// fromRefreshTokenDomain converts a domain RefreshToken entity to a GORM RefreshTokenModel.
func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		Revoked:    data.Revoked,
		RevokedAt:  data.RevokedAt,
		ReplacedBy: data.ReplacedBy,
		CreatedAt:  data.CreatedAt,
	}
}
