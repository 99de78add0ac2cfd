package affiliations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
)

// Repository exposes affiliation and request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRequestTx inserts a pending request inside the caller's transaction.
func (r *Repository) CreateRequestTx(tx *gorm.DB, request *models.AffiliationRequest) error {
	return tx.Create(request).Error
}

// FindRequestByID loads a request by its identifier.
func (r *Repository) FindRequestByID(ctx context.Context, id uuid.UUID) (*models.AffiliationRequest, error) {
	var request models.AffiliationRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindRequestByIDTx re-loads a request inside a transaction.
func (r *Repository) FindRequestByIDTx(tx *gorm.DB, id uuid.UUID) (*models.AffiliationRequest, error) {
	var request models.AffiliationRequest
	if err := tx.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindRequestBetween returns the request between two accounts in either
// direction, or gorm.ErrRecordNotFound.
func (r *Repository) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.AffiliationRequest, error) {
	var request models.AffiliationRequest
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListRequestsInvolving returns all requests where the user is a party, newest first.
func (r *Repository) ListRequestsInvolving(ctx context.Context, userID uuid.UUID) ([]models.AffiliationRequest, error) {
	var requests []models.AffiliationRequest
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// DeleteRequest removes a request outside any caller transaction. Used for
// cleanup-on-detection so the delete survives a failing operation.
func (r *Repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AffiliationRequest{}, "id = ?", id).Error
}

// DeleteRequestTx removes a request inside the caller's transaction.
func (r *Repository) DeleteRequestTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&models.AffiliationRequest{}, "id = ?", id).Error
}

// CreateAffiliationTx inserts the artist/shop edge inside the caller's
// transaction. The unique index on artist_id rejects a second shop.
func (r *Repository) CreateAffiliationTx(tx *gorm.DB, affiliation *models.Affiliation) error {
	return tx.Create(affiliation).Error
}

// FindAffiliationByArtist returns the artist's current edge, if any.
func (r *Repository) FindAffiliationByArtist(ctx context.Context, artistID uuid.UUID) (*models.Affiliation, error) {
	var affiliation models.Affiliation
	if err := r.db.WithContext(ctx).Where("artist_id = ?", artistID).First(&affiliation).Error; err != nil {
		return nil, err
	}
	return &affiliation, nil
}

// FindAffiliationBetween returns the edge linking the given artist and shop.
func (r *Repository) FindAffiliationBetween(ctx context.Context, artistID, shopID uuid.UUID) (*models.Affiliation, error) {
	var affiliation models.Affiliation
	err := r.db.WithContext(ctx).
		Where("artist_id = ? AND shop_id = ?", artistID, shopID).
		First(&affiliation).Error
	if err != nil {
		return nil, err
	}
	return &affiliation, nil
}

// DeleteAffiliation removes the edge and reports whether it existed.
func (r *Repository) DeleteAffiliation(ctx context.Context, artistID, shopID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("artist_id = ? AND shop_id = ?", artistID, shopID).
		Delete(&models.Affiliation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListShopArtists returns the artists currently linked to the shop.
func (r *Repository) ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]models.User, error) {
	var artists []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN affiliations ON affiliations.artist_id = users.id").
		Where("affiliations.shop_id = ?", shopID).
		Order("users.username").
		Find(&artists).Error
	return artists, err
}

// UserByIDTx loads a user inside a transaction for accept-time re-validation.
func (r *Repository) UserByIDTx(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
