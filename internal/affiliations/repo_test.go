package affiliations

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbpkg "github.com/inkbound/inkbound-backend/pkg/db"
	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

const repoTestSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	bio TEXT,
	avatar_url TEXT,
	location TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	last_login_at DATETIME,
	styles TEXT,
	years_experience INTEGER,
	portfolio_url TEXT,
	available_for_guests INTEGER,
	shop_name TEXT,
	address TEXT,
	website TEXT,
	price_range TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE affiliation_requests (
	id TEXT PRIMARY KEY,
	from_user_id TEXT NOT NULL,
	to_user_id TEXT NOT NULL,
	artist_id TEXT NOT NULL,
	shop_id TEXT NOT NULL,
	created_at DATETIME,
	UNIQUE (artist_id, shop_id)
);
CREATE TABLE affiliations (
	id TEXT PRIMARY KEY,
	artist_id TEXT NOT NULL UNIQUE,
	shop_id TEXT NOT NULL,
	created_at DATETIME
);
`

func openRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(repoTestSchema).Error)
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: fmt.Sprintf("u_%s", uuid.NewString()[:8]),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestRepositoryRequestLifecycle(t *testing.T) {
	conn := openRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	artist := seedUser(t, conn, enums.UserRoleArtist)
	shop := seedUser(t, conn, enums.UserRoleShop)

	request := &models.AffiliationRequest{
		ID:         uuid.New(),
		FromUserID: artist.ID,
		ToUserID:   shop.ID,
		ArtistID:   artist.ID,
		ShopID:     shop.ID,
	}
	require.NoError(t, repo.CreateRequestTx(conn, request))

	fetched, err := repo.FindRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, artist.ID, fetched.FromUserID)

	// Found regardless of which party is named first.
	between, err := repo.FindRequestBetween(ctx, shop.ID, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, between.ID)

	// The pair constraint rejects a second request in the same direction.
	dup := &models.AffiliationRequest{
		ID:         uuid.New(),
		FromUserID: artist.ID,
		ToUserID:   shop.ID,
		ArtistID:   artist.ID,
		ShopID:     shop.ID,
	}
	err = repo.CreateRequestTx(conn, dup)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))

	// And the opposite direction: the shop inviting the artist back hits
	// the same (artist_id, shop_id) constraint, so concurrent sends from
	// both sides cannot leave two pending requests between the pair.
	reverse := &models.AffiliationRequest{
		ID:         uuid.New(),
		FromUserID: shop.ID,
		ToUserID:   artist.ID,
		ArtistID:   artist.ID,
		ShopID:     shop.ID,
	}
	err = repo.CreateRequestTx(conn, reverse)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))

	var count int64
	require.NoError(t, conn.Model(&models.AffiliationRequest{}).
		Where("artist_id = ? AND shop_id = ?", artist.ID, shop.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.DeleteRequest(ctx, request.ID))
	_, err = repo.FindRequestByID(ctx, request.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListRequestsNewestFirst(t *testing.T) {
	conn := openRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	shop := seedUser(t, conn, enums.UserRoleShop)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		artist := seedUser(t, conn, enums.UserRoleArtist)
		request := &models.AffiliationRequest{
			ID:         uuid.New(),
			FromUserID: artist.ID,
			ToUserID:   shop.ID,
			ArtistID:   artist.ID,
			ShopID:     shop.ID,
		}
		require.NoError(t, conn.Exec(
			"INSERT INTO affiliation_requests (id, from_user_id, to_user_id, artist_id, shop_id, created_at) VALUES (?, ?, ?, ?, ?, datetime('now', ?))",
			request.ID, request.FromUserID, request.ToUserID, request.ArtistID, request.ShopID, fmt.Sprintf("-%d hours", 3-i),
		).Error)
		ids = append(ids, request.ID)
	}

	list, err := repo.ListRequestsInvolving(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestRepositoryAffiliationExclusivity(t *testing.T) {
	conn := openRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	artist := seedUser(t, conn, enums.UserRoleArtist)
	shop := seedUser(t, conn, enums.UserRoleShop)
	rival := seedUser(t, conn, enums.UserRoleShop)

	first := &models.Affiliation{ID: uuid.New(), ArtistID: artist.ID, ShopID: shop.ID}
	require.NoError(t, repo.CreateAffiliationTx(conn, first))

	// A second shop cannot claim the same artist.
	second := &models.Affiliation{ID: uuid.New(), ArtistID: artist.ID, ShopID: rival.ID}
	err := repo.CreateAffiliationTx(conn, second)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))

	found, err := repo.FindAffiliationByArtist(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, found.ShopID)

	_, err = repo.FindAffiliationBetween(ctx, artist.ID, rival.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	removed, err := repo.DeleteAffiliation(ctx, artist.ID, shop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// Deleting an absent edge reports false rather than failing.
	removed, err = repo.DeleteAffiliation(ctx, artist.ID, shop.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// The artist is free again.
	require.NoError(t, repo.CreateAffiliationTx(conn, &models.Affiliation{
		ID: uuid.New(), ArtistID: artist.ID, ShopID: rival.ID,
	}))
}

func TestRepositoryListShopArtists(t *testing.T) {
	conn := openRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	shop := seedUser(t, conn, enums.UserRoleShop)
	a := seedUser(t, conn, enums.UserRoleArtist)
	b := seedUser(t, conn, enums.UserRoleArtist)
	require.NoError(t, repo.CreateAffiliationTx(conn, &models.Affiliation{ID: uuid.New(), ArtistID: a.ID, ShopID: shop.ID}))
	require.NoError(t, repo.CreateAffiliationTx(conn, &models.Affiliation{ID: uuid.New(), ArtistID: b.ID, ShopID: shop.ID}))

	// An artist at another shop stays off this roster.
	other := seedUser(t, conn, enums.UserRoleShop)
	c := seedUser(t, conn, enums.UserRoleArtist)
	require.NoError(t, repo.CreateAffiliationTx(conn, &models.Affiliation{ID: uuid.New(), ArtistID: c.ID, ShopID: other.ID}))

	artists, err := repo.ListShopArtists(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, artists, 2)
	for i := 1; i < len(artists); i++ {
		assert.LessOrEqual(t, artists[i-1].Username, artists[i].Username)
	}
}
