package affiliations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/inkbound/inkbound-backend/pkg/db"
	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
)

type affiliationsRepository interface {
	CreateRequestTx(tx *gorm.DB, request *models.AffiliationRequest) error
	FindRequestByID(ctx context.Context, id uuid.UUID) (*models.AffiliationRequest, error)
	FindRequestByIDTx(tx *gorm.DB, id uuid.UUID) (*models.AffiliationRequest, error)
	FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.AffiliationRequest, error)
	ListRequestsInvolving(ctx context.Context, userID uuid.UUID) ([]models.AffiliationRequest, error)
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	DeleteRequestTx(tx *gorm.DB, id uuid.UUID) error
	CreateAffiliationTx(tx *gorm.DB, affiliation *models.Affiliation) error
	FindAffiliationByArtist(ctx context.Context, artistID uuid.UUID) (*models.Affiliation, error)
	FindAffiliationBetween(ctx context.Context, artistID, shopID uuid.UUID) (*models.Affiliation, error)
	DeleteAffiliation(ctx context.Context, artistID, shopID uuid.UUID) (bool, error)
	ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]models.User, error)
	UserByIDTx(tx *gorm.DB, id uuid.UUID) (*models.User, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service mediates the artist/shop affiliation lifecycle.
type Service interface {
	SendRequest(ctx context.Context, actorID, targetID uuid.UUID) (*RequestDTO, error)
	AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*AffiliationDTO, error)
	DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error
	RemoveAffiliation(ctx context.Context, actorID, targetID uuid.UUID) error
	ListPending(ctx context.Context, actorID uuid.UUID) ([]RequestDTO, error)
	GetStatus(ctx context.Context, viewerID, targetID uuid.UUID) (*StatusDTO, error)
	ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]PartyDTO, error)
}

type service struct {
	repo   affiliationsRepository
	users  usersRepository
	tx     txRunner
	outbox outboxEmitter
}

// NewService builds the affiliation workflow service.
func NewService(repo affiliationsRepository, usersRepo usersRepository, tx txRunner, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("affiliations repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, users: usersRepo, tx: tx, outbox: emitter}, nil
}

// pairRoles splits two accounts into (artist, shop) or fails when the pair is
// not exactly one artist and one shop.
func pairRoles(a, b *models.User) (artist, shop *models.User, err error) {
	switch {
	case a.Role == enums.UserRoleArtist && b.Role == enums.UserRoleShop:
		return a, b, nil
	case a.Role == enums.UserRoleShop && b.Role == enums.UserRoleArtist:
		return b, a, nil
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "affiliation requires one artist and one shop")
	}
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID, missing string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, missing)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return user, nil
}

func (s *service) SendRequest(ctx context.Context, actorID, targetID uuid.UUID) (*RequestDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := s.loadUser(ctx, targetID, "target account not found")
	if err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot send an affiliation request to yourself")
	}
	actor, err := s.loadUser(ctx, actorID, "account not found")
	if err != nil {
		return nil, err
	}

	artist, shop, err := pairRoles(actor, target)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindAffiliationByArtist(ctx, artist.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist is already affiliated with a shop")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing affiliation")
	}

	if _, err := s.repo.FindRequestBetween(ctx, actorID, targetID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an affiliation request already exists between these accounts")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing request")
	}

	request := &models.AffiliationRequest{
		ID:         uuid.New(),
		FromUserID: actorID,
		ToUserID:   targetID,
		ArtistID:   artist.ID,
		ShopID:     shop.ID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateRequestTx(tx, request); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventAffiliationRequested,
			AggregateType: enums.AggregateAffiliation,
			AggregateID:   request.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: actor.Role.String()},
			Version:       1,
			Data: payloads.AffiliationRequestedEvent{
				RequestID:    request.ID,
				FromUserID:   actorID,
				FromUsername: actor.Username,
				ToUserID:     targetID,
				ArtistID:     artist.ID,
				ShopID:       shop.ID,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "an affiliation request already exists between these accounts")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating affiliation request")
	}

	return &RequestDTO{
		ID:        request.ID,
		From:      partyFromModel(actor),
		To:        partyFromModel(target),
		ArtistID:  artist.ID,
		ShopID:    shop.ID,
		CreatedAt: request.CreatedAt,
	}, nil
}

func (s *service) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*AffiliationDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	request, err := s.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "affiliation request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading request")
	}
	if request.ToUserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the recipient can accept this request")
	}

	affiliation := &models.Affiliation{
		ID:       uuid.New(),
		ArtistID: request.ArtistID,
		ShopID:   request.ShopID,
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Re-validate inside the transaction: the request, both accounts,
		// and the artist's exclusivity may all have drifted since the read.
		current, err := s.repo.FindRequestByIDTx(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "affiliation request not found")
			}
			return err
		}
		if current.ToUserID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the recipient can accept this request")
		}

		artist, err := s.repo.UserByIDTx(tx, request.ArtistID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return staleRequestError{kind: pkgerrors.CodeNotFound, message: "artist account no longer exists"}
			}
			return err
		}
		shop, err := s.repo.UserByIDTx(tx, request.ShopID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return staleRequestError{kind: pkgerrors.CodeNotFound, message: "shop account no longer exists"}
			}
			return err
		}
		if artist.Role != enums.UserRoleArtist || shop.Role != enums.UserRoleShop {
			return staleRequestError{kind: pkgerrors.CodeValidation, message: "accounts no longer form an artist/shop pair"}
		}

		acceptedBy := shop
		if artist.ID == actorID {
			acceptedBy = artist
		}

		// The unique index on artist_id is the linearization point: when two
		// accepts race on the same artist, the second insert fails here.
		if err := s.repo.CreateAffiliationTx(tx, affiliation); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return staleRequestError{kind: pkgerrors.CodeValidation, message: "artist is already affiliated with a shop"}
			}
			return err
		}

		if err := s.repo.DeleteRequestTx(tx, requestID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventAffiliationAccepted,
			AggregateType: enums.AggregateAffiliation,
			AggregateID:   affiliation.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: acceptedBy.Role.String()},
			Version:       1,
			Data: payloads.AffiliationAcceptedEvent{
				AffiliationID:    affiliation.ID,
				ArtistID:         request.ArtistID,
				ShopID:           request.ShopID,
				AcceptedByUserID: actorID,
				AcceptedAt:       time.Now().UTC(),
			},
		})
	})
	if txErr != nil {
		var stale staleRequestError
		if errors.As(txErr, &stale) {
			// Cleanup-on-detection: the stale request is deleted even though
			// the accept itself fails. Runs outside the rolled-back tx.
			if delErr := s.repo.DeleteRequest(ctx, requestID); delErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, delErr, "cleaning up stale request")
			}
			return nil, pkgerrors.New(stale.kind, stale.message)
		}
		if appErr := pkgerrors.As(txErr); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "accepting affiliation request")
	}

	return affiliationFromModel(affiliation), nil
}

// staleRequestError marks accept-time drift that requires the pending request
// to be deleted after the transaction rolls back.
type staleRequestError struct {
	kind    pkgerrors.Code
	message string
}

func (e staleRequestError) Error() string {
	return e.message
}

func (s *service) DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	request, err := s.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "affiliation request not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading request")
	}
	if request.FromUserID != actorID && request.ToUserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only a party to the request can decline it")
	}

	if err := s.repo.DeleteRequest(ctx, requestID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting request")
	}
	return nil
}

func (s *service) RemoveAffiliation(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := s.loadUser(ctx, targetID, "target account not found")
	if err != nil {
		return err
	}
	actor, err := s.loadUser(ctx, actorID, "account not found")
	if err != nil {
		return err
	}

	artist, shop, err := pairRoles(actor, target)
	if err != nil {
		return err
	}

	removed, err := s.repo.DeleteAffiliation(ctx, artist.ID, shop.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing affiliation")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeValidation, "accounts are not currently affiliated")
	}
	return nil
}

func (s *service) ListPending(ctx context.Context, actorID uuid.UUID) ([]RequestDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	requests, err := s.repo.ListRequestsInvolving(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing requests")
	}

	out := make([]RequestDTO, 0, len(requests))
	for _, request := range requests {
		from, err := s.users.FindByID(ctx, request.FromUserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving request sender")
		}
		to, err := s.users.FindByID(ctx, request.ToUserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving request recipient")
		}
		if from == nil || to == nil {
			// Dangling request: one party was deleted. Clean it up and skip.
			if delErr := s.repo.DeleteRequest(ctx, request.ID); delErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, delErr, "cleaning up stale request")
			}
			continue
		}
		out = append(out, RequestDTO{
			ID:        request.ID,
			From:      partyFromModel(from),
			To:        partyFromModel(to),
			ArtistID:  request.ArtistID,
			ShopID:    request.ShopID,
			CreatedAt: request.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) GetStatus(ctx context.Context, viewerID, targetID uuid.UUID) (*StatusDTO, error) {
	if viewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := s.loadUser(ctx, targetID, "target account not found")
	if err != nil {
		return nil, err
	}
	viewer, err := s.loadUser(ctx, viewerID, "account not found")
	if err != nil {
		return nil, err
	}

	if artist, shop, pairErr := pairRoles(viewer, target); pairErr == nil {
		if _, err := s.repo.FindAffiliationBetween(ctx, artist.ID, shop.ID); err == nil {
			return &StatusDTO{Status: StatusAffiliated}, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking affiliation")
		}
	}

	request, err := s.repo.FindRequestBetween(ctx, viewerID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &StatusDTO{Status: StatusNone}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking pending request")
	}

	status := StatusPendingReceived
	if request.FromUserID == viewerID {
		status = StatusPendingSent
	}
	id := request.ID
	return &StatusDTO{Status: status, RequestID: &id}, nil
}

func (s *service) ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]PartyDTO, error) {
	shop, err := s.loadUser(ctx, shopID, "shop account not found")
	if err != nil {
		return nil, err
	}
	if shop.Role != enums.UserRoleShop {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account is not a shop")
	}

	artists, err := s.repo.ListShopArtists(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shop artists")
	}

	out := make([]PartyDTO, 0, len(artists))
	for i := range artists {
		out = append(out, partyFromModel(&artists[i]))
	}
	return out, nil
}
