package affiliations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
)

type stubUsersRepo struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubAffiliationsRepo struct {
	requests     map[uuid.UUID]*models.AffiliationRequest
	affiliations map[uuid.UUID]*models.Affiliation // keyed by artist id
	users        map[uuid.UUID]*models.User

	createReqErr error
	createAffErr error
	deletedReqs  []uuid.UUID
	txDeleted    []uuid.UUID
}

func newStubRepo(users map[uuid.UUID]*models.User) *stubAffiliationsRepo {
	return &stubAffiliationsRepo{
		requests:     map[uuid.UUID]*models.AffiliationRequest{},
		affiliations: map[uuid.UUID]*models.Affiliation{},
		users:        users,
	}
}

func (s *stubAffiliationsRepo) CreateRequestTx(tx *gorm.DB, request *models.AffiliationRequest) error {
	if s.createReqErr != nil {
		return s.createReqErr
	}
	for _, r := range s.requests {
		if r.ArtistID == request.ArtistID && r.ShopID == request.ShopID {
			return errors.New(`duplicate key value violates unique constraint "idx_affiliation_requests_pair"`)
		}
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	s.requests[request.ID] = request
	return nil
}

func (s *stubAffiliationsRepo) FindRequestByID(ctx context.Context, id uuid.UUID) (*models.AffiliationRequest, error) {
	if r, ok := s.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAffiliationsRepo) FindRequestByIDTx(tx *gorm.DB, id uuid.UUID) (*models.AffiliationRequest, error) {
	return s.FindRequestByID(context.Background(), id)
}

func (s *stubAffiliationsRepo) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.AffiliationRequest, error) {
	for _, r := range s.requests {
		if (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAffiliationsRepo) ListRequestsInvolving(ctx context.Context, userID uuid.UUID) ([]models.AffiliationRequest, error) {
	var out []models.AffiliationRequest
	for _, r := range s.requests {
		if r.FromUserID == userID || r.ToUserID == userID {
			out = append(out, *r)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *stubAffiliationsRepo) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	delete(s.requests, id)
	s.deletedReqs = append(s.deletedReqs, id)
	return nil
}

func (s *stubAffiliationsRepo) DeleteRequestTx(tx *gorm.DB, id uuid.UUID) error {
	delete(s.requests, id)
	s.txDeleted = append(s.txDeleted, id)
	return nil
}

func (s *stubAffiliationsRepo) CreateAffiliationTx(tx *gorm.DB, affiliation *models.Affiliation) error {
	if s.createAffErr != nil {
		return s.createAffErr
	}
	if _, ok := s.affiliations[affiliation.ArtistID]; ok {
		return errors.New(`duplicate key value violates unique constraint "idx_affiliations_artist_id"`)
	}
	if affiliation.CreatedAt.IsZero() {
		affiliation.CreatedAt = time.Now()
	}
	s.affiliations[affiliation.ArtistID] = affiliation
	return nil
}

func (s *stubAffiliationsRepo) FindAffiliationByArtist(ctx context.Context, artistID uuid.UUID) (*models.Affiliation, error) {
	if a, ok := s.affiliations[artistID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAffiliationsRepo) FindAffiliationBetween(ctx context.Context, artistID, shopID uuid.UUID) (*models.Affiliation, error) {
	if a, ok := s.affiliations[artistID]; ok && a.ShopID == shopID {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAffiliationsRepo) DeleteAffiliation(ctx context.Context, artistID, shopID uuid.UUID) (bool, error) {
	if a, ok := s.affiliations[artistID]; ok && a.ShopID == shopID {
		delete(s.affiliations, artistID)
		return true, nil
	}
	return false, nil
}

func (s *stubAffiliationsRepo) ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, a := range s.affiliations {
		if a.ShopID == shopID {
			if u, ok := s.users[a.ArtistID]; ok {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (s *stubAffiliationsRepo) UserByIDTx(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutboxEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func artistUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "needle-artist", Role: enums.UserRoleArtist}
}

func shopUser() *models.User {
	name := "Black Lotus Tattoo"
	return &models.User{ID: uuid.New(), Username: "black-lotus", Role: enums.UserRoleShop, ShopName: &name}
}

type fixture struct {
	svc    Service
	repo   *stubAffiliationsRepo
	outbox *stubOutboxEmitter
	artist *models.User
	shop   *models.User
	users  map[uuid.UUID]*models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	artist := artistUser()
	shop := shopUser()
	users := map[uuid.UUID]*models.User{artist.ID: artist, shop.ID: shop}
	repo := newStubRepo(users)
	emitter := &stubOutboxEmitter{}
	svc, err := NewService(repo, &stubUsersRepo{users: users}, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, outbox: emitter, artist: artist, shop: shop, users: users}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestNewServiceValidatesDeps(t *testing.T) {
	users := &stubUsersRepo{}
	if _, err := NewService(nil, users, stubTxRunner{}, &stubOutboxEmitter{}); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(newStubRepo(nil), nil, stubTxRunner{}, &stubOutboxEmitter{}); err == nil {
		t.Fatal("expected error without users repo")
	}
	if _, err := NewService(newStubRepo(nil), users, nil, &stubOutboxEmitter{}); err == nil {
		t.Fatal("expected error without tx runner")
	}
	if _, err := NewService(newStubRepo(nil), users, stubTxRunner{}, nil); err == nil {
		t.Fatal("expected error without outbox emitter")
	}
}

func TestSendRequestArtistToShop(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if dto.From.ID != f.artist.ID || dto.To.ID != f.shop.ID {
		t.Fatalf("unexpected parties: from=%s to=%s", dto.From.ID, dto.To.ID)
	}
	if dto.ArtistID != f.artist.ID || dto.ShopID != f.shop.ID {
		t.Fatalf("unexpected pairing: artist=%s shop=%s", dto.ArtistID, dto.ShopID)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.OutboxEventAffiliationRequested {
		t.Fatalf("expected affiliation.requested event, got %v", f.outbox.events)
	}
}

func TestSendRequestShopToArtist(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.SendRequest(context.Background(), f.shop.ID, f.artist.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	// The artist/shop pairing is derived from roles, not direction.
	if dto.ArtistID != f.artist.ID || dto.ShopID != f.shop.ID {
		t.Fatalf("unexpected pairing: artist=%s shop=%s", dto.ArtistID, dto.ShopID)
	}
	if dto.From.ID != f.shop.ID {
		t.Fatalf("expected shop as sender, got %s", dto.From.ID)
	}
}

func TestSendRequestTargetMissing(t *testing.T) {
	f := newFixture(t)
	err := func() error {
		_, err := f.svc.SendRequest(context.Background(), f.artist.ID, uuid.New())
		return err
	}()
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestSendRequestToSelf(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.artist.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSendRequestInvalidPairing(t *testing.T) {
	f := newFixture(t)
	other := artistUser()
	f.users[other.ID] = other

	_, err := f.svc.SendRequest(context.Background(), f.artist.ID, other.ID)
	requireCode(t, err, pkgerrors.CodeValidation)

	fan := &models.User{ID: uuid.New(), Username: "fan", Role: enums.UserRoleEnthusiast}
	f.users[fan.ID] = fan
	_, err = f.svc.SendRequest(context.Background(), fan.ID, f.shop.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSendRequestArtistAlreadyAffiliated(t *testing.T) {
	f := newFixture(t)
	f.repo.affiliations[f.artist.ID] = &models.Affiliation{
		ID: uuid.New(), ArtistID: f.artist.ID, ShopID: uuid.New(),
	}

	_, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSendRequestDuplicateEitherDirection(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	_, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	requireCode(t, err, pkgerrors.CodeValidation)

	// The shop answering with its own request is also rejected.
	_, err = f.svc.SendRequest(context.Background(), f.shop.ID, f.artist.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSendRequestLostInsertRace(t *testing.T) {
	// Both sides send at once: each passes the pending-request read, then
	// the slower insert trips the (artist_id, shop_id) constraint. That
	// surfaces as validation, not internal.
	f := newFixture(t)
	f.repo.createReqErr = errors.New(`duplicate key value violates unique constraint "idx_affiliation_requests_pair"`)

	_, err := f.svc.SendRequest(context.Background(), f.shop.ID, f.artist.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAcceptRequestLinksPair(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}

	accepted, err := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.ArtistID != f.artist.ID || accepted.ShopID != f.shop.ID {
		t.Fatalf("unexpected link: %+v", accepted)
	}
	if _, ok := f.repo.requests[sent.ID]; ok {
		t.Fatal("expected request consumed on accept")
	}
	if len(f.outbox.events) != 2 || f.outbox.events[1].EventType != enums.OutboxEventAffiliationAccepted {
		t.Fatalf("expected affiliation.accepted event, got %v", f.outbox.events)
	}
}

func TestAcceptRequestOnlyRecipient(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}

	// The sender cannot accept their own request.
	_, gotErr := f.svc.AcceptRequest(context.Background(), f.artist.ID, sent.ID)
	requireCode(t, gotErr, pkgerrors.CodeForbidden)

	stranger := shopUser()
	f.users[stranger.ID] = stranger
	_, gotErr = f.svc.AcceptRequest(context.Background(), stranger.ID, sent.ID)
	requireCode(t, gotErr, pkgerrors.CodeForbidden)
}

func TestAcceptRequestMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AcceptRequest(context.Background(), f.shop.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestAcceptRequestArtistDeleted(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	delete(f.users, f.artist.ID)

	_, gotErr := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID)
	requireCode(t, gotErr, pkgerrors.CodeNotFound)
	// The stale request is removed even though the accept failed.
	if _, ok := f.repo.requests[sent.ID]; ok {
		t.Fatal("expected stale request cleaned up")
	}
	if len(f.repo.deletedReqs) != 1 || f.repo.deletedReqs[0] != sent.ID {
		t.Fatalf("expected non-tx cleanup of %s, got %v", sent.ID, f.repo.deletedReqs)
	}
}

func TestAcceptRequestArtistTakenElsewhere(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	// Another shop claimed the artist after the request was sent.
	f.repo.affiliations[f.artist.ID] = &models.Affiliation{
		ID: uuid.New(), ArtistID: f.artist.ID, ShopID: uuid.New(),
	}

	_, gotErr := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID)
	requireCode(t, gotErr, pkgerrors.CodeValidation)
	if _, ok := f.repo.requests[sent.ID]; ok {
		t.Fatal("expected stale request cleaned up")
	}
}

func TestDeclineRequestByEitherParty(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}

	stranger := artistUser()
	f.users[stranger.ID] = stranger
	gotErr := f.svc.DeclineRequest(context.Background(), stranger.ID, sent.ID)
	requireCode(t, gotErr, pkgerrors.CodeForbidden)

	if err := f.svc.DeclineRequest(context.Background(), f.shop.ID, sent.ID); err != nil {
		t.Fatalf("recipient decline: %v", err)
	}

	// A declined request leaves no trace, so the sender can try again
	// and withdraw it themselves.
	resent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("resend after decline: %v", err)
	}
	if err := f.svc.DeclineRequest(context.Background(), f.artist.ID, resent.ID); err != nil {
		t.Fatalf("sender withdraw: %v", err)
	}
	if len(f.repo.requests) != 0 {
		t.Fatalf("expected no requests left, got %d", len(f.repo.requests))
	}
}

func TestDeclineRequestMissing(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeclineRequest(context.Background(), f.shop.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemoveAffiliation(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if _, err := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Either side may sever the link; here the artist leaves.
	if err := f.svc.RemoveAffiliation(context.Background(), f.artist.ID, f.shop.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	status, err := f.svc.GetStatus(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusNone {
		t.Fatalf("expected none after removal, got %s", status.Status)
	}

	// The artist is free to join another shop immediately.
	other := shopUser()
	f.users[other.ID] = other
	if _, err := f.svc.SendRequest(context.Background(), f.artist.ID, other.ID); err != nil {
		t.Fatalf("expected artist free to request again: %v", err)
	}
}

func TestRemoveAffiliationNotAffiliated(t *testing.T) {
	f := newFixture(t)
	err := f.svc.RemoveAffiliation(context.Background(), f.artist.ID, f.shop.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestRemoveAffiliationTargetMissing(t *testing.T) {
	f := newFixture(t)
	err := f.svc.RemoveAffiliation(context.Background(), f.artist.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetStatusTransitions(t *testing.T) {
	f := newFixture(t)

	status, err := f.svc.GetStatus(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusNone {
		t.Fatalf("expected none, got %s", status.Status)
	}

	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	status, err = f.svc.GetStatus(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusPendingSent {
		t.Fatalf("expected pending_sent for sender, got %s", status.Status)
	}
	if status.RequestID == nil || *status.RequestID != sent.ID {
		t.Fatalf("expected request id %s, got %v", sent.ID, status.RequestID)
	}

	status, err = f.svc.GetStatus(context.Background(), f.shop.ID, f.artist.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusPendingReceived {
		t.Fatalf("expected pending_received for recipient, got %s", status.Status)
	}

	if _, err := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	status, err = f.svc.GetStatus(context.Background(), f.shop.ID, f.artist.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusAffiliated {
		t.Fatalf("expected affiliated, got %s", status.Status)
	}
}

func TestListPendingResolvesParties(t *testing.T) {
	f := newFixture(t)
	older := &models.AffiliationRequest{
		ID: uuid.New(), FromUserID: f.artist.ID, ToUserID: f.shop.ID,
		ArtistID: f.artist.ID, ShopID: f.shop.ID,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	f.repo.requests[older.ID] = older

	other := artistUser()
	f.users[other.ID] = other
	newer := &models.AffiliationRequest{
		ID: uuid.New(), FromUserID: f.shop.ID, ToUserID: other.ID,
		ArtistID: other.ID, ShopID: f.shop.ID,
		CreatedAt: time.Now(),
	}
	f.repo.requests[newer.ID] = newer

	list, err := f.svc.ListPending(context.Background(), f.shop.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(list))
	}
	if list[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %s", list[0].ID)
	}
	if list[0].From.Username != f.shop.Username || list[1].From.Username != f.artist.Username {
		t.Fatalf("expected parties resolved, got %+v", list)
	}
}

func TestListPendingPrunesDanglingRequests(t *testing.T) {
	f := newFixture(t)
	ghost := artistUser()
	dangling := &models.AffiliationRequest{
		ID: uuid.New(), FromUserID: ghost.ID, ToUserID: f.shop.ID,
		ArtistID: ghost.ID, ShopID: f.shop.ID,
		CreatedAt: time.Now(),
	}
	f.repo.requests[dangling.ID] = dangling

	list, err := f.svc.ListPending(context.Background(), f.shop.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected dangling request skipped, got %d", len(list))
	}
	if _, ok := f.repo.requests[dangling.ID]; ok {
		t.Fatal("expected dangling request cleaned up")
	}
}

func TestListShopArtists(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendRequest(context.Background(), f.artist.ID, f.shop.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.svc.AcceptRequest(context.Background(), f.shop.ID, sent.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	artists, err := f.svc.ListShopArtists(context.Background(), f.shop.ID)
	if err != nil {
		t.Fatalf("list artists: %v", err)
	}
	if len(artists) != 1 || artists[0].ID != f.artist.ID {
		t.Fatalf("expected roster with artist, got %+v", artists)
	}

	_, err = f.svc.ListShopArtists(context.Background(), f.artist.ID)
	requireCode(t, err, pkgerrors.CodeValidation)
}
