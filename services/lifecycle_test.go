package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"servify-server/apperrors"
	"servify-server/config"
	"servify-server/logging"
	"servify-server/models"
	"servify-server/testutil"
)

type fixture struct {
	db            *gorm.DB
	notifications *NotificationService
	ratings       *RatingService
	lifecycle     *LifecycleService
	chat          *ChatService
	catalog       *CatalogService
	identity      *IdentityService
	category      *models.Category
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithConfig(t, config.LifecycleConfig{NotifyAutoRejected: true})
}

func newFixtureWithConfig(t *testing.T, cfg config.LifecycleConfig) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := logging.Nop()

	notifications := NewNotificationService(db, log)
	ratings := NewRatingService(db, log)
	catalog := NewCatalogService(db, log)
	jwt := NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryHours: 1})

	return &fixture{
		db:            db,
		notifications: notifications,
		ratings:       ratings,
		lifecycle:     NewLifecycleService(db, notifications, ratings, catalog, cfg, log),
		chat:          NewChatService(db, log),
		catalog:       catalog,
		identity:      NewIdentityService(db, jwt, ratings, log),
		category:      testutil.CreateCategory(t, db, "Hidráulica"),
	}
}

func clientActor(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: models.RoleClient}
}

func professionalActor(user *models.User, profile *models.ProfessionalProfile) Actor {
	return Actor{UserID: user.ID, Role: models.RoleProfessional, ProfessionalID: profile.ID}
}

func (f *fixture) newClient(t *testing.T) (*models.User, Actor) {
	user := testutil.CreateUser(t, f.db, models.RoleClient)
	return user, clientActor(user)
}

func (f *fixture) newProfessional(t *testing.T) (*models.User, *models.ProfessionalProfile, Actor) {
	user, profile := testutil.CreateProfessional(t, f.db)
	return user, profile, professionalActor(user, profile)
}

func (f *fixture) submit(t *testing.T, actor Actor, solicitationID uint) *models.Proposal {
	t.Helper()
	proposal, err := f.lifecycle.SubmitProposal(context.Background(), actor, SubmitProposalInput{
		SolicitationID: solicitationID,
		Amount:         decimal.NewFromInt(200),
		DurationDays:   3,
		Message:        "Posso fazer amanhã",
	})
	require.NoError(t, err)
	return proposal
}

func (f *fixture) notificationCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func (f *fixture) proposalCount(t *testing.T, solicitationID uint, status models.ProposalStatus) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Proposal{}).
		Where("solicitation_id = ? AND status = ?", solicitationID, status).
		Count(&count).Error)
	return count
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), err.Error())
}

func TestLifecycle_FullScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	proUser, profile, proAct := f.newProfessional(t)

	solicitation, err := f.lifecycle.CreateSolicitation(ctx, clientAct, CreateSolicitationInput{
		CategoryID: f.category.ID,
		Title:      "Trocar torneira",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SolicitationOpen, solicitation.Status)

	proposal := f.submit(t, proAct, solicitation.ID)
	assert.Equal(t, models.ProposalSubmitted, proposal.Status)
	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationAwaitingProposals, solicitation.Status)
	assert.Equal(t, int64(1), f.notificationCount(t, client.ID))

	accepted, err := f.lifecycle.AcceptProposal(ctx, clientAct, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalAccepted, accepted.Status)
	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationProposalAccepted, solicitation.Status)
	assert.Equal(t, int64(2), f.notificationCount(t, client.ID))
	assert.Equal(t, int64(1), f.notificationCount(t, proUser.ID))

	rating, err := f.ratings.RateSolicitation(ctx, clientAct, RateInput{SolicitationID: solicitation.ID, Score: 5})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, rating.ProfessionalID)

	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationCompleted, solicitation.Status)
	testutil.Reload(t, f.db, profile)
	assert.Equal(t, "5.00", profile.Score.StringFixed(2))
}

func TestCreateSolicitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, clientAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)

	_, err := f.lifecycle.CreateSolicitation(ctx, clientAct, CreateSolicitationInput{CategoryID: 9999, Title: "x"})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = f.lifecycle.CreateSolicitation(ctx, clientAct, CreateSolicitationInput{CategoryID: f.category.ID})
	assertKind(t, err, apperrors.KindValidation)

	_, err = f.lifecycle.CreateSolicitation(ctx, proAct, CreateSolicitationInput{CategoryID: f.category.ID, Title: "x"})
	assertKind(t, err, apperrors.KindForbidden)
}

func TestSubmitProposal_Duplicate(t *testing.T) {
	f := newFixture(t)
	client, _ := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	f.submit(t, proAct, solicitation.ID)

	_, err := f.lifecycle.SubmitProposal(context.Background(), proAct, SubmitProposalInput{
		SolicitationID: solicitation.ID,
		Amount:         decimal.NewFromInt(90),
		DurationDays:   1,
	})
	assertKind(t, err, apperrors.KindConflict)
	assert.Equal(t, int64(1), f.proposalCount(t, solicitation.ID, models.ProposalSubmitted))
}

func TestSubmitProposal_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)

	for _, status := range []models.SolicitationStatus{
		models.SolicitationCancelled,
		models.SolicitationProposalAccepted,
		models.SolicitationCompleted,
	} {
		solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, status)
		_, err := f.lifecycle.SubmitProposal(ctx, proAct, SubmitProposalInput{
			SolicitationID: solicitation.ID,
			Amount:         decimal.NewFromInt(10),
			DurationDays:   1,
		})
		assertKind(t, err, apperrors.KindInvalidState)
	}

	open := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	_, err := f.lifecycle.SubmitProposal(ctx, clientAct, SubmitProposalInput{SolicitationID: open.ID, Amount: decimal.NewFromInt(10), DurationDays: 1})
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.lifecycle.SubmitProposal(ctx, proAct, SubmitProposalInput{SolicitationID: 4242, Amount: decimal.NewFromInt(10), DurationDays: 1})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = f.lifecycle.SubmitProposal(ctx, proAct, SubmitProposalInput{SolicitationID: open.ID, Amount: decimal.Zero, DurationDays: 1})
	assertKind(t, err, apperrors.KindValidation)

	noProfile := Actor{UserID: 77, Role: models.RoleProfessional}
	_, err = f.lifecycle.SubmitProposal(ctx, noProfile, SubmitProposalInput{SolicitationID: open.ID, Amount: decimal.NewFromInt(10), DurationDays: 1})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestSubmitProposal_RollsBackWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	client, _ := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_notifications", func(tx *gorm.DB) {
		if tx.Statement.Table == "notifications" {
			_ = tx.AddError(errors.New("notification sink unavailable"))
		}
	}))

	_, err := f.lifecycle.SubmitProposal(context.Background(), proAct, SubmitProposalInput{
		SolicitationID: solicitation.ID,
		Amount:         decimal.NewFromInt(100),
		DurationDays:   2,
	})
	require.Error(t, err)

	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationOpen, solicitation.Status)
	var proposals int64
	require.NoError(t, f.db.Model(&models.Proposal{}).Count(&proposals).Error)
	assert.Zero(t, proposals)
}

func TestAcceptProposal_RejectsSiblings(t *testing.T) {
	f := newFixture(t)
	client, clientAct := f.newClient(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	winnerUser, _, winnerAct := f.newProfessional(t)
	loserUser1, _, loserAct1 := f.newProfessional(t)
	loserUser2, _, loserAct2 := f.newProfessional(t)

	winner := f.submit(t, winnerAct, solicitation.ID)
	loser1 := f.submit(t, loserAct1, solicitation.ID)
	loser2 := f.submit(t, loserAct2, solicitation.ID)

	_, err := f.lifecycle.AcceptProposal(context.Background(), clientAct, winner.ID)
	require.NoError(t, err)

	testutil.Reload(t, f.db, winner)
	testutil.Reload(t, f.db, loser1)
	testutil.Reload(t, f.db, loser2)
	assert.Equal(t, models.ProposalAccepted, winner.Status)
	assert.Equal(t, models.ProposalRejected, loser1.Status)
	assert.Equal(t, models.ProposalRejected, loser2.Status)

	assert.Equal(t, int64(1), f.notificationCount(t, winnerUser.ID))
	assert.Equal(t, int64(1), f.notificationCount(t, loserUser1.ID))
	assert.Equal(t, int64(1), f.notificationCount(t, loserUser2.ID))
}

func TestAcceptProposal_SilentAutoRejection(t *testing.T) {
	f := newFixtureWithConfig(t, config.LifecycleConfig{NotifyAutoRejected: false})
	client, clientAct := f.newClient(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	_, _, winnerAct := f.newProfessional(t)
	loserUser, _, loserAct := f.newProfessional(t)
	winner := f.submit(t, winnerAct, solicitation.ID)
	f.submit(t, loserAct, solicitation.ID)

	_, err := f.lifecycle.AcceptProposal(context.Background(), clientAct, winner.ID)
	require.NoError(t, err)

	assert.Zero(t, f.notificationCount(t, loserUser.ID))
	assert.Equal(t, int64(1), f.proposalCount(t, solicitation.ID, models.ProposalRejected))
}

func TestAcceptProposal_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, otherClientAct := f.newClient(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	_, _, proAct1 := f.newProfessional(t)
	_, _, proAct2 := f.newProfessional(t)
	first := f.submit(t, proAct1, solicitation.ID)
	second := f.submit(t, proAct2, solicitation.ID)

	_, err := f.lifecycle.AcceptProposal(ctx, otherClientAct, first.ID)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, 9999)
	assertKind(t, err, apperrors.KindNotFound)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, first.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, second.ID)
	assertKind(t, err, apperrors.KindInvalidState)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, first.ID)
	assertKind(t, err, apperrors.KindInvalidState)

	assert.Equal(t, int64(1), f.proposalCount(t, solicitation.ID, models.ProposalAccepted))
}

func TestAcceptProposal_ConcurrentAcceptsPickOneWinner(t *testing.T) {
	f := newFixture(t)
	client, clientAct := f.newClient(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	const bidders = 6
	proposals := make([]*models.Proposal, 0, bidders)
	for i := 0; i < bidders; i++ {
		_, _, proAct := f.newProfessional(t)
		proposals = append(proposals, f.submit(t, proAct, solicitation.ID))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, proposal := range proposals {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := f.lifecycle.AcceptProposal(context.Background(), clientAct, id)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err), err.Error())
		}(proposal.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(1), f.proposalCount(t, solicitation.ID, models.ProposalAccepted))
	assert.Equal(t, int64(bidders-1), f.proposalCount(t, solicitation.ID, models.ProposalRejected))
	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationProposalAccepted, solicitation.Status)
}

func TestRejectProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	proUser, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	proposal := f.submit(t, proAct, solicitation.ID)

	_, err := f.lifecycle.RejectProposal(ctx, Actor{UserID: proUser.ID, Role: models.RoleProfessional}, proposal.ID)
	assertKind(t, err, apperrors.KindForbidden)

	rejected, err := f.lifecycle.RejectProposal(ctx, clientAct, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, rejected.Status)
	assert.Equal(t, int64(1), f.notificationCount(t, proUser.ID))

	testutil.Reload(t, f.db, solicitation)
	assert.Equal(t, models.SolicitationAwaitingProposals, solicitation.Status)

	_, err = f.lifecycle.RejectProposal(ctx, clientAct, proposal.ID)
	assertKind(t, err, apperrors.KindInvalidState)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, proposal.ID)
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestUpdateProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	_, _, otherProAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	proposal := f.submit(t, proAct, solicitation.ID)

	amount := decimal.RequireFromString("349.90")
	days := 5
	updated, err := f.lifecycle.UpdateProposal(ctx, proAct, proposal.ID, UpdateProposalInput{Amount: &amount, DurationDays: &days})
	require.NoError(t, err)
	assert.True(t, amount.Equal(updated.Amount), updated.Amount.String())
	assert.Equal(t, 5, updated.DurationDays)
	assert.Equal(t, "Posso fazer amanhã", updated.Message)

	_, err = f.lifecycle.UpdateProposal(ctx, otherProAct, proposal.ID, UpdateProposalInput{DurationDays: &days})
	assertKind(t, err, apperrors.KindForbidden)

	zero := 0
	_, err = f.lifecycle.UpdateProposal(ctx, proAct, proposal.ID, UpdateProposalInput{DurationDays: &zero})
	assertKind(t, err, apperrors.KindValidation)

	_, err = f.lifecycle.AcceptProposal(ctx, clientAct, proposal.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.UpdateProposal(ctx, proAct, proposal.ID, UpdateProposalInput{DurationDays: &days})
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestUpdateSolicitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, otherAct := f.newClient(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)

	title := "Trocar chuveiro"
	updated, err := f.lifecycle.UpdateSolicitation(ctx, clientAct, solicitation.ID, UpdateSolicitationInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = f.lifecycle.UpdateSolicitation(ctx, otherAct, solicitation.ID, UpdateSolicitationInput{Title: &title})
	assertKind(t, err, apperrors.KindForbidden)

	completed := models.SolicitationCompleted
	_, err = f.lifecycle.UpdateSolicitation(ctx, clientAct, solicitation.ID, UpdateSolicitationInput{Status: &completed})
	assertKind(t, err, apperrors.KindValidation)

	missing := uint(9999)
	_, err = f.lifecycle.UpdateSolicitation(ctx, clientAct, solicitation.ID, UpdateSolicitationInput{CategoryID: &missing})
	assertKind(t, err, apperrors.KindNotFound)

	cancelled := models.SolicitationCancelled
	updated, err = f.lifecycle.UpdateSolicitation(ctx, clientAct, solicitation.ID, UpdateSolicitationInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, models.SolicitationCancelled, updated.Status)

	open := models.SolicitationOpen
	updated, err = f.lifecycle.UpdateSolicitation(ctx, clientAct, solicitation.ID, UpdateSolicitationInput{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, models.SolicitationOpen, updated.Status)

	for _, status := range []models.SolicitationStatus{
		models.SolicitationProposalAccepted,
		models.SolicitationInProgress,
		models.SolicitationCompleted,
	} {
		locked := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, status)
		_, err := f.lifecycle.UpdateSolicitation(ctx, clientAct, locked.ID, UpdateSolicitationInput{Title: &title})
		assertKind(t, err, apperrors.KindInvalidState)
	}
}

func TestCancelSolicitation_KeepsPendingProposals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	f.submit(t, proAct, solicitation.ID)

	cancelled, err := f.lifecycle.CancelSolicitation(ctx, clientAct, solicitation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SolicitationCancelled, cancelled.Status)
	assert.Equal(t, int64(1), f.proposalCount(t, solicitation.ID, models.ProposalSubmitted))

	_, err = f.lifecycle.CancelSolicitation(ctx, clientAct, solicitation.ID)
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestDeleteSolicitation_BlockedWhileLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)

	for _, status := range []models.SolicitationStatus{models.SolicitationProposalAccepted, models.SolicitationInProgress} {
		solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, status)
		err := f.lifecycle.DeleteSolicitation(ctx, clientAct, solicitation.ID)
		assertKind(t, err, apperrors.KindInvalidState)
	}
}

func TestDeleteSolicitation_CascadesProposals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, otherAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	f.submit(t, proAct, solicitation.ID)

	err := f.lifecycle.DeleteSolicitation(ctx, otherAct, solicitation.ID)
	assertKind(t, err, apperrors.KindForbidden)

	require.NoError(t, f.lifecycle.DeleteSolicitation(ctx, clientAct, solicitation.ID))

	var proposals int64
	require.NoError(t, f.db.Model(&models.Proposal{}).Where("solicitation_id = ?", solicitation.ID).Count(&proposals).Error)
	assert.Zero(t, proposals)

	err = f.lifecycle.DeleteSolicitation(ctx, clientAct, solicitation.ID)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestDeleteSolicitation_CompletedRecomputesScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, profile, proAct := f.newProfessional(t)

	var solicitations []*models.Solicitation
	for _, score := range []int{5, 3} {
		solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
		proposal := f.submit(t, proAct, solicitation.ID)
		_, err := f.lifecycle.AcceptProposal(ctx, clientAct, proposal.ID)
		require.NoError(t, err)
		_, err = f.ratings.RateSolicitation(ctx, clientAct, RateInput{SolicitationID: solicitation.ID, Score: score})
		require.NoError(t, err)
		solicitations = append(solicitations, solicitation)
	}

	testutil.Reload(t, f.db, profile)
	assert.Equal(t, "4.00", profile.Score.StringFixed(2))

	require.NoError(t, f.lifecycle.DeleteSolicitation(ctx, clientAct, solicitations[1].ID))

	testutil.Reload(t, f.db, profile)
	assert.Equal(t, "5.00", profile.Score.StringFixed(2))
	var ratings int64
	require.NoError(t, f.db.Model(&models.Rating{}).Count(&ratings).Error)
	assert.Equal(t, int64(1), ratings)
}

func TestGetSolicitation_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, otherAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	f.submit(t, proAct, solicitation.ID)

	own, err := f.lifecycle.GetSolicitation(ctx, clientAct, solicitation.ID)
	require.NoError(t, err)
	assert.Len(t, own.Proposals, 1)
	require.NotNil(t, own.Category)
	assert.Equal(t, f.category.Name, own.Category.Name)

	seen, err := f.lifecycle.GetSolicitation(ctx, proAct, solicitation.ID)
	require.NoError(t, err)
	assert.Empty(t, seen.Proposals)

	_, err = f.lifecycle.GetSolicitation(ctx, otherAct, solicitation.ID)
	assertKind(t, err, apperrors.KindForbidden)
}

func TestListSolicitations_ByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	other, _ := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	admin := Actor{UserID: 1000, Role: models.RoleAdmin}

	testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationCancelled)
	testutil.CreateSolicitation(t, f.db, other.ID, f.category.ID, models.SolicitationAwaitingProposals)

	own, err := f.lifecycle.ListSolicitations(ctx, clientAct, ListSolicitationsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)

	open, err := f.lifecycle.ListSolicitations(ctx, proAct, ListSolicitationsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), open.Total)

	all, err := f.lifecycle.ListSolicitations(ctx, admin, ListSolicitationsInput{PageRequest: PageRequest{Page: 1, PerPage: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 2, all.Pages)

	cancelled, err := f.lifecycle.ListSolicitations(ctx, admin, ListSolicitationsInput{Status: models.SolicitationCancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled.Total)
}

func TestProposalReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, clientAct := f.newClient(t)
	_, otherClientAct := f.newClient(t)
	_, _, proAct := f.newProfessional(t)
	_, _, otherProAct := f.newProfessional(t)
	solicitation := testutil.CreateSolicitation(t, f.db, client.ID, f.category.ID, models.SolicitationOpen)
	proposal := f.submit(t, proAct, solicitation.ID)

	_, err := f.lifecycle.GetProposal(ctx, clientAct, proposal.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.GetProposal(ctx, proAct, proposal.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.GetProposal(ctx, otherProAct, proposal.ID)
	assertKind(t, err, apperrors.KindForbidden)

	page, err := f.lifecycle.ListProposals(ctx, clientAct, ListProposalsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.lifecycle.ListProposals(ctx, otherClientAct, ListProposalsInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = f.lifecycle.ListProposals(ctx, otherProAct, ListProposalsInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = f.lifecycle.ListProposals(ctx, proAct, ListProposalsInput{Status: models.ProposalAccepted})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
