package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "stylora/database/repository/booking"
	"stylora/models"
	"stylora/utils"

	"go.uber.org/zap"
)

// Coordinator manages the real-time session window tied to a confirmed
// booking: join eligibility, token issuance, and duration accounting.
type Coordinator struct {
	Bookings bookingRepo.BookingRepository
	Tokens   TokenProvider
	Expiry   ExpiryStore

	JoinLeadMinutes  int // how early before the scheduled start a join is allowed
	JoinGraceMinutes int // how late after the scheduled start a join is still allowed
	TokenTTL         time.Duration

	Loc *time.Location
	Now func() time.Time
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) loc() *time.Location {
	if c.Loc != nil {
		return c.Loc
	}
	return time.Local
}

// StartSession issues a session grant for a participant of a confirmed
// booking and flips it to in_progress. Both participants may call this; the
// first call performs the transition and later calls for the other side only
// issue a token.
func (c *Coordinator) StartSession(ctx context.Context, bookingID string, actor models.Actor) (*models.SessionGrant, error) {
	b, err := c.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.InvolvedActor(actor) {
		return nil, utils.NewForbiddenError("not a participant of this booking")
	}
	if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusInProgress {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot start a session for a %s booking", b.Status))
	}

	start, err := b.ScheduledStart(c.loc())
	if err != nil {
		return nil, utils.NewValidationError("booking has an invalid schedule")
	}
	now := c.now()
	opensAt := start.Add(-time.Duration(c.JoinLeadMinutes) * time.Minute)
	closesAt := start.Add(time.Duration(c.JoinGraceMinutes) * time.Minute)
	if now.Before(opensAt) {
		return nil, utils.NewTooEarlyError(fmt.Sprintf(
			"session opens %d minutes before the scheduled start", c.JoinLeadMinutes))
	}
	if b.Status == models.BookingStatusConfirmed && now.After(closesAt) {
		return nil, utils.NewTooLateError("session join window has closed")
	}

	channelID := ChannelID(b.ID, b.StylistID, b.UserID)
	token, err := c.Tokens.Issue(ctx, channelID, actor.ID, c.TokenTTL)
	if err != nil {
		return nil, utils.NewExternalServiceError("session provider unavailable", err)
	}
	if c.Expiry != nil {
		if err := c.Expiry.Put(ctx, channelID, actor.ID, token.ExpiresAt); err != nil {
			utils.GetLogger().Warn("failed to track session token expiry",
				zap.String("channelID", channelID), zap.Error(err))
		}
	}

	if b.Status == models.BookingStatusConfirmed {
		if _, err := c.Bookings.UpdateIfStatus(ctx, bookingID,
			[]string{models.BookingStatusConfirmed},
			map[string]interface{}{
				"status":             models.BookingStatusInProgress,
				"session_status":     models.SessionStatusInProgress,
				"channel_id":         channelID,
				"session_started_at": now,
			}); err != nil && !errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
	}

	return &models.SessionGrant{
		ChannelID: channelID,
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// EndSession closes the session, records its duration, and completes the
// booking.
func (c *Coordinator) EndSession(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	b, err := c.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.InvolvedActor(actor) {
		return nil, utils.NewForbiddenError("not a participant of this booking")
	}
	if b.Status != models.BookingStatusInProgress || b.SessionStartedAt == nil {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot end a session for a %s booking", b.Status))
	}

	now := c.now()
	duration := int(now.Sub(*b.SessionStartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	updated, err := c.Bookings.UpdateIfStatus(ctx, bookingID,
		[]string{models.BookingStatusInProgress},
		map[string]interface{}{
			"status":                   models.BookingStatusCompleted,
			"session_status":           models.SessionStatusEnded,
			"session_ended_at":         now,
			"session_duration_minutes": duration,
		})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, utils.NewInvalidStateTransitionError("session already ended")
		}
		return nil, fmt.Errorf("failed to end session: %w", err)
	}

	utils.GetLogger().Info("session ended",
		zap.String("bookingID", updated.ID),
		zap.Int("durationMinutes", duration),
	)
	return updated, nil
}

// RefreshIfNeeded reissues a token only when the tracked one has less than
// bufferSeconds of validity remaining. The second return value reports
// whether a new token was issued.
func (c *Coordinator) RefreshIfNeeded(ctx context.Context, bookingID string, actor models.Actor, bufferSeconds int) (*models.SessionGrant, bool, error) {
	b, err := c.getBooking(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}
	if !b.InvolvedActor(actor) {
		return nil, false, utils.NewForbiddenError("not a participant of this booking")
	}
	if b.Status != models.BookingStatusInProgress {
		return nil, false, utils.NewInvalidStateTransitionError("no session in progress")
	}

	channelID := ChannelID(b.ID, b.StylistID, b.UserID)
	expiresAt, err := c.Expiry.Get(ctx, channelID, actor.ID)
	if err != nil && !errors.Is(err, ErrExpiryUnknown) {
		return nil, false, fmt.Errorf("failed to read token expiry: %w", err)
	}

	remaining := expiresAt.Sub(c.now())
	if err == nil && remaining > time.Duration(bufferSeconds)*time.Second {
		// Still valid; avoid a needless provider call.
		return &models.SessionGrant{ChannelID: channelID, ExpiresAt: expiresAt}, false, nil
	}

	token, err := c.Tokens.Issue(ctx, channelID, actor.ID, c.TokenTTL)
	if err != nil {
		return nil, false, utils.NewExternalServiceError("session provider unavailable", err)
	}
	if putErr := c.Expiry.Put(ctx, channelID, actor.ID, token.ExpiresAt); putErr != nil {
		utils.GetLogger().Warn("failed to track session token expiry",
			zap.String("channelID", channelID), zap.Error(putErr))
	}
	return &models.SessionGrant{
		ChannelID: channelID,
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}, true, nil
}

func (c *Coordinator) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := c.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("booking " + bookingID + " not found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}
