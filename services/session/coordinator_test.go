package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "stylora/database/repository/booking"
	"stylora/models"
	"stylora/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{bookings: make(map[string]*models.Booking)}
}

func statusIn(status string, statuses []string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *memoryBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *memoryBookingRepo) Delete(_ context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, bookingID)
	return nil
}

func (r *memoryBookingRepo) GetByID(_ context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryBookingRepo) GetByOrderID(_ context.Context, _ string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *memoryBookingRepo) ListForStylistDate(_ context.Context, _, _ string, _ []string) ([]models.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) CountForStylistDate(_ context.Context, _, _ string, _ []string) (int, error) {
	return 0, nil
}

func (r *memoryBookingRepo) ListForUser(_ context.Context, _ string) ([]models.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) ListForStylist(_ context.Context, _ string) ([]models.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) UpdateIfStatus(_ context.Context, bookingID string, fromStatuses []string, set map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if !statusIn(b.Status, fromStatuses) {
		return nil, bookingRepo.ErrStaleStatus
	}
	for field, value := range set {
		switch field {
		case "status":
			b.Status = value.(string)
		case "session_status":
			b.SessionStatus = value.(string)
		case "channel_id":
			b.ChannelID = value.(string)
		case "session_started_at":
			at := value.(time.Time)
			b.SessionStartedAt = &at
		case "session_ended_at":
			at := value.(time.Time)
			b.SessionEndedAt = &at
		case "session_duration_minutes":
			b.SessionDurationMinutes = value.(int)
		default:
			return nil, fmt.Errorf("memory repo: unhandled field %q", field)
		}
	}
	copied := *b
	return &copied, nil
}

type fakeTokens struct {
	issued int
	now    func() time.Time
}

func (f *fakeTokens) Issue(_ context.Context, channelID, identity string, ttl time.Duration) (Token, error) {
	f.issued++
	return Token{
		Value:     fmt.Sprintf("tok-%s-%s-%d", channelID, identity, f.issued),
		ExpiresAt: f.now().Add(ttl),
	}, nil
}

type memoryExpiry struct {
	entries map[string]time.Time
}

func newMemoryExpiry() *memoryExpiry {
	return &memoryExpiry{entries: make(map[string]time.Time)}
}

func (m *memoryExpiry) Put(_ context.Context, channelID, identity string, expiresAt time.Time) error {
	m.entries[channelID+"/"+identity] = expiresAt
	return nil
}

func (m *memoryExpiry) Get(_ context.Context, channelID, identity string) (time.Time, error) {
	at, ok := m.entries[channelID+"/"+identity]
	if !ok {
		return time.Time{}, ErrExpiryUnknown
	}
	return at, nil
}

type coordinatorFixture struct {
	repo   *memoryBookingRepo
	tokens *fakeTokens
	expiry *memoryExpiry
	coord  *Coordinator
	now    time.Time
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()
	f := &coordinatorFixture{
		repo:   newMemoryBookingRepo(),
		expiry: newMemoryExpiry(),
		now:    fixedNow,
	}
	f.tokens = &fakeTokens{now: func() time.Time { return f.now }}
	f.coord = &Coordinator{
		Bookings:         f.repo,
		Tokens:           f.tokens,
		Expiry:           f.expiry,
		JoinLeadMinutes:  15,
		JoinGraceMinutes: 30,
		TokenTTL:         time.Hour,
		Loc:              time.UTC,
		Now:              func() time.Time { return f.now },
	}
	return f
}

func (f *coordinatorFixture) seed(t *testing.T, clock string, status string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID:              "b1",
		StylistID:       "s1",
		UserID:          "u1",
		ScheduledDate:   "2026-09-01",
		ScheduledTime:   clock,
		DurationMinutes: 60,
		Status:          status,
		PaymentStatus:   models.PaymentStatusCompleted,
		SessionStatus:   models.SessionStatusNotStarted,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, utils.HasCode(err, code), "expected code %s, got %v", code, err)
}

var (
	user    = models.Actor{ID: "u1", Role: models.RoleUser}
	stylist = models.Actor{ID: "s1", Role: models.RoleStylist}
)

func TestStartSession(t *testing.T) {
	ctx := context.Background()

	t.Run("too early before the join window opens", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		// Start at 10:30, join window opens 10:15, now is 10:00.
		f.seed(t, "10:30", models.BookingStatusConfirmed)

		_, err := f.coord.StartSession(ctx, "b1", user)
		assertCode(t, err, utils.CodeTooEarly)
	})

	t.Run("inside the lead window starts the session", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		// Start at 10:10; 10 minutes early is within the 15-minute lead.
		f.seed(t, "10:10", models.BookingStatusConfirmed)

		grant, err := f.coord.StartSession(ctx, "b1", user)
		require.NoError(t, err)
		assert.Equal(t, ChannelID("b1", "s1", "u1"), grant.ChannelID)
		assert.NotEmpty(t, grant.Token)
		assert.Equal(t, f.now.Add(time.Hour), grant.ExpiresAt)

		stored, _ := f.repo.GetByID(ctx, "b1")
		assert.Equal(t, models.BookingStatusInProgress, stored.Status)
		assert.Equal(t, models.SessionStatusInProgress, stored.SessionStatus)
		assert.Equal(t, grant.ChannelID, stored.ChannelID)
		require.NotNil(t, stored.SessionStartedAt)
		assert.Equal(t, f.now, *stored.SessionStartedAt)
	})

	t.Run("second participant joins the running session", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)

		first, err := f.coord.StartSession(ctx, "b1", user)
		require.NoError(t, err)
		second, err := f.coord.StartSession(ctx, "b1", stylist)
		require.NoError(t, err)

		assert.Equal(t, first.ChannelID, second.ChannelID, "both sides derive the same channel")
		assert.NotEqual(t, first.Token, second.Token)

		stored, _ := f.repo.GetByID(ctx, "b1")
		require.NotNil(t, stored.SessionStartedAt)
		assert.Equal(t, f.now, *stored.SessionStartedAt, "second join does not restart the clock")
	})

	t.Run("too late after the grace window", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		// Start was 09:00; the grace window closed at 09:30.
		f.seed(t, "09:00", models.BookingStatusConfirmed)

		_, err := f.coord.StartSession(ctx, "b1", user)
		assertCode(t, err, utils.CodeTooLate)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)

		_, err := f.coord.StartSession(ctx, "b1", models.Actor{ID: "u9", Role: models.RoleUser})
		assertCode(t, err, utils.CodeForbidden)
	})

	t.Run("pending booking has no session", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusPending)

		_, err := f.coord.StartSession(ctx, "b1", user)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("records the duration and completes the booking", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)
		_, err := f.coord.StartSession(ctx, "b1", user)
		require.NoError(t, err)

		f.now = fixedNow.Add(47 * time.Minute)
		updated, err := f.coord.EndSession(ctx, "b1", stylist)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCompleted, updated.Status)
		assert.Equal(t, models.SessionStatusEnded, updated.SessionStatus)
		assert.Equal(t, 47, updated.SessionDurationMinutes)
		require.NotNil(t, updated.SessionEndedAt)
	})

	t.Run("cannot end a session that never started", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)

		_, err := f.coord.EndSession(ctx, "b1", user)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})

	t.Run("double end fails", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)
		_, err := f.coord.StartSession(ctx, "b1", user)
		require.NoError(t, err)
		_, err = f.coord.EndSession(ctx, "b1", user)
		require.NoError(t, err)

		_, err = f.coord.EndSession(ctx, "b1", user)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})
}

func TestRefreshIfNeeded(t *testing.T) {
	ctx := context.Background()

	start := func(t *testing.T) *coordinatorFixture {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)
		_, err := f.coord.StartSession(ctx, "b1", user)
		require.NoError(t, err)
		return f
	}

	t.Run("plenty of validity left issues nothing", func(t *testing.T) {
		f := start(t)

		grant, refreshed, err := f.coord.RefreshIfNeeded(ctx, "b1", user, 60)
		require.NoError(t, err)
		assert.False(t, refreshed)
		assert.Empty(t, grant.Token)
		assert.Equal(t, fixedNow.Add(time.Hour), grant.ExpiresAt)
		assert.Equal(t, 1, f.tokens.issued, "only the start issued a token")
	})

	t.Run("expiring token is reissued", func(t *testing.T) {
		f := start(t)
		f.now = fixedNow.Add(59*time.Minute + 30*time.Second)

		grant, refreshed, err := f.coord.RefreshIfNeeded(ctx, "b1", user, 60)
		require.NoError(t, err)
		assert.True(t, refreshed)
		assert.NotEmpty(t, grant.Token)
		assert.Equal(t, f.now.Add(time.Hour), grant.ExpiresAt)
		assert.Equal(t, 2, f.tokens.issued)
	})

	t.Run("unknown expiry forces a reissue", func(t *testing.T) {
		f := start(t)
		// A participant who never joined has no tracked expiry.
		_, refreshed, err := f.coord.RefreshIfNeeded(ctx, "b1", stylist, 60)
		require.NoError(t, err)
		assert.True(t, refreshed)
	})

	t.Run("no session in progress", func(t *testing.T) {
		f := newCoordinatorFixture(t)
		f.seed(t, "10:10", models.BookingStatusConfirmed)

		_, _, err := f.coord.RefreshIfNeeded(ctx, "b1", user, 60)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})
}

func TestChannelIDDeterminism(t *testing.T) {
	a := ChannelID("b1", "s1", "u1")
	b := ChannelID("b1", "s1", "u1")
	c := ChannelID("b2", "s1", "u1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^ch_[0-9a-f]{24}$`, a)
}
