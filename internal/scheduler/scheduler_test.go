package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheller/gamekeeper/internal/config"
	"github.com/mheller/gamekeeper/internal/domain"
	"github.com/mheller/gamekeeper/internal/service/wishlist"
)

// ===========================================================================
// Fakes
// ===========================================================================

type fakeGuildConfig struct {
	mu       sync.Mutex
	guilds   []int64
	zones    map[int64]string
	channels map[int64]int64
	markers  map[string]string
}

func newFakeGuildConfig() *fakeGuildConfig {
	return &fakeGuildConfig{
		zones:    map[int64]string{},
		channels: map[int64]int64{},
		markers:  map[string]string{},
	}
}

func (f *fakeGuildConfig) addGuild(id int64, tz string) {
	f.guilds = append(f.guilds, id)
	f.zones[id] = tz
}

func (f *fakeGuildConfig) ScheduledGuilds(_ context.Context) ([]int64, error) {
	return f.guilds, nil
}

func (f *fakeGuildConfig) Timezone(_ context.Context, guildID int64) (*time.Location, error) {
	name, ok := f.zones[guildID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return time.LoadLocation(name)
}

func (f *fakeGuildConfig) AllowedChannel(_ context.Context, guildID int64) (int64, error) {
	id, ok := f.channels[guildID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (f *fakeGuildConfig) LastRun(_ context.Context, guildID int64, marker string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[fmt.Sprintf("%d/%s", guildID, marker)], nil
}

func (f *fakeGuildConfig) MarkRun(_ context.Context, guildID int64, marker, ymd string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[fmt.Sprintf("%d/%s", guildID, marker)] = ymd
	return nil
}

type fakeReminders struct {
	mu          sync.Mutex
	refreshes   int
	purges      int
	refreshErr  error
	due         []domain.Reminder
	listedFrom  time.Time
	listedTo    time.Time
	sent        []uuid.UUID
	purgedFirst bool
	listCalls   int
}

func (f *fakeReminders) Refresh(_ context.Context, _ int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return 0, f.refreshErr
	}
	f.refreshes++
	return 1, nil
}

func (f *fakeReminders) Purge(_ context.Context, _ int64, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	f.purgedFirst = f.listCalls == 0
	return 0, nil
}

func (f *fakeReminders) ListDue(_ context.Context, _ int64, from, to time.Time) ([]domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listedFrom, f.listedTo = from, to
	return f.due, nil
}

func (f *fakeReminders) MarkSent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

type fakeWishlists struct {
	channels []int64
	deals    map[int64][]wishlist.Deal
}

func (f *fakeWishlists) Channels(_ context.Context, _ int64) ([]int64, error) {
	return f.channels, nil
}

func (f *fakeWishlists) Digest(_ context.Context, _, channelID int64) ([]wishlist.Deal, error) {
	return f.deals[channelID], nil
}

type fakeAccess struct{ sweeps int }

func (f *fakeAccess) ExpirePending(_ context.Context) (int, error) {
	f.sweeps++
	return 0, nil
}

type sentMessage struct {
	channelID int64
	content   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
}

func (f *fakeNotifier) Send(_ context.Context, channelID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

// ===========================================================================
// Harness
// ===========================================================================

const guild = int64(42)

func testSchedConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		TickInterval:     30 * time.Second,
		Window:           120 * time.Second,
		PurgeGrace:       36 * time.Hour,
		GuildConcurrency: 4,
		RefreshAt:        config.ClockTime{Hour: 17, Minute: 55},
		RemindAt:         config.ClockTime{Hour: 18, Minute: 0},
		DigestAt:         config.ClockTime{Hour: 18, Minute: 3},
	}
}

type harness struct {
	sched     *Scheduler
	guilds    *fakeGuildConfig
	reminders *fakeReminders
	wishlists *fakeWishlists
	access    *fakeAccess
	notifier  *fakeNotifier
}

func newHarness(now time.Time) *harness {
	h := &harness{
		guilds:    newFakeGuildConfig(),
		reminders: &fakeReminders{},
		wishlists: &fakeWishlists{deals: map[int64][]wishlist.Deal{}},
		access:    &fakeAccess{},
		notifier:  &fakeNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.sched = New(logger, testSchedConfig(), h.guilds, h.reminders, h.wishlists, h.access, h.notifier)
	h.sched.SetClock(func() time.Time { return now })
	return h
}

// refreshWindow is inside the 17:55 UTC refresh window on March 4th.
var refreshWindow = time.Date(2026, time.March, 4, 17, 55, 30, 0, time.UTC)

// remindWindow is inside the 18:00 UTC remind window on March 4th.
var remindWindow = time.Date(2026, time.March, 4, 18, 0, 30, 0, time.UTC)

// digestWindow is inside the 18:03 UTC digest window on March 4th.
var digestWindow = time.Date(2026, time.March, 4, 18, 3, 30, 0, time.UTC)

// ===========================================================================
// Window calculation
// ===========================================================================

func TestInWindow(t *testing.T) {
	t.Parallel()

	at := config.ClockTime{Hour: 18, Minute: 0}
	window := 120 * time.Second
	day := func(h, m, sec int) time.Time {
		return time.Date(2026, time.March, 4, h, m, sec, 0, time.UTC)
	}

	assert.False(t, inWindow(day(17, 59, 59), at, window), "before trigger")
	assert.True(t, inWindow(day(18, 0, 0), at, window), "at trigger")
	assert.True(t, inWindow(day(18, 1, 59), at, window), "inside window")
	assert.False(t, inWindow(day(18, 2, 0), at, window), "window is half-open")
	assert.False(t, inWindow(day(23, 30, 0), at, window), "long after")
}

func TestInWindow_LocalClock(t *testing.T) {
	t.Parallel()

	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	// 18:00 Denver is 01:00 UTC next day in winter.
	utcInstant := time.Date(2026, time.March, 5, 1, 0, 30, 0, time.UTC)
	assert.True(t, inWindow(utcInstant.In(denver), config.ClockTime{Hour: 18, Minute: 0}, 120*time.Second))
}

// ===========================================================================
// Idempotent triggering
// ===========================================================================

func TestTick_RunsJobOncePerDay(t *testing.T) {
	t.Parallel()

	h := newHarness(refreshWindow)
	h.guilds.addGuild(guild, "UTC")

	h.sched.Tick(context.Background())
	h.sched.Tick(context.Background())

	assert.Equal(t, 1, h.reminders.refreshes, "marker gates the second tick")

	ymd, err := h.guilds.LastRun(context.Background(), guild, "last_run_refresh_ymd")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", ymd)
}

func TestTick_OutsideWindowRunsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC))
	h.guilds.addGuild(guild, "UTC")

	h.sched.Tick(context.Background())

	assert.Zero(t, h.reminders.refreshes)
	assert.Zero(t, h.reminders.listCalls)
	assert.Empty(t, h.notifier.sent)
}

func TestTick_YesterdaysMarkerRunsAgainToday(t *testing.T) {
	t.Parallel()

	h := newHarness(refreshWindow)
	h.guilds.addGuild(guild, "UTC")
	require.NoError(t, h.guilds.MarkRun(context.Background(), guild, "last_run_refresh_ymd", "2026-03-03"))

	h.sched.Tick(context.Background())

	assert.Equal(t, 1, h.reminders.refreshes)
}

func TestTick_FailedJobLeavesMarkerForRetry(t *testing.T) {
	t.Parallel()

	h := newHarness(refreshWindow)
	h.guilds.addGuild(guild, "UTC")
	h.reminders.refreshErr = errors.New("storefront down")

	h.sched.Tick(context.Background())

	ymd, err := h.guilds.LastRun(context.Background(), guild, "last_run_refresh_ymd")
	require.NoError(t, err)
	assert.Empty(t, ymd, "failed job must not consume the window")

	// Backend recovers; the next tick inside the window succeeds.
	h.reminders.refreshErr = nil
	h.sched.Tick(context.Background())
	assert.Equal(t, 1, h.reminders.refreshes)
}

func TestTick_GuildUsesItsOwnClock(t *testing.T) {
	t.Parallel()

	// 17:55 Denver is 00:55 UTC next day in winter: the UTC guild's window
	// has long passed, the Denver guild's is open.
	h := newHarness(time.Date(2026, time.March, 5, 0, 55, 30, 0, time.UTC))
	h.guilds.addGuild(guild, "America/Denver")
	h.guilds.addGuild(guild+1, "UTC")

	h.sched.Tick(context.Background())

	assert.Equal(t, 1, h.reminders.refreshes, "only the Denver guild is in window")

	ymd, err := h.guilds.LastRun(context.Background(), guild, "last_run_refresh_ymd")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", ymd, "marker carries the guild's local date")
}

func TestTick_SweepsExpiredApprovals(t *testing.T) {
	t.Parallel()

	h := newHarness(time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC))

	h.sched.Tick(context.Background())
	h.sched.Tick(context.Background())

	assert.Equal(t, 2, h.access.sweeps, "the sweep runs every tick, not once per day")
}

// ===========================================================================
// Remind job
// ===========================================================================

func dueReminder(channelID int64) domain.Reminder {
	return domain.Reminder{
		ID:          uuid.New(),
		GuildID:     guild,
		AppID:       620,
		Name:        "Portal 2",
		ReleaseAt:   time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		Precision:   domain.PrecisionDay,
		ReleaseText: "Mar 5, 2026",
		ChannelID:   channelID,
	}
}

func TestRemindJob_DeliversAndMarksSent(t *testing.T) {
	t.Parallel()

	h := newHarness(remindWindow)
	h.guilds.addGuild(guild, "UTC")
	rem := dueReminder(100)
	h.reminders.due = []domain.Reminder{rem}

	h.sched.Tick(context.Background())

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, int64(100), h.notifier.sent[0].channelID)
	assert.Contains(t, h.notifier.sent[0].content, "Portal 2")
	assert.Equal(t, []uuid.UUID{rem.ID}, h.reminders.sent)

	assert.True(t, h.reminders.purgedFirst, "purge precedes the due scan")
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), h.reminders.listedFrom)
}

func TestRemindJob_SendFailureLeavesPending(t *testing.T) {
	t.Parallel()

	h := newHarness(remindWindow)
	h.guilds.addGuild(guild, "UTC")
	h.reminders.due = []domain.Reminder{dueReminder(100)}
	h.notifier.sendErr = errors.New("channel gone")

	h.sched.Tick(context.Background())

	assert.Empty(t, h.reminders.sent, "an undelivered reminder stays pending")
}

func TestRemindJob_FallsBackToGuildChannel(t *testing.T) {
	t.Parallel()

	h := newHarness(remindWindow)
	h.guilds.addGuild(guild, "UTC")
	h.guilds.channels[guild] = 900
	h.reminders.due = []domain.Reminder{dueReminder(0)}

	h.sched.Tick(context.Background())

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, int64(900), h.notifier.sent[0].channelID)
}

func TestRemindJob_NoChannelSkipsWithoutSend(t *testing.T) {
	t.Parallel()

	h := newHarness(remindWindow)
	h.guilds.addGuild(guild, "UTC")
	h.reminders.due = []domain.Reminder{dueReminder(0)}

	h.sched.Tick(context.Background())

	assert.Empty(t, h.notifier.sent)
	assert.Empty(t, h.reminders.sent, "a skipped reminder is not marked sent")
}

// ===========================================================================
// Digest job
// ===========================================================================

func TestDigestJob_SilentWhenNothingOnSale(t *testing.T) {
	t.Parallel()

	h := newHarness(digestWindow)
	h.guilds.addGuild(guild, "UTC")
	h.wishlists.channels = []int64{100, 200}
	h.wishlists.deals[200] = []wishlist.Deal{
		{AppID: 620, Name: "Portal 2", DiscountPercent: 75, FinalPrice: "$4.99"},
	}

	h.sched.Tick(context.Background())

	require.Len(t, h.notifier.sent, 1, "the dealless channel gets no message")
	assert.Equal(t, int64(200), h.notifier.sent[0].channelID)
	assert.Contains(t, h.notifier.sent[0].content, "75% off")
}
