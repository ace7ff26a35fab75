package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu      sync.Mutex
	members map[int64]bool

	addErr    error
	statusErr error
	removeErr error
	link      string
	linkErr   error

	adds    []int64
	removes []int64
	posts   []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{members: make(map[int64]bool), link: "https://t.me/+abc"}
}

func (f *fakeChannel) AddMember(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, userID)
	if f.addErr != nil {
		return f.addErr
	}
	f.members[userID] = true
	return nil
}

func (f *fakeChannel) RemoveMember(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, userID)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.members, userID)
	return nil
}

func (f *fakeChannel) PostMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, text)
	return nil
}

func (f *fakeChannel) MemberStatus(_ context.Context, _, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return false, f.statusErr
	}
	return f.members[userID], nil
}

func (f *fakeChannel) InviteLink(_ context.Context, _ int64) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.link, nil
}

// manualClock collects scheduled tasks so tests can fire timers on demand.
type manualClock struct {
	mu    sync.Mutex
	tasks []func()
}

func (c *manualClock) schedule(_ time.Duration, f func()) {
	c.mu.Lock()
	c.tasks = append(c.tasks, f)
	c.mu.Unlock()
}

func (c *manualClock) fire() {
	c.mu.Lock()
	tasks := c.tasks
	c.tasks = nil
	c.mu.Unlock()
	for _, f := range tasks {
		f()
	}
}

func newTestManager(api ChannelAPI, adminID int64) (*Manager, *manualClock) {
	clock := &manualClock{}
	m := NewManager(api, Options{
		ChannelID:   -1001,
		AdminID:     adminID,
		RevokeDelay: 30 * time.Minute,
	})
	m.schedule = clock.schedule
	return m, clock
}

func TestGrantThenRevokeAfterDelay(t *testing.T) {
	ch := newFakeChannel()
	m, clock := newTestManager(ch, 999)

	res := m.OnTerminal(context.Background(), 42, "alice", "101")
	require.True(t, res.Granted)
	assert.False(t, res.AlreadyMember)
	assert.True(t, res.RevokeScheduled)
	assert.True(t, ch.members[42])
	assert.Equal(t, 1, m.PendingRevocations())

	clock.fire()
	assert.False(t, ch.members[42], "membership revoked after the delay")
	assert.Equal(t, []int64{42}, ch.removes)
	assert.Equal(t, 0, m.PendingRevocations())
}

func TestAdminIsNeverScheduledForRevocation(t *testing.T) {
	ch := newFakeChannel()
	m, clock := newTestManager(ch, 999)

	res := m.OnTerminal(context.Background(), 999, "boss", "101")
	require.True(t, res.Granted)
	assert.False(t, res.RevokeScheduled)
	assert.Equal(t, 0, m.PendingRevocations())

	clock.fire()
	assert.True(t, ch.members[999], "admin membership is permanent")
}

func TestAlreadyMemberIsIdempotentGrant(t *testing.T) {
	ch := newFakeChannel()
	ch.members[42] = true
	m, _ := newTestManager(ch, 999)

	res := m.OnTerminal(context.Background(), 42, "alice", "101")
	assert.True(t, res.Granted)
	assert.True(t, res.AlreadyMember)
	assert.Empty(t, ch.adds, "no redundant add call for an existing member")
}

func TestDuplicateTerminalArmsSingleRevocation(t *testing.T) {
	ch := newFakeChannel()
	m, clock := newTestManager(ch, 999)

	first := m.OnTerminal(context.Background(), 42, "alice", "101")
	second := m.OnTerminal(context.Background(), 42, "alice", "102")

	assert.True(t, first.RevokeScheduled)
	assert.False(t, second.RevokeScheduled, "second selection reuses the pending timer")
	assert.Equal(t, 1, m.PendingRevocations())

	clock.fire()
	assert.Equal(t, []int64{42}, ch.removes, "exactly one removal")
}

func TestUnreachableUserGetsInviteLink(t *testing.T) {
	ch := newFakeChannel()
	ch.addErr = fmt.Errorf("api: %w", ErrUserUnreachable)
	m, _ := newTestManager(ch, 999)

	res := m.OnTerminal(context.Background(), 42, "alice", "101")
	assert.False(t, res.Granted)
	assert.Equal(t, "https://t.me/+abc", res.InviteLink)
	assert.Equal(t, 0, m.PendingRevocations(), "no revocation without a grant")
}

func TestOtherGrantErrorYieldsNoInvite(t *testing.T) {
	ch := newFakeChannel()
	ch.addErr = errors.New("flood wait")
	m, _ := newTestManager(ch, 999)

	res := m.OnTerminal(context.Background(), 42, "alice", "101")
	assert.False(t, res.Granted)
	assert.Empty(t, res.InviteLink)
}

func TestRevokeSkipsUserWhoAlreadyLeft(t *testing.T) {
	ch := newFakeChannel()
	m, clock := newTestManager(ch, 999)

	m.OnTerminal(context.Background(), 42, "alice", "101")
	ch.mu.Lock()
	delete(ch.members, 42)
	ch.mu.Unlock()

	clock.fire()
	assert.Empty(t, ch.removes, "no kick for a user who is already gone")
	assert.Equal(t, 0, m.PendingRevocations())
}

func TestFailedRevocationClearsPending(t *testing.T) {
	ch := newFakeChannel()
	m, clock := newTestManager(ch, 999)

	m.OnTerminal(context.Background(), 42, "alice", "101")
	ch.removeErr = errors.New("not enough rights")

	clock.fire()
	assert.True(t, ch.members[42])
	assert.Equal(t, 0, m.PendingRevocations(), "pending slot is freed even on failure")

	// A later terminal selection can arm a fresh revocation.
	ch.removeErr = nil
	res := m.OnTerminal(context.Background(), 42, "alice", "101")
	assert.True(t, res.RevokeScheduled)
}

func TestAuditMessagePostedForEverySelection(t *testing.T) {
	ch := newFakeChannel()
	m, _ := newTestManager(ch, 999)

	m.OnTerminal(context.Background(), 42, "alice", "101")
	require.Len(t, ch.posts, 1)
	assert.Equal(t, "alice (42) received code 101", ch.posts[0])
}
