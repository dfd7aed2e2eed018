package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeRecorder struct {
	mu     sync.Mutex
	frames []domain.ReplayFrame
	closed bool
}

func (r *fakeRecorder) Append(frame domain.ReplayFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return nil
}

func (r *fakeRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func quickMatchParams() params.ParameterSet {
	return testParams(func(ps *params.ParameterSet) {
		ps.SingleHalfTime = true
		ps.RuleHalfTime = 1
		ps.AutomaticKickOff = true
		ps.WaitBeforeKickOff = 0
		ps.AutomaticQuit = true
	})
}

func TestReferee_RunsUntilAutomaticQuit(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := newRecordingSink()
	ref := newReferee("ref-1", quickMatchParams(), 3, sink, 16)
	rec := &fakeRecorder{}
	ref.AttachRecorder(rec)

	for i := 0; i < 6; i++ {
		require.NoError(t, ref.SubmitSnapshot(&domain.Snapshot{Tick: i + 1, Time: float64(i) * 0.5}))
	}

	require.NoError(t, ref.Run(context.Background()))

	select {
	case <-ref.Done():
	default:
		t.Fatal("Done is not closed after Run")
	}
	assert.Equal(t, domain.PhaseFullTime, ref.State().Phase)
	assert.Len(t, rec.frames, 3)
	assert.True(t, rec.closed)

	var kinds []string
	for _, ev := range sink.events() {
		if ev.Type == api.EventDecision {
			kinds = append(kinds, ev.Decision.Kind)
		}
	}
	assert.Equal(t, []string{"KICK_OFF", "FULL_TIME"}, kinds)
}

func TestReferee_AbortFromAnotherGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := newRecordingSink()
	ref := newReferee("ref-2", testParams(nil), 3, sink, 4)

	errCh := make(chan error, 1)
	go func() { errCh <- ref.Run(context.Background()) }()

	ref.Abort()
	ref.Abort()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("referee loop did not stop after abort")
	}
	assert.Equal(t, domain.PhaseAborted, ref.State().Phase)

	var phases []string
	for _, ev := range sink.events() {
		if ev.Type == api.EventPhase {
			phases = append(phases, ev.Phase)
		}
	}
	assert.Equal(t, []string{"ABORTED"}, phases)
}

func TestReferee_AbortIsRecorded(t *testing.T) {
	defer goleak.VerifyNone(t)

	ref := newReferee("ref-6", testParams(nil), 3, nil, 4)
	rec := &fakeRecorder{}
	ref.AttachRecorder(rec)

	errCh := make(chan error, 1)
	go func() { errCh <- ref.Run(context.Background()) }()

	require.NoError(t, ref.SubmitSnapshot(&domain.Snapshot{Tick: 1}))
	require.Eventually(t, func() bool { return ref.State().Started }, time.Second, 5*time.Millisecond)

	ref.Abort()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("referee loop did not stop after abort")
	}

	require.Len(t, rec.frames, 2)
	assert.False(t, rec.frames[0].Abort)
	assert.Equal(t, 1, rec.frames[0].Snapshot.Tick)
	assert.True(t, rec.frames[1].Abort)
	assert.True(t, rec.closed)
}

func TestReferee_AbortCommandRecordsAbortFrame(t *testing.T) {
	ref := newReferee("ref-7", testParams(nil), 3, nil, 4)
	rec := &fakeRecorder{}
	ref.AttachRecorder(rec)

	_, stop := ref.process(&domain.Snapshot{Tick: 1, Time: 0}, nil)
	require.False(t, stop)

	cmds := []domain.InternalCommand{
		command(t, domain.CommandKickOff, nil),
		command(t, domain.CommandAbort, nil),
	}
	left, stop := ref.process(&domain.Snapshot{Tick: 2, Time: 0.5}, cmds)
	assert.True(t, stop)
	assert.Empty(t, left)
	assert.Equal(t, domain.PhaseAborted, ref.State().Phase)

	require.Len(t, rec.frames, 2)
	assert.Equal(t, domain.ReplayFrame{Abort: true}, rec.frames[1])
}

func TestReferee_CommandsSurviveSkippedFrame(t *testing.T) {
	sink := newRecordingSink()
	ref := newReferee("ref-5", testParams(nil), 3, sink, 4)
	rec := &fakeRecorder{}
	ref.AttachRecorder(rec)

	left, stop := ref.process(&domain.Snapshot{Tick: 1, Time: 0}, nil)
	require.False(t, stop)
	require.Empty(t, left)

	pending := []domain.InternalCommand{command(t, domain.CommandKickOff, nil)}

	// время не идет
	left, stop = ref.process(&domain.Snapshot{Tick: 2, Time: 0}, pending)
	assert.False(t, stop)
	assert.Len(t, left, 1)
	assert.Equal(t, domain.PhasePreKickOff, ref.State().Phase)

	// битый кадр
	left, stop = ref.process(nil, left)
	assert.False(t, stop)
	assert.Len(t, left, 1)
	assert.Len(t, rec.frames, 1)

	left, stop = ref.process(&domain.Snapshot{Tick: 3, Time: 0.5}, left)
	assert.False(t, stop)
	assert.Empty(t, left)

	var kinds []string
	for _, ev := range sink.events() {
		if ev.Type == api.EventDecision {
			kinds = append(kinds, ev.Decision.Kind)
		}
	}
	assert.Equal(t, []string{"KICK_OFF"}, kinds)

	require.Len(t, rec.frames, 2)
	require.Len(t, rec.frames[1].Commands, 1)
	assert.Equal(t, domain.CommandKickOff, rec.frames[1].Commands[0].Type)
}

func TestReferee_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ref := newReferee("ref-3", testParams(nil), 3, nil, 4)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- ref.Run(ctx) }()

	require.NoError(t, ref.SubmitSnapshot(&domain.Snapshot{Tick: 1}))
	require.Eventually(t, func() bool { return ref.State().Started }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("referee loop did not stop after cancel")
	}
	assert.Equal(t, domain.PhasePreKickOff, ref.State().Phase)
}

func TestReferee_QueuesDoNotBlock(t *testing.T) {
	ref := newReferee("ref-4", testParams(nil), 3, nil, 1)

	assert.NoError(t, ref.SubmitSnapshot(&domain.Snapshot{Tick: 1}))
	assert.ErrorIs(t, ref.SubmitSnapshot(&domain.Snapshot{Tick: 2}), ErrQueueFull)

	assert.NoError(t, ref.SubmitCommand(domain.InternalCommand{Type: domain.CommandKickOff}))
	assert.ErrorIs(t, ref.SubmitCommand(domain.InternalCommand{Type: domain.CommandKickOff}), ErrQueueFull)
}

func TestNewReferee_SeedFromParams(t *testing.T) {
	ps := testParams(func(ps *params.ParameterSet) { ps.RandomSeed = 1234 })
	ref := NewReferee(ps, nil, 4)
	assert.Equal(t, int64(1234), ref.Seed)
	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, ref.ID, ref.State().ID)
}
