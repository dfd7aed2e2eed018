package trainer

import (
	"encoding/json"
	"errors"
	"testing"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine/handlers"
	"autoref-server/internal/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReferee запоминает вызовы операций судьи.
type stubReferee struct {
	kickOff  domain.Side
	restart  *domain.Restart
	dropAt   *domain.Vec3
	dropped  bool
	beamed   domain.PlayerID
	beamPos  domain.Vec3
	beamYaw  float64
	aborted  bool
	failWith error
}

func (s *stubReferee) Match() *domain.Match        { return domain.NewMatch("stub") }
func (s *stubReferee) Params() params.ParameterSet { return params.Defaults() }

func (s *stubReferee) KickOff(team domain.Side) error {
	s.kickOff = team
	return s.failWith
}

func (s *stubReferee) Restart(kind domain.DecisionKind, team domain.Side, pos domain.Vec3) error {
	s.restart = &domain.Restart{Kind: kind, Team: team, Pos: pos}
	return s.failWith
}

func (s *stubReferee) DropBall(pos *domain.Vec3) error {
	s.dropped = true
	s.dropAt = pos
	return s.failWith
}

func (s *stubReferee) Beam(id domain.PlayerID, pos domain.Vec3, yaw float64) error {
	s.beamed, s.beamPos, s.beamYaw = id, pos, yaw
	return s.failWith
}

func (s *stubReferee) Abort() { s.aborted = true }

func call(t *testing.T, h handlers.HandlerFunc, ref *stubReferee, payload string) (handlers.Result, error) {
	t.Helper()
	var raw json.RawMessage
	if payload != "" {
		raw = json.RawMessage(payload)
	}
	return h(handlers.Context{Referee: ref, Source: "monitor-1"}, raw)
}

func TestHandleKickOff(t *testing.T) {
	ref := &stubReferee{}
	res, err := call(t, handlers.WithPayload(HandleKickOff), ref, `{"side":"right"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.SideRight, ref.kickOff)
	assert.Contains(t, res.Msg, "monitor-1")

	ref = &stubReferee{kickOff: domain.SideLeft}
	_, err = call(t, handlers.WithPayload(HandleKickOff), ref, "")
	require.NoError(t, err)
	assert.Equal(t, domain.SideNone, ref.kickOff, "no side means the side owed by the rules")
}

func TestHandleRestart(t *testing.T) {
	ref := &stubReferee{}
	_, err := call(t, handlers.WithPayload(HandleRestart), ref, `{"kind":"free_kick","side":"Left","x":3,"y":-2}`)
	require.NoError(t, err)
	require.NotNil(t, ref.restart)
	assert.Equal(t, domain.DecisionFreeKick, ref.restart.Kind)
	assert.Equal(t, domain.SideLeft, ref.restart.Team)
	assert.Equal(t, domain.Vec3{X: 3, Y: -2}, ref.restart.Pos)
}

func TestHandleDropBall(t *testing.T) {
	ref := &stubReferee{}
	_, err := call(t, handlers.WithPayload(HandleDropBall), ref, `{}`)
	require.NoError(t, err)
	assert.True(t, ref.dropped)
	assert.Nil(t, ref.dropAt)

	ref = &stubReferee{}
	_, err = call(t, handlers.WithPayload(HandleDropBall), ref, `{"x":1.5,"y":2}`)
	require.NoError(t, err)
	require.NotNil(t, ref.dropAt)
	assert.Equal(t, domain.Vec3{X: 1.5, Y: 2}, *ref.dropAt)

	ref = &stubReferee{}
	_, err = call(t, handlers.WithPayload(HandleDropBall), ref, `{"x":1.5}`)
	assert.ErrorIs(t, err, handlers.ErrBadPayload)
	assert.False(t, ref.dropped, "invalid payload never reaches the referee")
}

func TestHandleBeam(t *testing.T) {
	ref := &stubReferee{}
	_, err := call(t, handlers.WithPayload(HandleBeam), ref, `{"team":"Left","unum":4,"x":-5,"y":1,"yaw":90}`)
	require.NoError(t, err)
	assert.Equal(t, domain.PlayerID{Team: domain.SideLeft, Unum: 4}, ref.beamed)
	assert.Equal(t, domain.Vec3{X: -5, Y: 1}, ref.beamPos)
	assert.Equal(t, 90.0, ref.beamYaw)

	_, err = call(t, handlers.WithPayload(HandleBeam), &stubReferee{}, `{"team":"Left","unum":4,"x":"far"}`)
	assert.ErrorIs(t, err, handlers.ErrBadPayload)
	assert.Contains(t, err.Error(), "api.BeamPayload")
}

func TestHandleAbort(t *testing.T) {
	ref := &stubReferee{}
	_, err := call(t, handlers.WithEmptyPayload(HandleAbort), ref, `{"ignored":true}`)
	require.NoError(t, err)
	assert.True(t, ref.aborted)
}

func TestHandlers_PropagateRefereeErrors(t *testing.T) {
	refusal := errors.New("wrong phase")
	ref := &stubReferee{failWith: refusal}

	_, err := call(t, handlers.WithPayload(HandleKickOff), ref, `{}`)
	assert.ErrorIs(t, err, refusal)
	assert.NotErrorIs(t, err, handlers.ErrBadPayload)
	_, err = call(t, handlers.WithPayload(HandleBeam), ref, `{"team":"R","unum":1}`)
	assert.ErrorIs(t, err, refusal)
}
