// Package trainer - команды тренера (парсер команд монитора): ручной начальный удар,
// стандарты, спорный мяч, перестановка игрока и прерывание матча.
package trainer

import (
	"fmt"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine/handlers"
	"autoref-server/pkg/api"
)

// HandleKickOff - начальный удар. Без стороны бьет команда, положенная по правилам.
func HandleKickOff(ctx handlers.Context, p api.KickOffPayload) (handlers.Result, error) {
	team := domain.ParseSide(p.Side)
	if err := ctx.Referee.KickOff(team); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: fmt.Sprintf("kick off requested by %s", ctx.Source)}, nil
}

// HandleRestart назначает стандарт вручную.
func HandleRestart(ctx handlers.Context, p api.RestartPayload) (handlers.Result, error) {
	kind := domain.ParseDecisionKind(p.Kind)
	team := domain.ParseSide(p.Side)
	pos := domain.Vec3{X: p.X, Y: p.Y}
	if err := ctx.Referee.Restart(kind, team, pos); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: fmt.Sprintf("%s for %s at (%.2f, %.2f)", kind, team, p.X, p.Y)}, nil
}

// HandleDropBall - спорный мяч в точке или там, где мяч сейчас.
func HandleDropBall(ctx handlers.Context, p api.DropBallPayload) (handlers.Result, error) {
	var pos *domain.Vec3
	if p.X != nil {
		pos = &domain.Vec3{X: *p.X, Y: *p.Y}
	}
	if err := ctx.Referee.DropBall(pos); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: "drop ball"}, nil
}

// HandleBeam переставляет игрока. Разрешено только там, где разрешена расстановка.
func HandleBeam(ctx handlers.Context, p api.BeamPayload) (handlers.Result, error) {
	id := domain.PlayerID{Team: domain.ParseSide(p.Team), Unum: p.Unum}
	if err := ctx.Referee.Beam(id, domain.Vec3{X: p.X, Y: p.Y}, p.Yaw); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: fmt.Sprintf("beam %s", id)}, nil
}

// HandleAbort прерывает матч. Допустимо в любой фазе.
func HandleAbort(ctx handlers.Context) (handlers.Result, error) {
	ctx.Referee.Abort()
	return handlers.Result{Msg: fmt.Sprintf("match aborted by %s", ctx.Source)}, nil
}
