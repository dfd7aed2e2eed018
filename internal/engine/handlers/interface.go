package handlers

import (
	"encoding/json"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

// Referee - операции судьи, доступные командам тренера.
// Реализуется тиком PhaseController: все изменения идут в рабочую копию матча
// и коммитятся вместе с тиком. Ошибка фазы оборачивает ErrStateInconsistency.
type Referee interface {
	Match() *domain.Match
	Params() params.ParameterSet

	KickOff(team domain.Side) error
	Restart(kind domain.DecisionKind, team domain.Side, pos domain.Vec3) error
	DropBall(pos *domain.Vec3) error
	Beam(id domain.PlayerID, pos domain.Vec3, yaw float64) error
	Abort()
}

// Context передает хендлеру судью и источник команды.
type Context struct {
	Referee Referee
	Source  string // id монитора, приславшего команду
}

// Result - итог команды тренера. Решения судьи в него не входят,
// они попадают в результат тика.
type Result struct {
	Msg string // Текст для лога
}

// HandlerFunc - обработчик команды тренера с сырыми данными из сообщения монитора.
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - результат отклоненной команды.
func EmptyResult() Result {
	return Result{}
}
