package engine

import "errors"

// ErrStateInconsistency - запрос или данные противоречат состоянию матча
// (стандарт не из той фазы, голы в обои ворота за тик, уменьшение счета).
// Запрос отклоняется, прежнее состояние сохраняется.
var ErrStateInconsistency = errors.New("state inconsistency")

// ErrRoster - игрок не проходит ограничения состава.
var ErrRoster = errors.New("roster violation")
