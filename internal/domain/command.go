package domain

import (
	"encoding/json"
	"strings"
)

// CommandType - команда тренера/парсера команд монитора.
type CommandType uint8

const (
	CommandUnknown CommandType = iota
	CommandKickOff
	CommandRestart
	CommandDropBall
	CommandBeam
	CommandAbort
)

var commandStringToValue = map[string]CommandType{
	"KICKOFF":  CommandKickOff,
	"RESTART":  CommandRestart,
	"DROPBALL": CommandDropBall,
	"BEAM":     CommandBeam,
	"ABORT":    CommandAbort,
}

var commandValueToString = map[CommandType]string{
	CommandKickOff:  "KICKOFF",
	CommandRestart:  "RESTART",
	CommandDropBall: "DROPBALL",
	CommandBeam:     "BEAM",
	CommandAbort:    "ABORT",
}

// ParseCommand конвертирует строку из JSON в CommandType.
func ParseCommand(s string) CommandType {
	if val, ok := commandStringToValue[strings.ToUpper(s)]; ok {
		return val
	}
	return CommandUnknown
}

func (c CommandType) String() string {
	if val, ok := commandValueToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// InternalCommand - команда в очереди судьи.
type InternalCommand struct {
	Type    CommandType     `json:"type" msgpack:"type"`
	Source  string          `json:"source,omitempty" msgpack:"source"` // кто прислал (id монитора)
	Payload json.RawMessage `json:"payload,omitempty" msgpack:"payload"`
}
