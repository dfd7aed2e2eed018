package domain

// ReplayFrame - один примененный тик: кадр физики и принятые команды.
// Кадр с Abort=true фиксирует прерывание матча монитором, снимка в нем нет.
type ReplayFrame struct {
	Snapshot Snapshot          `msgpack:"snapshot"`
	Commands []InternalCommand `msgpack:"commands,omitempty"`
	Abort    bool              `msgpack:"abort,omitempty"`
}

// ReplaySession - полная запись матча.
type ReplaySession struct {
	MatchID   string        `json:"matchId"`
	Seed      int64         `json:"seed"` // зерно жеребьевки и шума перестановок
	Timestamp int64         `json:"timestamp"`
	Params    []byte        `json:"params,omitempty"` // YAML параметров матча
	Frames    []ReplayFrame `json:"frames"`
}
