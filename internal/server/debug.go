package server

import (
	"encoding/json"
	"net/http"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine"
	"autoref-server/internal/params"
)

// DebugHandler предоставляет доступ к внутреннему состоянию судьи
type DebugHandler struct {
	Referee *engine.Referee
}

func NewDebugHandler(r *engine.Referee) *DebugHandler {
	return &DebugHandler{Referee: r}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/match", h.handleMatch)
	mux.HandleFunc("/debug/params", h.handleParams)
}

// matchDump - состояние матча вместе с игроками (в Match они скрыты от JSON).
type matchDump struct {
	*domain.Match
	Players []*domain.Player `json:"players"`
}

// /debug/match - последнее закоммиченное состояние матча
func (h *DebugHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	m := h.Referee.State()
	writeJSON(w, matchDump{Match: m, Players: m.SortedPlayers()})
}

// /debug/params - действующий набор параметров в YAML
func (h *DebugHandler) handleParams(w http.ResponseWriter, r *http.Request) {
	data, err := params.Marshal(h.Referee.Params())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (локальный монитор)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
