package engine

import "autoref-server/internal/domain"

// PhaseTransition - смена фазы внутри тика.
type PhaseTransition struct {
	From domain.Phase
	To   domain.Phase
}

// CommandOutcome - судьба команды тренера на этом тике.
type CommandOutcome struct {
	Command domain.InternalCommand
	Msg     string
	Err     error
}

// TickResult - все, что произошло за один вызов Advance.
type TickResult struct {
	Tick int
	Time float64 // игровое время после тика

	// Applied=false: тик пропущен (битый кадр, время не идет, противоречие)
	// и состояние матча не изменилось.
	Applied bool
	Skipped error

	Phase       domain.Phase
	Transitions []PhaseTransition

	Decisions   []domain.Decision
	Violations  []domain.RuleViolation
	Relocations []domain.Relocation
	Commands    []CommandOutcome

	Score        domain.Score
	ScoreChanged bool

	// Warnings - отклоненные противоречивые данные (ErrStateInconsistency).
	Warnings []error

	// Quit - AutomaticQuit: цикл судьи должен остановиться.
	Quit bool
}

// PhaseChanged - была ли смена фазы.
func (r TickResult) PhaseChanged() bool {
	return len(r.Transitions) > 0
}
