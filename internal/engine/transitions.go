package engine

import "autoref-server/internal/domain"

// transitions - допустимые переходы фаз. Все переходы монотонны,
// кроме цикла Playing <-> Paused внутри тайма. Aborted достижима из любой фазы.
var transitions = map[domain.Phase][]domain.Phase{
	domain.PhasePreKickOff:      {domain.PhasePlaying, domain.PhaseAborted},
	domain.PhasePlaying:         {domain.PhasePaused, domain.PhaseHalfTime, domain.PhaseFullTime, domain.PhaseAborted},
	domain.PhasePaused:          {domain.PhasePlaying, domain.PhaseHalfTime, domain.PhaseFullTime, domain.PhaseAborted},
	domain.PhaseHalfTime:        {domain.PhasePlaying, domain.PhaseAborted},
	domain.PhaseFullTime:        {domain.PhasePenaltyShootout, domain.PhaseAborted},
	domain.PhasePenaltyShootout: {domain.PhaseAborted},
	domain.PhaseAborted:         nil,
}

// CanTransition проверяет переход по таблице.
func CanTransition(from, to domain.Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Successors допустимые следующие фазы.
func Successors(from domain.Phase) []domain.Phase {
	return append([]domain.Phase(nil), transitions[from]...)
}
