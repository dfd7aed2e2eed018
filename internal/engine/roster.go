package engine

import (
	"fmt"
	"sort"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

// CheckRoster проверяет, может ли игрок войти в состав команды.
// Ограничения на типы роботов: не больше MaxRobotTypeCount одного типа,
// два самых частых типа вместе не больше MaxSumTwoRobotTypes, и в полной
// команде не меньше MinRobotTypesCount разных типов.
func CheckRoster(players map[domain.PlayerID]*domain.Player, joining domain.PlayerFrame, ps params.ParameterSet) error {
	id := joining.ID
	if id.Unum < 1 || id.Unum > ps.TeamSize {
		return fmt.Errorf("%w: %s: unum must be in 1..%d", ErrRoster, id, ps.TeamSize)
	}

	counts := map[int]int{joining.RobotType: 1}
	size := 1
	for _, p := range players {
		if p.ID.Team != id.Team {
			continue
		}
		counts[p.RobotType]++
		size++
	}
	if size > ps.TeamSize {
		return fmt.Errorf("%w: %s: team %s is full", ErrRoster, id, id.Team)
	}
	if counts[joining.RobotType] > ps.MaxRobotTypeCount {
		return fmt.Errorf("%w: %s: more than %d robots of type %d",
			ErrRoster, id, ps.MaxRobotTypeCount, joining.RobotType)
	}

	byCount := make([]int, 0, len(counts))
	for _, n := range counts {
		byCount = append(byCount, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(byCount)))
	if len(byCount) >= 2 && byCount[0]+byCount[1] > ps.MaxSumTwoRobotTypes {
		return fmt.Errorf("%w: %s: two most used robot types exceed %d",
			ErrRoster, id, ps.MaxSumTwoRobotTypes)
	}
	if size == ps.TeamSize && len(counts) < ps.MinRobotTypesCount {
		return fmt.Errorf("%w: %s: full team needs at least %d robot types",
			ErrRoster, id, ps.MinRobotTypesCount)
	}
	return nil
}
