package params

import (
	"fmt"
	"math"
	"strconv"

	"autoref-server/internal/domain"
)

type kind uint8

const (
	kindFloat kind = iota
	kindInt
	kindBool
	kindSide
)

// entry - одна запись схемы: имя, тип, значение по умолчанию и поле ParameterSet.
type entry struct {
	name     string
	kind     kind
	def      any
	min      float64 // нижняя граница для чисел (включительно)
	geometry bool    // нарушение фатально, а не заменяется дефолтом
	field    func(ps *ParameterSet) any
}

func floatEntry(name string, def float64, field func(ps *ParameterSet) *float64) entry {
	return entry{name: name, kind: kindFloat, def: def, field: func(ps *ParameterSet) any { return field(ps) }}
}

func geoEntry(name string, def float64, field func(ps *ParameterSet) *float64) entry {
	e := floatEntry(name, def, field)
	e.geometry = true
	return e
}

func intEntry(name string, def int, minValue int, field func(ps *ParameterSet) *int) entry {
	return entry{name: name, kind: kindInt, def: def, min: float64(minValue), field: func(ps *ParameterSet) any { return field(ps) }}
}

func boolEntry(name string, def bool, field func(ps *ParameterSet) *bool) entry {
	return entry{name: name, kind: kindBool, def: def, field: func(ps *ParameterSet) any { return field(ps) }}
}

func sideEntry(name string, def domain.Side, field func(ps *ParameterSet) *domain.Side) entry {
	return entry{name: name, kind: kindSide, def: def, field: func(ps *ParameterSet) any { return field(ps) }}
}

// schema - все параметры с документированными значениями по умолчанию.
// Имена совпадают с именами переменных пространства Soccer.
var schema = []entry{
	geoEntry("FieldLength", 30.0, func(ps *ParameterSet) *float64 { return &ps.FieldLength }),
	geoEntry("FieldWidth", 20.0, func(ps *ParameterSet) *float64 { return &ps.FieldWidth }),
	geoEntry("FieldHeight", 40.0, func(ps *ParameterSet) *float64 { return &ps.FieldHeight }),
	geoEntry("GoalWidth", 2.1, func(ps *ParameterSet) *float64 { return &ps.GoalWidth }),
	geoEntry("GoalDepth", 0.6, func(ps *ParameterSet) *float64 { return &ps.GoalDepth }),
	geoEntry("GoalHeight", 0.8, func(ps *ParameterSet) *float64 { return &ps.GoalHeight }),
	geoEntry("PenaltyLength", 1.8, func(ps *ParameterSet) *float64 { return &ps.PenaltyLength }),
	geoEntry("PenaltyWidth", 3.9, func(ps *ParameterSet) *float64 { return &ps.PenaltyWidth }),
	floatEntry("FreeKickDistance", 2.0, func(ps *ParameterSet) *float64 { return &ps.FreeKickDistance }),
	floatEntry("FreeKickMoveDist", 2.2, func(ps *ParameterSet) *float64 { return &ps.FreeKickMoveDist }),
	floatEntry("GoalKickDist", 1.0, func(ps *ParameterSet) *float64 { return &ps.GoalKickDist }),
	geoEntry("BorderSize", 0.0, func(ps *ParameterSet) *float64 { return &ps.BorderSize }),

	boolEntry("AutomaticKickOff", false, func(ps *ParameterSet) *bool { return &ps.AutomaticKickOff }),
	floatEntry("WaitBeforeKickOff", 30.0, func(ps *ParameterSet) *float64 { return &ps.WaitBeforeKickOff }),
	boolEntry("CoinTossForKickOff", false, func(ps *ParameterSet) *bool { return &ps.CoinTossForKickOff }),
	sideEntry("KickOffSide", domain.SideLeft, func(ps *ParameterSet) *domain.Side { return &ps.KickOffSide }),
	intEntry("RandomSeed", 0, 0, func(ps *ParameterSet) *int { return &ps.RandomSeed }),
	boolEntry("PenaltyShootout", false, func(ps *ParameterSet) *bool { return &ps.PenaltyShootout }),
	boolEntry("AutomaticQuit", false, func(ps *ParameterSet) *bool { return &ps.AutomaticQuit }),
	boolEntry("ChangeSidesInSecondHalf", false, func(ps *ParameterSet) *bool { return &ps.ChangeSidesInSecondHalf }),
	boolEntry("SingleHalfTime", false, func(ps *ParameterSet) *bool { return &ps.SingleHalfTime }),
	floatEntry("RuleHalfTime", 5.0*60, func(ps *ParameterSet) *float64 { return &ps.RuleHalfTime }),
	floatEntry("RuleDropBallTime", 15.0, func(ps *ParameterSet) *float64 { return &ps.RuleDropBallTime }),
	floatEntry("RuleGoalPauseTime", 3.0, func(ps *ParameterSet) *float64 { return &ps.RuleGoalPauseTime }),
	floatEntry("RuleKickInPauseTime", 1.0, func(ps *ParameterSet) *float64 { return &ps.RuleKickInPauseTime }),

	floatEntry("AgentRadius", 0.8, func(ps *ParameterSet) *float64 { return &ps.AgentRadius }),
	intEntry("TeamSize", 11, 1, func(ps *ParameterSet) *int { return &ps.TeamSize }),
	intEntry("MaxRobotTypeCount", 7, 1, func(ps *ParameterSet) *int { return &ps.MaxRobotTypeCount }),
	intEntry("MinRobotTypesCount", 3, 0, func(ps *ParameterSet) *int { return &ps.MinRobotTypesCount }),
	intEntry("MaxSumTwoRobotTypes", 9, 1, func(ps *ParameterSet) *int { return &ps.MaxSumTwoRobotTypes }),

	floatEntry("BallRadius", 0.042, func(ps *ParameterSet) *float64 { return &ps.BallRadius }),
	floatEntry("BallMass", 0.026, func(ps *ParameterSet) *float64 { return &ps.BallMass }),

	boolEntry("UseOffside", false, func(ps *ParameterSet) *bool { return &ps.UseOffside }),
	intEntry("MaxTouchGroupSize", 2, 1, func(ps *ParameterSet) *int { return &ps.MaxTouchGroupSize }),
	floatEntry("TouchDistance", 0.25, func(ps *ParameterSet) *float64 { return &ps.TouchDistance }),
	floatEntry("TouchMinDeltaSpeed", 0.05, func(ps *ParameterSet) *float64 { return &ps.TouchMinDeltaSpeed }),

	boolEntry("UseCharging", true, func(ps *ParameterSet) *bool { return &ps.UseCharging }),
	floatEntry("ChargingMinSpeed", 0.4, func(ps *ParameterSet) *float64 { return &ps.ChargingMinSpeed }),
	floatEntry("ChargingMinBallSpeedAngle", 30.0, func(ps *ParameterSet) *float64 { return &ps.ChargingMinBallSpeedAngle }),
	floatEntry("ChargingMinDeltaDist", 0.2, func(ps *ParameterSet) *float64 { return &ps.ChargingMinDeltaDist }),
	floatEntry("ChargingMinDeltaAng", 15.0, func(ps *ParameterSet) *float64 { return &ps.ChargingMinDeltaAng }),
	floatEntry("ChargingImmunityTime", 1.0, func(ps *ParameterSet) *float64 { return &ps.ChargingImmunityTime }),
	floatEntry("ChargingMaxBallDist", 10.0, func(ps *ParameterSet) *float64 { return &ps.ChargingMaxBallDist }),
	floatEntry("ChargingWindow", 1.0, func(ps *ParameterSet) *float64 { return &ps.ChargingWindow }),

	floatEntry("NotStandingMaxTime", 30.0, func(ps *ParameterSet) *float64 { return &ps.NotStandingMaxTime }),
	floatEntry("GoalieNotStandingMaxTime", 60.0, func(ps *ParameterSet) *float64 { return &ps.GoalieNotStandingMaxTime }),
	floatEntry("GroundMaxTime", 15.0, func(ps *ParameterSet) *float64 { return &ps.GroundMaxTime }),
	floatEntry("GoalieGroundMaxTime", 30.0, func(ps *ParameterSet) *float64 { return &ps.GoalieGroundMaxTime }),
	intEntry("MaxPlayersInsideOwnArea", 3, 0, func(ps *ParameterSet) *int { return &ps.MaxPlayersInsideOwnArea }),
	floatEntry("MinOppDistance", 0.8, func(ps *ParameterSet) *float64 { return &ps.MinOppDistance }),
	floatEntry("Min2PlDistance", 0.4, func(ps *ParameterSet) *float64 { return &ps.Min2PlDistance }),
	floatEntry("Min3PlDistance", 1.0, func(ps *ParameterSet) *float64 { return &ps.Min3PlDistance }),

	boolEntry("ReportScore", true, func(ps *ParameterSet) *bool { return &ps.ReportScore }),
	boolEntry("LabelMessages", true, func(ps *ParameterSet) *bool { return &ps.LabelMessages }),

	floatEntry("BeamNoiseXY", 0.05, func(ps *ParameterSet) *float64 { return &ps.BeamNoiseXY }),
	floatEntry("BeamNoiseAngle", 10.0, func(ps *ParameterSet) *float64 { return &ps.BeamNoiseAngle }),
}

var schemaIndex = func() map[string]entry {
	idx := make(map[string]entry, len(schema))
	for _, e := range schema {
		idx[e.name] = e
	}
	return idx
}()

func (e entry) apply(ps *ParameterSet, v any) {
	switch ptr := e.field(ps).(type) {
	case *float64:
		*ptr = v.(float64)
	case *int:
		*ptr = v.(int)
	case *bool:
		*ptr = v.(bool)
	case *domain.Side:
		*ptr = v.(domain.Side)
	}
}

func (e entry) value(ps *ParameterSet) any {
	switch ptr := e.field(ps).(type) {
	case *float64:
		return *ptr
	case *int:
		return *ptr
	case *bool:
		return *ptr
	case *domain.Side:
		return ptr.String()
	}
	return nil
}

// convert приводит сырое значение из YAML к типу записи.
func (e entry) convert(raw any) (any, error) {
	switch e.kind {
	case kindFloat:
		var v float64
		switch r := raw.(type) {
		case int:
			v = float64(r)
		case float64:
			v = r
		default:
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("not a finite number")
		}
		if !e.geometry && v < e.min {
			return nil, fmt.Errorf("must be >= %v", e.min)
		}
		return v, nil

	case kindInt:
		var v int
		switch r := raw.(type) {
		case int:
			v = r
		case float64:
			if r != math.Trunc(r) {
				return nil, fmt.Errorf("expected integer, got %v", r)
			}
			v = int(r)
		default:
			return nil, fmt.Errorf("expected integer, got %T", raw)
		}
		if float64(v) < e.min {
			return nil, fmt.Errorf("must be >= %v", e.min)
		}
		return v, nil

	case kindBool:
		switch r := raw.(type) {
		case bool:
			return r, nil
		case string:
			v, err := strconv.ParseBool(r)
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", r)
			}
			return v, nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", raw)

	case kindSide:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected Left or Right, got %T", raw)
		}
		v := domain.ParseSide(s)
		if v == domain.SideNone {
			return nil, fmt.Errorf("expected Left or Right, got %q", s)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported parameter kind")
}
