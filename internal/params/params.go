// Package params описывает неизменяемый набор параметров матча (ParameterSet).
// Все параметры необязательны: отсутствующий или битый параметр заменяется
// документированным значением по умолчанию.
package params

import "autoref-server/internal/domain"

// ParameterSet - снимок всех настраиваемых порогов. Загружается один раз
// на матч и передается компонентам по значению.
type ParameterSet struct {
	// Геометрия поля (метры)
	FieldLength      float64
	FieldWidth       float64
	FieldHeight      float64
	GoalWidth        float64
	GoalDepth        float64
	GoalHeight       float64
	PenaltyLength    float64
	PenaltyWidth     float64
	FreeKickDistance float64
	FreeKickMoveDist float64
	GoalKickDist     float64
	BorderSize       float64

	// Начальный удар и время
	AutomaticKickOff        bool
	WaitBeforeKickOff       float64
	CoinTossForKickOff      bool
	KickOffSide             domain.Side // первый удар без жеребьевки
	RandomSeed              int         // 0 - случайное зерно
	PenaltyShootout         bool
	AutomaticQuit           bool
	ChangeSidesInSecondHalf bool
	SingleHalfTime          bool
	RuleHalfTime            float64
	RuleDropBallTime        float64
	RuleGoalPauseTime       float64
	RuleKickInPauseTime     float64

	// Агенты
	AgentRadius         float64
	TeamSize            int
	MaxRobotTypeCount   int
	MinRobotTypesCount  int
	MaxSumTwoRobotTypes int

	// Мяч
	BallRadius float64
	BallMass   float64

	// Правила
	UseOffside         bool
	MaxTouchGroupSize  int
	TouchDistance      float64
	TouchMinDeltaSpeed float64

	// Charging
	UseCharging               bool
	ChargingMinSpeed          float64
	ChargingMinBallSpeedAngle float64 // градусы
	ChargingMinDeltaDist      float64
	ChargingMinDeltaAng       float64 // градусы
	ChargingImmunityTime      float64
	ChargingMaxBallDist       float64
	ChargingWindow            float64

	// Автосудья: поза и скученность
	NotStandingMaxTime       float64
	GoalieNotStandingMaxTime float64
	GroundMaxTime            float64
	GoalieGroundMaxTime      float64
	MaxPlayersInsideOwnArea  int
	MinOppDistance           float64
	Min2PlDistance           float64
	Min3PlDistance           float64

	// Отчеты
	ReportScore   bool
	LabelMessages bool

	// Шум перестановки (beam)
	BeamNoiseXY    float64
	BeamNoiseAngle float64 // градусы

	// Warnings - ConfigurationError, собранные при загрузке.
	Warnings []error
}

// Defaults возвращает набор со значениями по умолчанию.
func Defaults() ParameterSet {
	var ps ParameterSet
	for _, e := range schema {
		e.apply(&ps, e.def)
	}
	return ps
}

// HalfLength половина длины поля.
func (ps ParameterSet) HalfLength() float64 { return ps.FieldLength / 2 }

// HalfWidth половина ширины поля.
func (ps ParameterSet) HalfWidth() float64 { return ps.FieldWidth / 2 }

// HalfCount число таймов.
func (ps ParameterSet) HalfCount() int {
	if ps.SingleHalfTime {
		return 1
	}
	return 2
}
