package systems

import (
	"math"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

// Field - геометрия поля, посчитанная из ParameterSet.
// Начало координат в центре поля, конец Left на отрицательном X.
type Field struct {
	HalfLength float64
	HalfWidth  float64
	Border     float64

	GoalHalfWidth float64
	GoalHeight    float64
	GoalDepth     float64

	PenaltyLength    float64
	PenaltyHalfWidth float64

	BallRadius float64
}

func NewField(ps params.ParameterSet) Field {
	return Field{
		HalfLength:       ps.HalfLength(),
		HalfWidth:        ps.HalfWidth(),
		Border:           ps.BorderSize,
		GoalHalfWidth:    ps.GoalWidth / 2,
		GoalHeight:       ps.GoalHeight,
		GoalDepth:        ps.GoalDepth,
		PenaltyLength:    ps.PenaltyLength,
		PenaltyHalfWidth: ps.PenaltyWidth / 2,
		BallRadius:       ps.BallRadius,
	}
}

// GoalLineX координата X лицевой линии конца end.
func (f Field) GoalLineX(end domain.Side) float64 {
	return end.Sign() * f.HalfLength
}

// GoalCenter центр линии ворот конца end.
func (f Field) GoalCenter(end domain.Side) domain.Vec3 {
	return domain.Vec3{X: f.GoalLineX(end)}
}

// InGoalMouth - проекция точки попадает в створ ворот (по ширине и высоте).
func (f Field) InGoalMouth(pos domain.Vec3) bool {
	return math.Abs(pos.Y) < f.GoalHalfWidth && pos.Z < f.GoalHeight
}

// GoalEnd возвращает конец поля, если мяч целиком пересек линию ворот в створе.
func (f Field) GoalEnd(pos domain.Vec3) (domain.Side, bool) {
	if !f.InGoalMouth(pos) {
		return domain.SideNone, false
	}
	if math.Abs(pos.X) > f.HalfLength+f.BallRadius {
		return domain.EndForX(pos.X), true
	}
	return domain.SideNone, false
}

// OutOfBounds классифицирует выход мяча за поле, расширенное на BorderSize.
// Точка ровно на границе еще в поле. Створ ворот обрабатывает GoalEnd.
func (f Field) OutOfBounds(pos domain.Vec3) domain.OutOfPlay {
	if math.Abs(pos.X) > f.HalfLength+f.Border && !f.InGoalMouth(pos) {
		return domain.OutGoalLine
	}
	if math.Abs(pos.Y) > f.HalfWidth+f.Border {
		return domain.OutSideLine
	}
	return domain.OutNone
}

// Clamp прижимает точку к прямоугольнику поля (без бордюра) и кладет на газон.
func (f Field) Clamp(pos domain.Vec3) domain.Vec3 {
	return domain.Vec3{
		X: math.Max(-f.HalfLength, math.Min(f.HalfLength, pos.X)),
		Y: math.Max(-f.HalfWidth, math.Min(f.HalfWidth, pos.Y)),
	}
}

// InPenaltyArea - точка внутри штрафной площади у ворот конца end.
func (f Field) InPenaltyArea(pos domain.Vec3, end domain.Side) bool {
	if math.Abs(pos.Y) > f.PenaltyHalfWidth {
		return false
	}
	// Глубина от лицевой линии внутрь поля
	depth := f.HalfLength - pos.X*end.Sign()
	return depth >= 0 && depth <= f.PenaltyLength
}

// Corner угловая точка на конце end со стороны y.
func (f Field) Corner(end domain.Side, y float64) domain.Vec3 {
	cy := f.HalfWidth
	if y < 0 {
		cy = -cy
	}
	return domain.Vec3{X: f.GoalLineX(end), Y: cy}
}

// GoalKickSpot точка удара от ворот на конце end.
func (f Field) GoalKickSpot(end domain.Side, dist float64) domain.Vec3 {
	return domain.Vec3{X: end.Sign() * (f.HalfLength - dist)}
}

// TouchLinePoint точка на боковой линии своей половины для перестановки игрока.
func (f Field) TouchLinePoint(end domain.Side, x float64) domain.Vec3 {
	x = math.Abs(x)
	if x > f.HalfLength {
		x = f.HalfLength
	}
	return domain.Vec3{X: end.Sign() * x, Y: -f.HalfWidth}
}

// Depth - насколько далеко точка продвинулась к концу end (положительно на его половине).
func Depth(pos domain.Vec3, end domain.Side) float64 {
	return pos.X * end.Sign()
}
