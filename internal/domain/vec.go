package domain

import "math"

// Vec3 точка или вектор в координатах поля (метры).
// X - вдоль длины поля, Y - вдоль ширины, Z - высота.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Len длина вектора в пространстве.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Len2D длина проекции на плоскость поля.
func (v Vec3) Len2D() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist2D расстояние до другой точки по плоскости поля (высота игнорируется).
func (v Vec3) Dist2D(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Flat обнуляет высоту.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Y: v.Y}
}

// IsFinite false, если в координатах NaN или Inf (битый кадр физики).
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// AngleBetween2D угол между векторами в плоскости поля, градусы [0, 180].
// ok=false, если один из векторов нулевой - угол не определен.
func AngleBetween2D(a, b Vec3) (float64, bool) {
	la, lb := a.Len2D(), b.Len2D()
	if la < 1e-9 || lb < 1e-9 {
		return 0, false
	}
	cos := (a.X*b.X + a.Y*b.Y) / (la * lb)
	// Защита от погрешности округления
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// NormalizeAngle приводит угол в градусах к диапазону (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
