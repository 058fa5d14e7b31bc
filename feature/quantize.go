package feature

import (
	"math"

	"github.com/rushteam/treerank/core"
)

// Quantize 用训练期校准参数把原始特征值转成整数量化码。
//
//	对数尺度: round(ln(value - min + 1) * factor)
//	线性尺度: round((value - min) * factor)
//
// round 为四舍五入（半数向上取整），与生成校准参数的训练端一致。
// 对数尺度下 value - min + 1 <= 0 返回 CALIBRATION 错误。
func Quantize(value float64, s Statistics) (int64, error) {
	var scaled float64
	if s.OnLogScale {
		arg := value - s.Min + 1
		if arg <= 0 {
			return 0, core.Errorf(core.ModuleFeature, core.ErrorCodeCalibration,
				"value %g below log-scale domain (min=%g)", value, s.Min)
		}
		scaled = math.Log(arg) * s.Factor
	} else {
		scaled = (value - s.Min) * s.Factor
	}
	return roundHalfUp(scaled), nil
}

// roundHalfUp 超出 int64 范围时饱和，保证量化码单调。
func roundHalfUp(x float64) int64 {
	r := math.Floor(x + 0.5)
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	if r <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(r)
}
