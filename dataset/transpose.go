package dataset

// Transpose 转置矩阵，返回新分配的副本，不与输入共享底层数组。
// 输入按行等长处理，以第一行长度为列数；空输入返回 nil。
func Transpose(in [][]float64) [][]float64 {
	if len(in) == 0 {
		return nil
	}
	rows, cols := len(in), len(in[0])
	out := make([][]float64, cols)
	for j := range out {
		out[j] = make([]float64, rows)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j][i] = in[i][j]
		}
	}
	return out
}
