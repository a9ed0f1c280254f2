package utils

import (
	"math"
)

// GetSortedPositionValue 返回arr排序后位于pos的值。会打乱arr的顺序
func GetSortedPositionValue(arr []float64, pos int) float64 {
	if pos < 0 || pos >= len(arr) {
		return math.NaN()
	}

	l := 0
	r := len(arr) - 1
	for idx := Partition(arr, l, r); idx != pos && l < r; idx = Partition(arr, l, r) {
		if idx < pos {
			l = idx + 1
		} else if idx > pos {
			r = idx - 1
		}
	}

	return arr[pos]
}

func Partition(arr []float64, l, r int) int {
	slice := arr[l : r+1]

	if len(slice) == 0 {
		return 0
	}
	m := len(slice) / 2
	temp := slice[0]
	slice[0] = slice[m]
	slice[m] = temp
	pivot := slice[0]

	i := 0
	j := len(slice) - 1

	for i < j {
		for i < j && slice[j] > pivot {
			j--
		}
		slice[i] = slice[j]

		for i < j && slice[i] <= pivot {
			i++
		}
		slice[j] = slice[i]
	}
	slice[i] = pivot

	return l + i
}

// Percentile 线性插值的百分位数，p取值[0, 100]。不修改arr
func Percentile(arr []float64, p float64) float64 {
	if len(arr) == 0 || p < 0 || p > 100 {
		return math.NaN()
	}
	buf := make([]float64, len(arr))
	copy(buf, arr)

	rank := p / 100 * float64(len(buf)-1)
	lower := int(math.Floor(rank))
	frac := rank - float64(lower)
	lowVal := GetSortedPositionValue(buf, lower)
	if frac == 0 || lower+1 >= len(buf) {
		return lowVal
	}
	// lower之后的元素都不小于lowVal，其中最小的即为下一个位置的值
	highVal := math.Inf(1)
	for _, v := range buf[lower+1:] {
		if v < highVal {
			highVal = v
		}
	}
	return lowVal + frac*(highVal-lowVal)
}
