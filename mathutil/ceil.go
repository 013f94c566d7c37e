package mathutil

import (
	"golang.org/x/exp/constraints"
)

// CeilDiv divides a by b rounding towards positive infinity.
func CeilDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if r := a % b; r != 0 && (r < 0) == (b < 0) {
		q++
	}
	return q
}
