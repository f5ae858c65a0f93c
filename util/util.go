package util

import (
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// SortedKeys is GetKeys in ascending order.
func SortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	slices.Sort(keys)
	return keys
}

func Min[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}

// Quantize rounds v onto a grid of 1/steps.
func Quantize(v float64, steps float64) float64 {
	return math.Round(v*steps) / steps
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0777)
}
