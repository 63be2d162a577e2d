package irp

import (
	"fmt"
	"math"
	"regexp"
)

// CalcSiteDistances builds the site-by-site distance matrix from coordinates.
func CalcSiteDistances(x, y []float64) [][]float64 {
	n := len(x)
	result := make([][]float64, n)
	for v := 0; v < n; v++ {
		result[v] = make([]float64, n)
	}
	for v := 0; v < n; v++ {
		for w := 0; w < v; w++ {
			dist := math.Sqrt(math.Pow(x[v]-x[w], 2) + math.Pow(y[v]-y[w], 2))
			result[v][w] = dist
			result[w][v] = dist
		}
	}
	return result
}

// Permutations enumerates all permutations of 0..n-1 with Heap's algorithm,
// calling visit with each one. The slice is reused between calls; visit can
// return false to stop the enumeration early.
func Permutations(n int, visit func(perm []int) bool) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if !visit(perm) {
		return
	}
	c := make([]int, n)
	i := 0
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[c[i]], perm[i] = perm[i], perm[c[i]]
			}
			if !visit(perm) {
				return
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}

func Print2DArray(a [][]float64) string {
	res := ""
	for _, x := range a {
		for _, y := range x {
			res += fmt.Sprintf("%g,", y)
		}
		res += fmt.Sprintln("")
	}
	return res
}

func SanitizeJsonArrayLineBreaks(json string) string {
	res := fmt.Sprintf("%s", json)
	var numbers = regexp.MustCompile(`\s*([-]?[0-9]+(\.[0-9]+)?),\s+([-]?[0-9]+(\.[0-9]+)?)(,)?`)
	var brackets = regexp.MustCompile(`\[(([-]?[0-9]+(\.[0-9]+)?,)+[-]?[0-9]+(\.[0-9]+)?)\s+\](,?)(\s+)`)
	for numbers.MatchString(res) {
		res = numbers.ReplaceAllString(res, "$1,$3$5")
	}
	for brackets.MatchString(res) {
		res = brackets.ReplaceAllString(res, "[$1]$5$6")
	}
	return res
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
