package framegraph

// Edge records live in one flat slice laid out in concentric shells so the
// slice only ever grows at the end when a frame is appended. With from
// along the columns and to along the rows:
//
//	     1  2  3  4  <- from
//	 1  00 01 04 09
//	 2  03 02 05 10
//	 3  08 07 06 11
//	 4  15 14 13 12
//	 ^ to
//
// Shell n holds cells 0..n²-1, so growing from n-1 to n frames appends
// 2n-1 cells and leaves every existing index unchanged.

// cellIndex returns the storage index of the edge from -> to. Both are
// 1-based frame indices.
func cellIndex(from, to int) int {
	if to <= from {
		return (from-1)*(from-1) + (to - 1)
	}
	return to*to - from
}

// transposeIndex maps the cell of from -> to onto the cell of to -> from.
// Applying it twice returns the original index.
func transposeIndex(x int) int {
	shell := isqrt(x) + 1
	diagonal := shell*shell - shell
	return 2*diagonal - x
}

// isqrt returns floor(sqrt(x)) for x >= 0 without floating point rounding.
func isqrt(x int) int {
	if x < 2 {
		return x
	}
	r := x
	y := (r + 1) / 2
	for y < r {
		r = y
		y = (r + x/r) / 2
	}
	return r
}
