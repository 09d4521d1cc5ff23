package typoutil

// DamerauLevenshteinDistance computes the Damerau-Levenshtein distance
// between two strings: the minimum number of insertions, deletions,
// substitutions, or adjacent transpositions required to change one word
// into the other. Works on runes so Unicode input is handled correctly.
func DamerauLevenshteinDistance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	matrix := make([][]int, lenA+1)
	for i := range matrix {
		matrix[i] = make([]int, lenB+1)
	}

	for i := 0; i <= lenA; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}

			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			matrix[i][j] = min3(deletion, insertion, substitution)

			// Transposition of adjacent characters
			if i > 1 && j > 1 && runesA[i-1] == runesB[j-2] && runesA[i-2] == runesB[j-1] {
				if transposition := matrix[i-2][j-2] + 1; transposition < matrix[i][j] {
					matrix[i][j] = transposition
				}
			}
		}
	}

	return matrix[lenA][lenB]
}

// WithinDistance reports whether the edit distance between a and b is at
// most maxDist, with a cheap length-difference cutoff first.
func WithinDistance(a, b string, maxDist int) bool {
	lenDiff := len([]rune(a)) - len([]rune(b))
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > maxDist {
		return false
	}
	return DamerauLevenshteinDistance(a, b) <= maxDist
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
