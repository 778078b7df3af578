// Copyright 2013 Lawrence Kesteloot

package cmd

// Sorting of file names with numbers in them, so that disk sets list in the
// order they're inserted.

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Return -1, 0, or 1 if a is less than, equal to, or greater than b. Runs of
// digits compare by value and letters compare without case, so "disk2.st"
// is less than "Disk10.st". Ties are broken by the plain byte order.
func compareNames(a, b string) int {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			var na, nb uint64
			na, i = digitRun(a, i)
			nb, j = digitRun(b, j)
			if na != nb {
				return sign(int64(na) - int64(nb))
			}
			continue
		}

		ra, sizeA := utf8.DecodeRuneInString(a[i:])
		rb, sizeB := utf8.DecodeRuneInString(b[j:])
		i += sizeA
		j += sizeB

		if la, lb := unicode.ToLower(ra), unicode.ToLower(rb); la != lb {
			return sign(int64(la) - int64(lb))
		}
	}

	// Whichever ran out first is less.
	if d := (len(a) - i) - (len(b) - j); d != 0 {
		return sign(int64(d))
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Value of the digits at s[i:] and the position after them.
func digitRun(s string, i int) (uint64, int) {
	var value uint64
	for i < len(s) && isDigit(s[i]) {
		value = value*10 + uint64(s[i]-'0')
		i++
	}
	return value, i
}

func sign(d int64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

// A string slice that implements sort.Interface with compareNames.
type nameSlice []string

func (s nameSlice) Len() int           { return len(s) }
func (s nameSlice) Less(i, j int) bool { return compareNames(s[i], s[j]) < 0 }
func (s nameSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Sort names in place, putting numbers in their proper order.
func sortNumerically(names []string) {
	sort.Sort(nameSlice(names))
}
