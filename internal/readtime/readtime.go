// Package readtime estimates how long a piece of text takes to read.
package readtime

import "strings"

// wordsPerMinute is the assumed reading speed.
const wordsPerMinute = 200

// Estimate returns the reading time of text in whole minutes, rounded up.
// Empty or whitespace-only text still takes one minute.
func Estimate(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 1
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
