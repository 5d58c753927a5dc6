/*
* Utility functions for formatting output.
 */
package format

import "fmt"

// Rank position, 1-based, padded so single-digit ranks line up.
func Rank(position int) string {
	return fmt.Sprintf("#%2d", position)
}

// Share as a percentage with one decimal place.
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Header printed above each file's report when there are several.
func PathHeader(path string) string {
	return fmt.Sprintf("-- %s --", path)
}
