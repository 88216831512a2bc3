package warehouse

import (
	"regexp"
	"strings"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	letterRun = regexp.MustCompile(`[a-zA-Z]+`)
	digitRun  = regexp.MustCompile(`[0-9]+`)
)

// SearchTerms splits a node-id query such as "wh-01" into its first letter
// run ("WH") and first digit run ("01"). A store matches nodes whose nodeId
// contains both, so "wh01" finds WH0001.
func SearchTerms(query string) (alpha, digits string) {
	s := nonAlnum.ReplaceAllString(query, "")
	return strings.ToUpper(letterRun.FindString(s)), digitRun.FindString(s)
}
