package revision

import (
	"regexp"
)

var commitHashRegexp *regexp.Regexp
var objectIDRegexp *regexp.Regexp

func init() {
	commitHashRegexp = regexp.MustCompile(`^\^?[a-f0-9]+$`)
	objectIDRegexp = regexp.MustCompile(`^[a-f0-9]+$`)
}

// Returns true if this is a (full-length) Git revision hash, false otherwise.
//
// We also need to handle a hash with "^" in front.
func IsFullHash(s string) bool {
	matched := commitHashRegexp.MatchString(s)
	return matched && (len(s) == 40 || len(s) == 41)
}

// Returns true if s is a full object ID as printed in porcelain output. That is
// 40 hex digits for SHA-1 repositories and 64 for SHA-256 ones.
func IsObjectID(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}

	return objectIDRegexp.MatchString(s)
}
