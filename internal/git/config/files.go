package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	rev "github.com/sinclairtarget/git-owner/internal/git/revision"
)

// Not .gitconfig files, but still configure Git behavior
type SupplementalFiles struct {
	RepoMailmapPath string
	IgnoreRevsPath  string
}

func (sf SupplementalFiles) HasMailmap() bool {
	return len(sf.RepoMailmapPath) > 0
}

func (sf SupplementalFiles) HasIgnoreRevs() bool {
	return len(sf.IgnoreRevsPath) > 0
}

// Get git blame ignored revisions
func (sf SupplementalFiles) IgnoreRevs() (_ []string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error reading git blame ignore revs: %w", err)
		}
	}()

	var revs []string

	if !sf.HasIgnoreRevs() {
		return revs, nil
	}

	f, err := os.Open(sf.IgnoreRevsPath)
	if err != nil {
		return revs, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Keeps only full hashes, so comments and blank lines drop out
		if rev.IsFullHash(line) {
			revs = append(revs, line)
		}
	}

	err = scanner.Err()
	if err != nil {
		return revs, err
	}

	return revs, nil
}
