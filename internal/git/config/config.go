/*
* Handles files that live in the repository and change how Git attributes
* authorship.
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// NOTE: We do NOT respect the mailmap.file setting in the git config here. Git
// applies it on its own; we only look for the repo-local file so we can report
// that identities are being remapped.
func repoMailmapPath(gitRootPath string) string {
	path := filepath.Join(gitRootPath, ".mailmap")
	return path
}

// NOTE: We do NOT respect the blame.ignoreRevsFile option in the git config
// here, we just assume the conventional path for this file in the repo.
//
// The option can be specified multiple times which makes it a tad complicated.
func ignoreRevsPath(gitRootPath string) string {
	path := filepath.Join(gitRootPath, ".git-blame-ignore-revs")
	return path
}

// Checks to see whether the files exist on disk or not
func DetectSupplementalFiles(
	gitRootPath string,
) (_ SupplementalFiles, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf(
				"error while checking for supplemental configuration files: %w",
				err,
			)
		}
	}()

	var files SupplementalFiles

	mailmapPath := repoMailmapPath(gitRootPath)
	_, err = os.Stat(mailmapPath)
	if err == nil {
		files.RepoMailmapPath = mailmapPath
	} else if !errors.Is(err, os.ErrNotExist) {
		return files, err
	}

	ignoreRevsPath := ignoreRevsPath(gitRootPath)
	_, err = os.Stat(ignoreRevsPath)
	if err == nil {
		files.IgnoreRevsPath = ignoreRevsPath
	} else if !errors.Is(err, os.ErrNotExist) {
		return files, err
	}

	logger().Debug(
		"detected supplemental files",
		"mailmap",
		files.RepoMailmapPath,
		"ignoreRevs",
		files.IgnoreRevsPath,
	)
	return files, nil
}
