/*
* Handles invoking Git as a subprocess.
 */
package cmd

import (
	"context"
	"fmt"
	"slices"
)

const (
	emailLogFormat = "--format=%aE"
	nameLogFormat  = "--format=%aN"
)

// Runs git log over the full history of a single file, following renames.
//
// Prints one line per commit containing only the author identifier. The
// mailmap-aware placeholders are used so that identities agree with the ones
// git blame reports.
func RunLog(
	ctx context.Context,
	dir string,
	path string,
	useNames bool,
) (*Subprocess, error) {
	format := emailLogFormat
	if useNames {
		format = nameLogFormat
	}

	args := []string{
		"log",
		"--follow",
		"--no-show-signature",
		format,
		"--",
		path,
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git log: %w", err)
	}

	return subprocess, nil
}

// Runs git blame, emitting the full commit metadata for every line.
//
// ignoreRevsFile may be empty.
func RunBlame(
	ctx context.Context,
	dir string,
	path string,
	ignoreRevsFile string,
) (*Subprocess, error) {
	baseArgs := []string{
		"blame",
		"--line-porcelain",
	}

	var args []string
	if len(ignoreRevsFile) > 0 {
		args = slices.Concat(
			baseArgs,
			[]string{"--ignore-revs-file", ignoreRevsFile},
			[]string{"--", path},
		)
	} else {
		args = slices.Concat(baseArgs, []string{"--", path})
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git blame: %w", err)
	}

	return subprocess, nil
}

func RunRevParseTopLevel(ctx context.Context, dir string) (*Subprocess, error) {
	var args = []string{"rev-parse", "--show-toplevel"}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git rev-parse: %w", err)
	}

	return subprocess, nil
}
