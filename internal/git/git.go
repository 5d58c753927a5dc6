/*
* Wraps access to data needed from Git.
*
* We invoke Git directly as a subprocess and parse the output rather than using
* git2go/libgit2.
 */
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sinclairtarget/git-owner/internal/git/cmd"
	"github.com/sinclairtarget/git-owner/internal/iterutils"
)

// Which field identifies an author.
type Identity int

const (
	EmailIdentity Identity = iota
	NameIdentity
)

func (id Identity) String() string {
	switch id {
	case EmailIdentity:
		return "email"
	case NameIdentity:
		return "name"
	default:
		return "unknown"
	}
}

// Names of the queries we run, used in error messages.
const (
	LogQuery   = "git log"
	BlameQuery = "git blame"
)

// A failure of one of the queries we run against the repository for a file.
type QueryError struct {
	Query string
	Path  string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Query, e.Path, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Returns the exit code of the git subprocess if the query failed because git
// exited non-zero, or -1 otherwise.
func (e *QueryError) ExitCode() int {
	var subprocessErr cmd.SubprocessErr
	if errors.As(e.Err, &subprocessErr) {
		return subprocessErr.ExitCode
	}

	return -1
}

// A working directory inside a Git repository.
//
// Paths given to methods are interpreted relative to Dir, like they would be by
// git itself. An empty Dir means the current working directory.
type Repo struct {
	Dir string
}

// Returns the absolute path to the root of the repository.
func (r Repo) Root(ctx context.Context) (_ string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("failed to get git root: %w", err)
		}
	}()

	subprocess, err := cmd.RunRevParseTopLevel(ctx, r.Dir)
	if err != nil {
		return "", err
	}

	root, err := subprocess.StdoutText()
	if err != nil {
		return "", err
	}

	err = subprocess.Wait()
	if err != nil {
		return "", err
	}

	return root, nil
}

// Returns one author identifier per commit that touched the file at path,
// following renames, in the order git log returns them (newest first).
func (r Repo) LogAuthors(
	ctx context.Context,
	path string,
	id Identity,
) (_ []string, err error) {
	defer func() {
		if err != nil {
			err = &QueryError{Query: LogQuery, Path: path, Err: err}
		}
	}()

	start := time.Now()

	subprocess, err := cmd.RunLog(ctx, r.Dir, path, id == NameIdentity)
	if err != nil {
		return nil, err
	}

	lines, finish := subprocess.StdoutLines()
	authors := ParseLogAuthors(lines)

	err = finish()
	if err != nil {
		subprocess.Wait()
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	logger().Debug(
		"read log authors",
		"path",
		path,
		"commits",
		len(authors),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)
	return authors, nil
}

// Returns one author identifier per line of the file at path as it is in the
// working tree.
//
// ignoreRevsFile may be empty. Otherwise it names a file of revisions blame
// should look past.
func (r Repo) BlameAuthors(
	ctx context.Context,
	path string,
	id Identity,
	ignoreRevsFile string,
) (_ []string, err error) {
	defer func() {
		if err != nil {
			err = &QueryError{Query: BlameQuery, Path: path, Err: err}
		}
	}()

	start := time.Now()

	subprocess, err := cmd.RunBlame(ctx, r.Dir, path, ignoreRevsFile)
	if err != nil {
		return nil, err
	}

	lines, finish := subprocess.StdoutLines()

	blamed, err := iterutils.Collect(ParseBlame(lines))
	if err != nil {
		// Git's own failure is the more useful error if there is one
		if waitErr := subprocess.Wait(); waitErr != nil {
			return nil, waitErr
		}

		return nil, err
	}

	err = finish()
	if err != nil {
		subprocess.Wait()
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	authors := make([]string, 0, len(blamed))
	for _, line := range blamed {
		authors = append(authors, line.Key(id))
	}

	logger().Debug(
		"read blame authors",
		"path",
		path,
		"lines",
		len(authors),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)
	return authors, nil
}
