package subcommands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sinclairtarget/git-owner/internal/config"
	"github.com/sinclairtarget/git-owner/internal/estimate"
	gitconfig "github.com/sinclairtarget/git-owner/internal/git/config"
	"github.com/sinclairtarget/git-owner/internal/report"
)

// What Owner needs from the repository. Implemented by git.Repo.
type Repo interface {
	estimate.Source
	Root(ctx context.Context) (string, error)
}

// Returned by Owner when some files could not be analyzed and there was no
// placeholder to report instead.
type FailedFilesError struct {
	Paths []string
	Errs  []error
}

func (e *FailedFilesError) Error() string {
	return fmt.Sprintf(
		"could not estimate owner of %d file(s): %s",
		len(e.Paths),
		strings.Join(e.Paths, ", "),
	)
}

func (e *FailedFilesError) Unwrap() []error {
	return e.Errs
}

// Estimates and reports the owner of each file, one file at a time.
//
// A file that can't be analyzed is reported with the configured placeholder
// owner if there is one. Otherwise the failure is logged, the remaining files
// are still processed and a *FailedFilesError is returned at the end.
func Owner(
	ctx context.Context,
	repo Repo,
	files []string,
	c config.Config,
	out io.Writer,
) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"owner\": %w", err)
		}
	}()

	logger().Debug(
		"called Owner()",
		"files",
		files,
		"mode",
		c.Mode,
		"identity",
		c.Identity,
		"mostLikely",
		c.MostLikely,
		"placeholder",
		c.Placeholder,
		"format",
		c.Format,
		"ignoreRevs",
		c.IgnoreRevs,
	)

	start := time.Now()

	ignoreRevsFile := supplementalIgnoreRevs(ctx, repo, c.IgnoreRevs)
	estimator := estimate.New(repo, c, ignoreRevsFile)
	w := report.NewWriter(out, c, len(files))

	var failed FailedFilesError
	for _, path := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		e, err := estimator.Estimate(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if !c.HasPlaceholder() {
				logger().Error(err.Error())
				failed.Paths = append(failed.Paths, path)
				failed.Errs = append(failed.Errs, err)
				continue
			}

			logger().Warn(
				"using placeholder owner",
				"path",
				path,
				"placeholder",
				c.Placeholder,
				"err",
				err,
			)
			e = estimate.NewPlaceholder(path, c.Mode, c.Placeholder, err)
		}

		err = w.Write(e)
		if err != nil {
			return err
		}
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	logger().Debug(
		"finished owner",
		"files",
		len(files),
		"failed",
		len(failed.Paths),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)

	if len(failed.Paths) > 0 {
		return &failed
	}

	return nil
}

// Returns the path to the repository's ignore-revs file if we were asked to
// honor it and it exists. Problems finding it are not fatal; blame just runs
// without it.
func supplementalIgnoreRevs(ctx context.Context, repo Repo, wanted bool) string {
	root, err := repo.Root(ctx)
	if err != nil {
		logger().Debug("could not find repository root", "err", err)
		if wanted {
			logger().Warn("ignoring --ignore-revs outside of a git repository")
		}
		return ""
	}

	files, err := gitconfig.DetectSupplementalFiles(root)
	if err != nil {
		logger().Warn("could not check for supplemental files", "err", err)
		return ""
	}

	if files.HasMailmap() {
		logger().Debug("identities remapped by mailmap", "path", files.RepoMailmapPath)
	}

	if !wanted {
		return ""
	}

	if !files.HasIgnoreRevs() {
		logger().Warn("no .git-blame-ignore-revs file found", "root", root)
		return ""
	}

	revs, err := files.IgnoreRevs()
	if err != nil {
		logger().Warn("could not read ignore-revs file", "err", err)
		return ""
	}

	logger().Info(
		"ignoring revisions in blame",
		"path",
		files.IgnoreRevsPath,
		"count",
		len(revs),
	)
	return files.IgnoreRevsPath
}
