// Estimates who owns a file from the signals git gives us.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sinclairtarget/git-owner/internal/concurrent"
	"github.com/sinclairtarget/git-owner/internal/config"
	"github.com/sinclairtarget/git-owner/internal/git"
	"github.com/sinclairtarget/git-owner/internal/tally"
)

// Returned (wrapped in a git.QueryError) when a query succeeds but attributes
// nothing to anyone, e.g. for an empty or untracked file.
var ErrNoContributors = errors.New("no contributors found")

// Where contributions come from. git.Repo is the real implementation.
type Source interface {
	// One author per commit touching the file, following renames.
	LogAuthors(ctx context.Context, path string, id git.Identity) ([]string, error)
	// One author per line currently in the file.
	BlameAuthors(
		ctx context.Context,
		path string,
		id git.Identity,
		ignoreRevsFile string,
	) ([]string, error)
}

type Estimate struct {
	Path    string
	Mode    config.Mode
	Ranking tally.Ranking

	// Set instead of Ranking when analysis failed and we were told what owner
	// to report in that case. Err holds the failure.
	Placeholder string
	Err         error
}

// An estimate standing in for one we could not make.
func NewPlaceholder(
	path string,
	mode config.Mode,
	placeholder string,
	cause error,
) Estimate {
	return Estimate{
		Path:        path,
		Mode:        mode,
		Placeholder: placeholder,
		Err:         cause,
	}
}

func (e Estimate) IsPlaceholder() bool {
	return len(e.Placeholder) > 0
}

// Returns the most likely owner.
func (e Estimate) Owner() (string, bool) {
	if e.IsPlaceholder() {
		return e.Placeholder, true
	}

	top, ok := e.Ranking.Top()
	return top.Author, ok
}

type Estimator struct {
	Source         Source
	Mode           config.Mode
	Identity       git.Identity
	IgnoreRevsFile string // Passed to blame if not empty
}

func New(source Source, c config.Config, ignoreRevsFile string) Estimator {
	return Estimator{
		Source:         source,
		Mode:           c.Mode,
		Identity:       c.Identity,
		IgnoreRevsFile: ignoreRevsFile,
	}
}

// Estimates the owner of the file at path.
//
// In combined mode both signals are gathered at the same time. If either fails
// the whole estimate fails; we never fall back to a single signal.
func (e Estimator) Estimate(ctx context.Context, path string) (_ Estimate, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error estimating owner of %s: %w", path, err)
		}
	}()

	start := time.Now()

	var shares tally.Shares
	switch e.Mode {
	case config.LogMode:
		shares, err = e.logShares(ctx, path)
	case config.BlameMode:
		shares, err = e.blameShares(ctx, path)
	case config.CombinedMode:
		shares, err = e.combinedShares(ctx, path)
	default:
		panic("unrecognized mode in switch statement")
	}
	if err != nil {
		return Estimate{}, err
	}

	logger().Debug(
		"estimated owner",
		"path",
		path,
		"mode",
		e.Mode,
		"duration_ms",
		time.Since(start).Milliseconds(),
	)

	return Estimate{
		Path:    path,
		Mode:    e.Mode,
		Ranking: tally.Rank(shares),
	}, nil
}

func (e Estimator) logShares(ctx context.Context, path string) (tally.Shares, error) {
	authors, err := e.Source.LogAuthors(ctx, path, e.Identity)
	if err != nil {
		return tally.Shares{}, err
	}

	if len(authors) == 0 {
		return tally.Shares{}, &git.QueryError{
			Query: git.LogQuery,
			Path:  path,
			Err:   ErrNoContributors,
		}
	}

	shares := tally.Count(authors)
	logger().Debug("contributors in log", "path", path, "shares", shares)
	return shares, nil
}

func (e Estimator) blameShares(ctx context.Context, path string) (tally.Shares, error) {
	authors, err := e.Source.BlameAuthors(ctx, path, e.Identity, e.IgnoreRevsFile)
	if err != nil {
		return tally.Shares{}, err
	}

	if len(authors) == 0 {
		return tally.Shares{}, &git.QueryError{
			Query: git.BlameQuery,
			Path:  path,
			Err:   ErrNoContributors,
		}
	}

	shares := tally.Count(authors)
	logger().Debug("contributors in blame", "path", path, "shares", shares)
	return shares, nil
}

func (e Estimator) combinedShares(
	ctx context.Context,
	path string,
) (tally.Shares, error) {
	g, ctx := errgroup.WithContext(ctx)

	fromLog := concurrent.Go(g, func() (tally.Shares, error) {
		return e.logShares(ctx, path)
	})
	fromBlame := concurrent.Go(g, func() (tally.Shares, error) {
		return e.blameShares(ctx, path)
	})

	err := g.Wait()
	if err != nil {
		return tally.Shares{}, err
	}

	logShares, _ := fromLog.Get()
	blameShares, _ := fromBlame.Get()

	return tally.Blend(logShares, blameShares), nil
}
