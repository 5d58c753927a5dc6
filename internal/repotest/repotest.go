// Helpers for building throwaway repositories to run tests against.
package repotest

import (
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type Author struct {
	Name  string
	Email string
}

// A repository in a temporary directory that is removed when the test ends.
//
// Commits are made with go-git so the tests don't depend on the git config of
// whoever runs them. Commit times start at a fixed date and advance by an hour
// per commit so history order is deterministic.
type Repo struct {
	Dir string

	t     testing.TB
	repo  *gogit.Repository
	wt    *gogit.Worktree
	clock time.Time
}

// Skips the test if there is no git binary to run queries with.
func RequireGit(t testing.TB) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found in PATH")
	}
}

func New(t testing.TB) *Repo {
	t.Helper()

	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("could not init repo: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("could not get worktree: %v", err)
	}

	return &Repo{
		Dir:   dir,
		t:     t,
		repo:  repo,
		wt:    wt,
		clock: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Writes the files into the worktree without committing them.
func (r *Repo) WriteFiles(files map[string]string) {
	r.t.Helper()

	for _, path := range slices.Sorted(maps.Keys(files)) {
		fullPath := filepath.Join(r.Dir, path)

		err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
		if err != nil {
			r.t.Fatalf("could not create directory for %s: %v", path, err)
		}

		err = os.WriteFile(fullPath, []byte(files[path]), 0o644)
		if err != nil {
			r.t.Fatalf("could not write %s: %v", path, err)
		}
	}
}

// Writes the files and commits them as author. Returns the commit hash.
func (r *Repo) Commit(author Author, msg string, files map[string]string) string {
	r.t.Helper()

	r.WriteFiles(files)

	for _, path := range slices.Sorted(maps.Keys(files)) {
		_, err := r.wt.Add(path)
		if err != nil {
			r.t.Fatalf("could not stage %s: %v", path, err)
		}
	}

	return r.commit(author, msg)
}

// Renames a file and commits the rename as author. Returns the commit hash.
func (r *Repo) Move(author Author, msg string, from string, to string) string {
	r.t.Helper()

	_, err := r.wt.Move(from, to)
	if err != nil {
		r.t.Fatalf("could not move %s to %s: %v", from, to, err)
	}

	return r.commit(author, msg)
}

func (r *Repo) commit(author Author, msg string) string {
	r.t.Helper()

	r.clock = r.clock.Add(time.Hour)
	sig := &object.Signature{
		Name:  author.Name,
		Email: author.Email,
		When:  r.clock,
	}

	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		r.t.Fatalf("could not commit: %v", err)
	}

	return hash.String()
}
