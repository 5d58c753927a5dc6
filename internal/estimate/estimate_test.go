package estimate_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sinclairtarget/git-owner/internal/config"
	"github.com/sinclairtarget/git-owner/internal/estimate"
	"github.com/sinclairtarget/git-owner/internal/git"
	"github.com/sinclairtarget/git-owner/internal/tally"
)

var approx = cmpopts.EquateApprox(0, 0.001)

type fakeSource struct {
	log      []string
	blame    []string
	logErr   error
	blameErr error

	// If set, blame blocks until the context is cancelled.
	blameHangs bool

	mu             sync.Mutex
	logCalls       int
	blameCalls     int
	identity       git.Identity
	ignoreRevsFile string
}

func (s *fakeSource) LogAuthors(
	ctx context.Context,
	path string,
	id git.Identity,
) ([]string, error) {
	s.mu.Lock()
	s.logCalls += 1
	s.identity = id
	s.mu.Unlock()

	if s.logErr != nil {
		return nil, &git.QueryError{Query: git.LogQuery, Path: path, Err: s.logErr}
	}

	return s.log, nil
}

func (s *fakeSource) BlameAuthors(
	ctx context.Context,
	path string,
	id git.Identity,
	ignoreRevsFile string,
) ([]string, error) {
	s.mu.Lock()
	s.blameCalls += 1
	s.identity = id
	s.ignoreRevsFile = ignoreRevsFile
	s.mu.Unlock()

	if s.blameHangs {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if s.blameErr != nil {
		return nil, &git.QueryError{Query: git.BlameQuery, Path: path, Err: s.blameErr}
	}

	return s.blame, nil
}

func estimator(source estimate.Source, mode config.Mode) estimate.Estimator {
	return estimate.Estimator{
		Source:   source,
		Mode:     mode,
		Identity: git.EmailIdentity,
	}
}

func TestEstimateLogOnly(t *testing.T) {
	source := &fakeSource{
		log:   []string{"a@x.com", "a@x.com", "b@x.com"},
		blame: []string{"c@x.com"},
	}

	e, err := estimator(source, config.LogMode).Estimate(
		context.Background(),
		"foo.txt",
	)
	if err != nil {
		t.Fatalf("Estimate() returned error: %v", err)
	}

	expected := tally.Ranking{
		{Author: "a@x.com", Fraction: 0.667},
		{Author: "b@x.com", Fraction: 0.333},
	}
	if diff := cmp.Diff(expected, e.Ranking, approx); diff != "" {
		t.Errorf("ranking is wrong:\n%s", diff)
	}

	if source.blameCalls != 0 {
		t.Errorf("expected blame not to be queried but it was")
	}

	if e.Path != "foo.txt" || e.Mode != config.LogMode {
		t.Errorf("unexpected estimate metadata: %+v", e)
	}
}

func TestEstimateBlameOnly(t *testing.T) {
	source := &fakeSource{
		log:   []string{"c@x.com"},
		blame: []string{"a@x.com", "b@x.com", "b@x.com", "b@x.com"},
	}

	e, err := estimator(source, config.BlameMode).Estimate(
		context.Background(),
		"foo.txt",
	)
	if err != nil {
		t.Fatalf("Estimate() returned error: %v", err)
	}

	expected := tally.Ranking{
		{Author: "b@x.com", Fraction: 0.75},
		{Author: "a@x.com", Fraction: 0.25},
	}
	if diff := cmp.Diff(expected, e.Ranking, approx); diff != "" {
		t.Errorf("ranking is wrong:\n%s", diff)
	}

	if source.logCalls != 0 {
		t.Errorf("expected log not to be queried but it was")
	}
}

func TestEstimateCombined(t *testing.T) {
	source := &fakeSource{
		log:   []string{"a@x.com", "a@x.com", "b@x.com", "b@x.com"},
		blame: []string{"b@x.com", "c@x.com", "c@x.com", "c@x.com"},
	}

	e, err := estimator(source, config.CombinedMode).Estimate(
		context.Background(),
		"foo.txt",
	)
	if err != nil {
		t.Fatalf("Estimate() returned error: %v", err)
	}

	expected := tally.Ranking{
		{Author: "b@x.com", Fraction: 0.375},
		{Author: "c@x.com", Fraction: 0.375},
		{Author: "a@x.com", Fraction: 0.25},
	}
	if diff := cmp.Diff(expected, e.Ranking, approx); diff != "" {
		t.Errorf("ranking is wrong:\n%s", diff)
	}

	if source.logCalls != 1 || source.blameCalls != 1 {
		t.Errorf(
			"expected one query of each kind but got %d log and %d blame",
			source.logCalls,
			source.blameCalls,
		)
	}
}

func TestEstimateCombinedSumsToOne(t *testing.T) {
	source := &fakeSource{
		log:   []string{"a", "b", "c"},
		blame: []string{"d", "d", "a", "e", "f", "g", "a"},
	}

	e, err := estimator(source, config.CombinedMode).Estimate(
		context.Background(),
		"foo.txt",
	)
	if err != nil {
		t.Fatalf("Estimate() returned error: %v", err)
	}

	total := 0.0
	for _, share := range e.Ranking {
		total += share.Fraction
	}

	if diff := cmp.Diff(1.0, total, approx); diff != "" {
		t.Errorf("shares do not sum to one:\n%s", diff)
	}
}

func TestEstimateNoContributors(t *testing.T) {
	tests := []struct {
		name   string
		mode   config.Mode
		source *fakeSource
		query  string
	}{
		{
			"log_only_empty",
			config.LogMode,
			&fakeSource{log: []string{}},
			git.LogQuery,
		},
		{
			"blame_only_empty",
			config.BlameMode,
			&fakeSource{blame: []string{}},
			git.BlameQuery,
		},
		{
			"combined_empty_blame",
			config.CombinedMode,
			&fakeSource{log: []string{"a@x.com"}, blame: []string{}},
			git.BlameQuery,
		},
		{
			"combined_empty_log",
			config.CombinedMode,
			&fakeSource{log: []string{}, blame: []string{"a@x.com"}},
			git.LogQuery,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := estimator(test.source, test.mode).Estimate(
				context.Background(),
				"empty.txt",
			)
			if !errors.Is(err, estimate.ErrNoContributors) {
				t.Fatalf("expected ErrNoContributors but got %v", err)
			}

			var queryErr *git.QueryError
			if !errors.As(err, &queryErr) {
				t.Fatalf("expected QueryError but got %T", err)
			}

			if queryErr.Query != test.query {
				t.Errorf("expected query %q but got %q", test.query, queryErr.Query)
			}
		})
	}
}

func TestEstimateCombinedFailsIfEitherFails(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		source *fakeSource
	}{
		{
			"log_fails",
			&fakeSource{logErr: boom, blame: []string{"a@x.com"}},
		},
		{
			"blame_fails",
			&fakeSource{log: []string{"a@x.com"}, blameErr: boom},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := estimator(test.source, config.CombinedMode).Estimate(
				context.Background(),
				"foo.txt",
			)
			if !errors.Is(err, boom) {
				t.Fatalf("expected error %v but got %v", boom, err)
			}

			if len(e.Ranking) != 0 {
				t.Errorf("expected no ranking but got %v", e.Ranking)
			}
		})
	}
}

// A failed log query should stop a blame query still in progress.
func TestEstimateCombinedCancelsSibling(t *testing.T) {
	boom := errors.New("boom")
	source := &fakeSource{logErr: boom, blameHangs: true}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := estimator(source, config.CombinedMode).Estimate(ctx, "foo.txt")
	if !errors.Is(err, boom) {
		t.Fatalf("expected error %v but got %v", boom, err)
	}

	if ctx.Err() != nil {
		t.Errorf("blame was not cancelled when log failed")
	}
}

func TestEstimatePassesThroughSettings(t *testing.T) {
	source := &fakeSource{
		log:   []string{"Alice"},
		blame: []string{"Alice"},
	}

	c := config.Default()
	c.Identity = git.NameIdentity

	e := estimate.New(source, c, "/repo/.git-blame-ignore-revs")
	_, err := e.Estimate(context.Background(), "foo.txt")
	if err != nil {
		t.Fatalf("Estimate() returned error: %v", err)
	}

	if source.identity != git.NameIdentity {
		t.Errorf("expected name identity but got %v", source.identity)
	}

	if source.ignoreRevsFile != "/repo/.git-blame-ignore-revs" {
		t.Errorf("ignore-revs file not passed to blame: %q", source.ignoreRevsFile)
	}
}

func TestPlaceholder(t *testing.T) {
	cause := errors.New("not a git repository")
	e := estimate.NewPlaceholder("foo.txt", config.CombinedMode, "nobody", cause)

	if !e.IsPlaceholder() {
		t.Errorf("expected placeholder estimate")
	}

	owner, ok := e.Owner()
	if !ok || owner != "nobody" {
		t.Errorf("expected owner nobody but got %q", owner)
	}

	if !errors.Is(e.Err, cause) {
		t.Errorf("expected cause to be kept but got %v", e.Err)
	}
}

func TestOwner(t *testing.T) {
	e := estimate.Estimate{
		Ranking: tally.Ranking{
			{Author: "a@x.com", Fraction: 0.6},
			{Author: "b@x.com", Fraction: 0.4},
		},
	}

	owner, ok := e.Owner()
	if !ok || owner != "a@x.com" {
		t.Errorf("expected owner a@x.com but got %q", owner)
	}

	_, ok = estimate.Estimate{}.Owner()
	if ok {
		t.Errorf("expected no owner for empty estimate")
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(
		&buf,
		&slog.HandlerOptions{Level: slog.LevelDebug},
	)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

// Both halves of a combined estimate log from their own goroutine, and many
// estimates may run at once. Run with -race.
func TestEstimateCombinedConcurrentLogging(t *testing.T) {
	logs := captureLogs(t)

	source := &fakeSource{
		log:   []string{"a@x.com", "b@x.com"},
		blame: []string{"a@x.com"},
	}
	e := estimator(source, config.CombinedMode)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Estimate(context.Background(), "foo.txt")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("Estimate() returned error: %v", err)
		}
	}

	out := logs.String()
	for _, msg := range []string{
		"contributors in log",
		"contributors in blame",
		"package=estimate",
	} {
		if !strings.Contains(out, msg) {
			t.Errorf("expected debug log containing %q but got:\n%s", msg, out)
		}
	}
}
