/*
* Renders ownership estimates.
*
* Text and CSV are written as each estimate arrives. JSON and YAML are
* buffered and written as a single document by Flush().
 */
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sinclairtarget/git-owner/internal/config"
	"github.com/sinclairtarget/git-owner/internal/estimate"
	"github.com/sinclairtarget/git-owner/internal/format"
	"github.com/sinclairtarget/git-owner/internal/pretty"
)

type FileReport struct {
	Path        string         `json:"path" yaml:"path"`
	Owner       string         `json:"owner" yaml:"owner"`
	Placeholder bool           `json:"placeholder" yaml:"placeholder"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Authors     []AuthorReport `json:"authors" yaml:"authors"`
}

type AuthorReport struct {
	Rank   int     `json:"rank" yaml:"rank"`
	Author string  `json:"author" yaml:"author"`
	Share  float64 `json:"share" yaml:"share"`
}

type Writer struct {
	out        io.Writer
	format     config.Format
	mostLikely bool
	showHeader bool

	csv     *csv.Writer
	reports []FileReport
}

// numFiles is the number of files that will be reported on. Text output gets
// a header per file if there is more than one.
func NewWriter(out io.Writer, c config.Config, numFiles int) *Writer {
	w := &Writer{
		out:        out,
		format:     c.Format,
		mostLikely: c.MostLikely,
		showHeader: numFiles > 1,
		reports:    []FileReport{},
	}

	if c.Format == config.CSVFormat {
		w.csv = csv.NewWriter(out)
	}

	return w
}

// Builds the structured form of an estimate. In most-likely mode only the top
// author is kept.
func NewFileReport(e estimate.Estimate, mostLikely bool) FileReport {
	owner, _ := e.Owner()
	r := FileReport{
		Path:        e.Path,
		Owner:       owner,
		Placeholder: e.IsPlaceholder(),
		Authors:     []AuthorReport{},
	}

	if e.IsPlaceholder() {
		if e.Err != nil {
			r.Error = e.Err.Error()
		}
		return r
	}

	for i, share := range e.Ranking {
		if mostLikely && i > 0 {
			break
		}

		r.Authors = append(r.Authors, AuthorReport{
			Rank:   i + 1,
			Author: share.Author,
			Share:  share.Fraction,
		})
	}

	return r
}

func (w *Writer) Write(e estimate.Estimate) error {
	r := NewFileReport(e, w.mostLikely)

	switch w.format {
	case config.TextFormat:
		return w.writeText(r)
	case config.CSVFormat:
		return w.writeCSV(r)
	case config.JSONFormat, config.YAMLFormat:
		w.reports = append(w.reports, r)
		return nil
	default:
		panic("unrecognized format in switch statement")
	}
}

// Writes anything buffered. Must be called once after the last Write().
func (w *Writer) Flush() error {
	switch w.format {
	case config.TextFormat:
		return nil
	case config.CSVFormat:
		if len(w.reports) == 0 {
			// Header still goes out if nothing was written
			err := w.writeCSVHeader()
			if err != nil {
				return err
			}
		}

		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return fmt.Errorf("error flushing CSV writer: %w", err)
		}
		return nil
	case config.JSONFormat:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(w.reports); err != nil {
			return fmt.Errorf("error writing JSON report: %w", err)
		}
		return nil
	case config.YAMLFormat:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(w.reports); err != nil {
			return fmt.Errorf("error writing YAML report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("error writing YAML report: %w", err)
		}
		return nil
	default:
		panic("unrecognized format in switch statement")
	}
}

func (w *Writer) writeText(r FileReport) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error writing report for %s: %w", r.Path, err)
		}
	}()

	if w.mostLikely {
		_, err = fmt.Fprintln(w.out, r.Owner)
		return err
	}

	if w.showHeader {
		_, err = fmt.Fprintln(w.out, format.PathHeader(r.Path))
		if err != nil {
			return err
		}
	}

	if r.Placeholder {
		_, err = fmt.Fprintf(
			w.out,
			"%s  %s  %s(n/a)%s\n",
			format.Rank(1),
			r.Owner,
			pretty.Dim(),
			pretty.Reset(),
		)
		return err
	}

	for _, a := range r.Authors {
		author := a.Author
		if a.Rank == 1 {
			author = pretty.Bold() + author + pretty.Reset()
		}

		_, err = fmt.Fprintf(
			w.out,
			"%s  %s  %s(%s)%s\n",
			format.Rank(a.Rank),
			author,
			pretty.Dim(),
			format.Percent(a.Share),
			pretty.Reset(),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeCSVHeader() error {
	err := w.csv.Write([]string{"path", "rank", "author", "share"})
	if err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	return nil
}

func (w *Writer) writeCSV(r FileReport) error {
	if len(w.reports) == 0 {
		err := w.writeCSVHeader()
		if err != nil {
			return err
		}
	}
	w.reports = append(w.reports, r)

	if r.Placeholder {
		return w.writeCSVRecord([]string{r.Path, "1", r.Owner, ""})
	}

	for _, a := range r.Authors {
		record := []string{
			r.Path,
			strconv.Itoa(a.Rank),
			a.Author,
			strconv.FormatFloat(a.Share, 'f', 4, 64),
		}

		err := w.writeCSVRecord(record)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeCSVRecord(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("error writing CSV record: %w", err)
	}

	return nil
}
