package git

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/sinclairtarget/git-owner/internal/git/revision"
)

// One line of the current file content, as attributed by git blame.
type BlameLine struct {
	Hash        string
	OrigLine    int
	FinalLine   int
	AuthorName  string
	AuthorEmail string
	AuthorTime  time.Time
	Summary     string
	Filename    string
	Boundary    bool
}

// Returns the identifier for the author of this line.
func (l BlameLine) Key(id Identity) string {
	switch id {
	case EmailIdentity:
		return l.AuthorEmail
	case NameIdentity:
		return l.AuthorName
	default:
		panic("unrecognized identity in switch statement")
	}
}

func (l BlameLine) String() string {
	return fmt.Sprintf(
		"{ line:%d hash:%s author:%s <%s> boundary:%v }",
		l.FinalLine,
		l.Hash,
		l.AuthorName,
		l.AuthorEmail,
		l.Boundary,
	)
}

// Commit metadata from the lines between a blame header and its content line.
type blameMeta struct {
	authorName  string
	authorEmail string
	authorTime  time.Time
	summary     string
	filename    string
	boundary    bool
	hasAuthor   bool
}

func (m blameMeta) apply(l *BlameLine) {
	l.AuthorName = m.authorName
	l.AuthorEmail = m.authorEmail
	l.AuthorTime = m.authorTime
	l.Summary = m.summary
	l.Filename = m.filename
	l.Boundary = m.boundary
}

var errTruncatedBlame = errors.New("blame output ended in the middle of an entry")

// Turns an iterator over lines from git log --format=<placeholder> into the
// list of author identifiers, one per commit.
func ParseLogAuthors(lines iter.Seq[string]) []string {
	authors := []string{}
	for line := range lines {
		authors = append(authors, line)
	}

	return authors
}

// Turns an iterator over lines from git blame --porcelain or
// git blame --line-porcelain into an iterator over attributed lines.
//
// Each entry is a header line, any number of "key value" metadata lines, then
// the content prefixed by a TAB. Keys we don't know about are skipped. With
// --porcelain, metadata only comes with the first line attributed to a commit,
// so we remember it for later lines.
func ParseBlame(lines iter.Seq[string]) iter.Seq2[BlameLine, error] {
	return func(yield func(BlameLine, error) bool) {
		metaByCommit := map[string]blameMeta{}

		var current BlameLine
		var meta blameMeta
		inEntry := false
		lineNum := 0

		for text := range lines {
			lineNum += 1

			if !inEntry {
				if len(text) == 0 {
					continue
				}

				if strings.HasPrefix(text, "\t") {
					yield(
						BlameLine{},
						fmt.Errorf(
							"line %d: content line without blame header",
							lineNum,
						),
					)
					return
				}

				header, err := parseBlameHeader(text)
				if err != nil {
					yield(BlameLine{}, fmt.Errorf("line %d: %w", lineNum, err))
					return
				}

				current = header
				meta = blameMeta{}
				inEntry = true
				continue
			}

			if strings.HasPrefix(text, "\t") {
				if meta.hasAuthor {
					metaByCommit[current.Hash] = meta
				} else {
					seen, ok := metaByCommit[current.Hash]
					if !ok {
						yield(
							current,
							fmt.Errorf(
								"line %d: no author given for commit %s",
								lineNum,
								current.Hash,
							),
						)
						return
					}

					if len(meta.filename) > 0 {
						seen.filename = meta.filename
					}
					meta = seen
				}

				meta.apply(&current)
				inEntry = false

				if !yield(current, nil) {
					return
				}

				continue
			}

			err := parseBlameMeta(text, &meta)
			if err != nil {
				yield(current, fmt.Errorf("line %d: %w", lineNum, err))
				return
			}
		}

		if inEntry {
			yield(current, errTruncatedBlame)
		}
	}
}

// Parses "<hash> <orig-line> <final-line> [<num-lines>]".
func parseBlameHeader(text string) (BlameLine, error) {
	var l BlameLine

	fields := strings.Split(text, " ")
	if len(fields) != 3 && len(fields) != 4 {
		return l, fmt.Errorf("malformed blame header \"%s\"", text)
	}

	if !revision.IsObjectID(fields[0]) {
		return l, fmt.Errorf(
			"malformed commit hash in blame header \"%s\"",
			text,
		)
	}
	l.Hash = fields[0]

	for i, dst := range []*int{&l.OrigLine, &l.FinalLine} {
		n, err := strconv.Atoi(fields[i+1])
		if err != nil || n < 1 {
			return l, fmt.Errorf(
				"malformed line number in blame header \"%s\"",
				text,
			)
		}

		*dst = n
	}

	if len(fields) == 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil || n < 1 {
			return l, fmt.Errorf(
				"malformed group size in blame header \"%s\"",
				text,
			)
		}
	}

	return l, nil
}

func parseBlameMeta(text string, meta *blameMeta) error {
	key, value, _ := strings.Cut(text, " ")

	switch key {
	case "author":
		meta.authorName = value
		meta.hasAuthor = true
	case "author-mail":
		meta.authorEmail = strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
		meta.hasAuthor = true
	case "author-time":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("error parsing author time: %w", err)
		}

		meta.authorTime = time.Unix(i, 0)
	case "summary":
		meta.summary = value
	case "filename":
		meta.filename = value
	case "boundary":
		meta.boundary = true
	default:
		// author-tz, committer*, previous, and anything added in the future
	}

	return nil
}
