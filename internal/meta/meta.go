// Package meta derives paper metadata from file names and PDF info strings.
package meta

import (
	"path"
	"regexp"
	"strings"
)

// MaxKeywords caps the keywords taken from a PDF info dictionary.
const MaxKeywords = 8

var (
	bookTitlePattern = regexp.MustCompile(`《(.+?)》-([^-]+)`)
	dashedPattern    = regexp.MustCompile(`(?i)^(.+?)[-_]([^-_]+)\.pdf$`)
	keywordSep       = regexp.MustCompile(`[;；,，]`)
	authorSep        = regexp.MustCompile(`[;；,，、&]`)
)

// ParseFileName extracts a title and author list from names such as
// "《Title》-Author.pdf", "Title-Author.pdf" or "Title_Author.pdf".
// Anything else yields the bare name without extension and no authors.
func ParseFileName(name string) (title string, authors []string) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))

	if m := bookTitlePattern.FindStringSubmatch(base); m != nil {
		return strings.TrimSpace(m[1]), SplitAuthors(strings.TrimSuffix(m[2], path.Ext(m[2])))
	}
	if m := dashedPattern.FindStringSubmatch(base); m != nil {
		return strings.TrimSpace(m[1]), SplitAuthors(m[2])
	}
	return strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base))), nil
}

// SplitKeywords splits on ASCII and full-width separators, trimming blanks,
// keeping at most MaxKeywords entries.
func SplitKeywords(s string) []string {
	return split(keywordSep, s, MaxKeywords)
}

// SplitAuthors splits an author field; unlike keywords there is no cap.
func SplitAuthors(s string) []string {
	return split(authorSep, s, 0)
}

func split(sep *regexp.Regexp, s string, max int) []string {
	var out []string
	for _, part := range sep.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
