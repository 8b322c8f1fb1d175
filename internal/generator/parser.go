package generator

import (
	"regexp"
	"strings"
)

// Parser splits one raw completion into an ordered sequence of post texts.
// It is a pluggable strategy so a stricter structured-output contract can
// replace the regex heuristic without touching the orchestrator.
type Parser interface {
	Parse(completion string) []string
}

// BatchParser is the two-stage heuristic for free-form model output: posts
// introduced by an ordinal marker ("1. ", "2. ", ...) are extracted first;
// if none are found, the text is split on blank-line boundaries. The result
// is truncated to maxPosts either way.
type BatchParser struct {
	maxPosts int
}

// NewBatchParser creates a parser capped at maxPosts entries; maxPosts <= 0
// falls back to BatchSize.
func NewBatchParser(maxPosts int) *BatchParser {
	if maxPosts <= 0 {
		maxPosts = BatchSize
	}
	return &BatchParser{maxPosts: maxPosts}
}

var (
	ordinalMarker = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankLine     = regexp.MustCompile(`\n\s*\n`)
)

// Parse implements Parser.
func (p *BatchParser) Parse(completion string) []string {
	posts := p.parseOrdinal(completion)
	if len(posts) == 0 {
		posts = p.parseBlankLines(completion)
	}
	if len(posts) > p.maxPosts {
		posts = posts[:p.maxPosts]
	}
	return posts
}

func (p *BatchParser) parseOrdinal(completion string) []string {
	marks := ordinalMarker.FindAllStringIndex(completion, -1)
	posts := make([]string, 0, len(marks))
	for i, m := range marks {
		end := len(completion)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		if text := strings.TrimSpace(completion[m[1]:end]); text != "" {
			posts = append(posts, text)
		}
	}
	return posts
}

func (p *BatchParser) parseBlankLines(completion string) []string {
	var posts []string
	for _, chunk := range blankLine.Split(completion, -1) {
		if text := strings.TrimSpace(chunk); text != "" {
			posts = append(posts, text)
		}
	}
	return posts
}
