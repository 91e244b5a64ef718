package convert

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/quill/internal/editor/block"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/pkg/errors"
)

// The converter is an approximate, lossy bridge between the plain markdown
// storage format and the editable block representation. The property it
// guarantees is "no crash, no loss of the surviving content", not byte-exact
// round-trips.

var numberedItemPattern = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)

// TextToDocument decomposes text line by line into content units appended to
// the handle. Empty or whitespace-only input yields a well-formed empty
// document. A malformed line degrades that line only, never the whole load.
func TextToDocument(text string, h *handle.Handle) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err, ok := recovered.(error)
			if !ok {
				err = errors.Errorf("%+v", recovered)
			}

			slog.Error("recovered panic while converting text, falling back to empty document", slogx.Error(errors.WithStack(err)))

			h.Reset(make([]*block.Block, 0))
		}
	}()

	if strings.TrimSpace(text) == "" {
		h.Reset(make([]*block.Block, 0))
		return
	}

	blocks := make([]*block.Block, 0)

	var (
		code     *block.Block
		codeBody []string
	)

	for i, line := range strings.Split(text, "\n") {
		if code != nil {
			if isFence(line) {
				code.Text = strings.Join(codeBody, "\n")
				blocks = append(blocks, code)
				code = nil
				codeBody = nil
			} else {
				codeBody = append(codeBody, line)
			}

			continue
		}

		b, err := parseLine(line)
		if err != nil {
			slog.Warn("skipping malformed line", slog.Int("line", i+1), slogx.Error(errors.WithStack(err)))
			continue
		}

		if b == nil {
			continue
		}

		if b.Kind == block.KindCode {
			code = b
			codeBody = make([]string, 0)
			continue
		}

		blocks = append(blocks, b)
	}

	// Unterminated fence: keep whatever was accumulated as a code block.
	if code != nil {
		code.Text = strings.Join(codeBody, "\n")
		blocks = append(blocks, code)
	}

	h.Reset(blocks)
}

func parseLine(line string) (*block.Block, error) {
	if !utf8.ValidString(line) {
		return nil, errors.Errorf("invalid utf-8 sequence in line %q", line)
	}

	trimmed := strings.TrimRight(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}

	if isFence(trimmed) {
		b := block.New(block.KindCode, "")
		b.Language = strings.TrimSpace(strings.TrimLeft(trimmed, "` \t"))
		return b, nil
	}

	if level, rest, ok := cutHeading(trimmed); ok {
		return block.NewHeading(level, rest), nil
	}

	indent, unindented := cutIndent(trimmed)

	for _, marker := range []string{"- ", "* ", "+ "} {
		if rest, ok := strings.CutPrefix(unindented, marker); ok {
			b := block.New(block.KindBulletItem, rest)
			b.Level = indent
			return b, nil
		}
	}

	if matches := numberedItemPattern.FindStringSubmatch(unindented); matches != nil {
		b := block.New(block.KindNumberedItem, matches[2])
		b.Level = indent
		return b, nil
	}

	if rest, ok := strings.CutPrefix(unindented, "> "); ok {
		return block.New(block.KindQuote, rest), nil
	}

	if unindented == "---" || unindented == "***" || unindented == "___" {
		return block.New(block.KindDivider, ""), nil
	}

	return block.New(block.KindParagraph, strings.TrimSpace(trimmed)), nil
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

func cutHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > 6 {
		return 0, "", false
	}

	rest, ok := strings.CutPrefix(line[level:], " ")
	if !ok {
		return 0, "", false
	}

	return level, strings.TrimSpace(rest), true
}

func cutIndent(line string) (int, string) {
	unindented := strings.TrimLeft(line, " \t")
	return (len(line) - len(unindented)) / 2, unindented
}

// DocumentToText walks the handle's blocks depth first and renders them back
// to markdown, newline separated. Units with no extractable text are skipped.
// It never propagates a failure: on panic it degrades to a plain-text scrape
// of whatever structure exists, since losing in-progress edits is worse than
// losing formatting.
func DocumentToText(h *handle.Handle) (text string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err, ok := recovered.(error)
			if !ok {
				err = errors.Errorf("%+v", recovered)
			}

			slog.Error("recovered panic while rendering document, falling back to text scrape", slogx.Error(errors.WithStack(err)))

			text = scrape(h)
		}
	}()

	lines := make([]string, 0)

	for _, b := range h.Blocks() {
		b.Walk(func(b *block.Block) bool {
			if line, ok := renderBlock(b); ok {
				lines = append(lines, line)
			}

			return true
		})
	}

	return strings.Join(lines, "\n")
}

func renderBlock(b *block.Block) (string, bool) {
	switch b.Kind {
	case block.KindHeading:
		if b.Text == "" {
			return "", false
		}

		level := min(max(b.Level, 1), 6)

		return strings.Repeat("#", level) + " " + b.Text, true

	case block.KindBulletItem:
		return strings.Repeat("  ", max(b.Level, 0)) + "- " + b.Text, true

	case block.KindNumberedItem:
		return strings.Repeat("  ", max(b.Level, 0)) + "1. " + b.Text, true

	case block.KindQuote:
		return "> " + b.Text, true

	case block.KindCode:
		return fmt.Sprintf("```%s\n%s\n```", b.Language, b.Text), true

	case block.KindDivider:
		return "---", true

	case block.KindParagraph:
		if b.Text == "" {
			return "", false
		}

		return b.Text, true

	default:
		// Unknown unit kinds degrade to their raw text.
		if b.Text == "" {
			return "", false
		}

		return b.Text, true
	}
}

func scrape(h *handle.Handle) string {
	lines := make([]string, 0)

	for _, b := range h.Blocks() {
		b.Walk(func(b *block.Block) bool {
			if b != nil && b.Text != "" {
				lines = append(lines, b.Text)
			}

			return true
		})
	}

	return strings.Join(lines, "\n")
}
