package render

import (
	"regexp"
	"strings"
)

// inlineDisplayMath matches $$…$$ that sits inside a paragraph line
var inlineDisplayMath = regexp.MustCompile(`\$\$([^$]+?)\$\$`)

// PrepareMath makes LaTeX readable in a terminal. Display math ($$…$$ on its
// own lines) becomes a fenced latex block and inline math ($…$) becomes a
// code span. Text inside code fences and code spans is left alone, as is an
// unterminated $$ block (the reply may still be streaming).
func PrepareMath(md string) string {
	if !strings.Contains(md, "$") {
		return md
	}

	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	fence := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			out = append(out, line)
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if marker := fenceMarker(trimmed); marker != "" {
			fence = marker
			out = append(out, line)
			continue
		}

		if strings.HasPrefix(trimmed, "$$") {
			if block, end, ok := displayMath(lines, i); ok {
				out = append(out, block...)
				i = end
				continue
			}
		}

		out = append(out, inlineMath(line))
	}

	return strings.Join(out, "\n")
}

func fenceMarker(trimmed string) string {
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	}
	return ""
}

// displayMath collects a $$ block starting at lines[start]. It returns the
// replacement lines and the index of the closing line.
func displayMath(lines []string, start int) ([]string, int, bool) {
	first := strings.TrimPrefix(strings.TrimSpace(lines[start]), "$$")

	if idx := strings.Index(first, "$$"); idx >= 0 {
		if strings.TrimSpace(first[idx+2:]) != "" {
			return nil, start, false
		}
		return latexBlock(first[:idx]), start, true
	}

	parts := []string{first}
	for j := start + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if idx := strings.Index(t, "$$"); idx >= 0 {
			parts = append(parts, t[:idx])
			return latexBlock(strings.Join(parts, "\n")), j, true
		}
		parts = append(parts, lines[j])
	}
	return nil, start, false
}

func latexBlock(body string) []string {
	return []string{"```latex", strings.TrimSpace(body), "```"}
}

// inlineMath rewrites math outside of backtick code spans
func inlineMath(line string) string {
	if !strings.Contains(line, "$") {
		return line
	}
	segments := strings.Split(line, "`")
	for i := 0; i < len(segments); i += 2 {
		segments[i] = inlineDollars(segments[i])
	}
	return strings.Join(segments, "`")
}

func inlineDollars(s string) string {
	s = inlineDisplayMath.ReplaceAllStringFunc(s, func(m string) string {
		return "`" + strings.TrimSpace(m[2:len(m)-2]) + "`"
	})

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '$' && (i == 0 || s[i-1] != '\\') {
			if end, ok := closingDollar(s, i+1); ok {
				b.WriteByte('`')
				b.WriteString(s[i+1 : end])
				b.WriteByte('`')
				i = end + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// closingDollar follows the pandoc rule: the opening $ is followed by a
// non-space, the closing $ is preceded by a non-space and not followed by a
// digit. This keeps prices like "$5 and $10" intact.
func closingDollar(s string, start int) (int, bool) {
	if start >= len(s) || s[start] == ' ' || s[start] == '\t' || s[start] == '$' {
		return 0, false
	}
	for j := start; j < len(s); j++ {
		if s[j] != '$' {
			continue
		}
		if s[j-1] == ' ' || s[j-1] == '\t' {
			return 0, false
		}
		if j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9' {
			return 0, false
		}
		return j, true
	}
	return 0, false
}
