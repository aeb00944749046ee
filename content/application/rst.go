package application

import (
	"fmt"
	"html"
	"strings"
)

const adornmentChars = "=-~^*#+\"'`:._"

type rstRenderer struct {
	assetBase string
}

// NewRSTRenderer renders the subset of reStructuredText used by content
// files: section titles, paragraphs, bullet lists, literal blocks, the image
// directive and inline emphasis, strong, literals and hyperlinks.
func NewRSTRenderer(assetBase string) Renderer {
	return &rstRenderer{assetBase: assetBase}
}

func (r *rstRenderer) Render(source []byte) (string, error) {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	w := &rstWriter{assetBase: r.assetBase, levels: map[string]int{}}

	for i := 0; i < len(lines); {
		next, err := w.block(lines, i)
		if err != nil {
			return "", fmt.Errorf("failed to convert reStructuredText to HTML: line %d: %w", i+1, err)
		}
		i = next
	}

	return w.out.String(), nil
}

type rstWriter struct {
	assetBase string
	out       strings.Builder
	// levels maps an adornment style to its heading level in order of appearance.
	levels map[string]int
}

// block writes the block starting at lines[i] and returns the index of the
// first line after it.
func (w *rstWriter) block(lines []string, i int) (int, error) {
	line := lines[i]
	if isBlank(line) {
		return i + 1, nil
	}

	if i+2 < len(lines) && isAdornment(line) && isAdornment(lines[i+2]) && line[0] == lines[i+2][0] && !isBlank(lines[i+1]) {
		w.heading("over"+line[:1], lines[i+1])
		return i + 3, nil
	}

	if i+1 < len(lines) && indent(line) == 0 && isAdornment(lines[i+1]) && len(strings.TrimSpace(lines[i+1])) >= len(strings.TrimSpace(line)) {
		w.heading(lines[i+1][:1], line)
		return i + 2, nil
	}

	if rest, ok := strings.CutPrefix(strings.TrimSpace(line), ".. "); ok && indent(line) == 0 {
		return w.directive(lines, i, rest)
	}

	if isBullet(line) && indent(line) == 0 {
		return w.bulletList(lines, i), nil
	}

	return w.paragraph(lines, i), nil
}

func (w *rstWriter) heading(style, title string) {
	level, ok := w.levels[style]
	if !ok {
		level = len(w.levels) + 1
		w.levels[style] = level
	}
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(&w.out, "<h%d>%s</h%d>\n", level, inline(strings.TrimSpace(title)), level)
}

func (w *rstWriter) directive(lines []string, i int, rest string) (int, error) {
	body, end := indentedBlock(lines, i+1)

	target, isImage := strings.CutPrefix(rest, "image::")
	if !isImage {
		// Comments and unsupported directives produce no output.
		return end, nil
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return end, fmt.Errorf("image directive without target")
	}
	if isRelativeLink(target) {
		target = assetURL(w.assetBase, target)
	}

	alt := ""
	for _, option := range body {
		if value, ok := strings.CutPrefix(strings.TrimSpace(option), ":alt:"); ok {
			alt = strings.TrimSpace(value)
		}
	}

	fmt.Fprintf(&w.out, "<p><img src=\"%s\" alt=\"%s\"></p>\n", html.EscapeString(target), html.EscapeString(alt))
	return end, nil
}

func (w *rstWriter) bulletList(lines []string, i int) int {
	w.out.WriteString("<ul>\n")
	for i < len(lines) && isBullet(lines[i]) && indent(lines[i]) == 0 {
		item := []string{strings.TrimSpace(lines[i])[2:]}
		i++
		for i < len(lines) && !isBlank(lines[i]) && indent(lines[i]) > 0 {
			item = append(item, strings.TrimSpace(lines[i]))
			i++
		}
		fmt.Fprintf(&w.out, "<li>%s</li>\n", inline(strings.Join(item, " ")))
		for i < len(lines) && isBlank(lines[i]) && i+1 < len(lines) && isBullet(lines[i+1]) {
			i++
		}
	}
	w.out.WriteString("</ul>\n")
	return i
}

func (w *rstWriter) paragraph(lines []string, i int) int {
	var text []string
	for i < len(lines) && !isBlank(lines[i]) {
		text = append(text, strings.TrimSpace(lines[i]))
		i++
	}

	joined := strings.Join(text, " ")
	literal := strings.HasSuffix(joined, "::")
	if literal {
		switch {
		case joined == "::":
			joined = ""
		case strings.HasSuffix(joined, " ::"):
			joined = strings.TrimSuffix(joined, " ::")
		default:
			joined = strings.TrimSuffix(joined, ":")
		}
	}

	if joined != "" {
		fmt.Fprintf(&w.out, "<p>%s</p>\n", inline(joined))
	}

	if !literal {
		return i
	}

	block, end := indentedBlock(lines, i)
	if len(block) > 0 {
		fmt.Fprintf(&w.out, "<pre><code>%s</code></pre>\n", html.EscapeString(strings.Join(block, "\n")))
	}
	return end
}

// indentedBlock collects the indented lines starting at lines[i], skipping
// leading blank lines, and returns them dedented.
func indentedBlock(lines []string, i int) ([]string, int) {
	for i < len(lines) && isBlank(lines[i]) {
		i++
	}

	start := i
	minIndent := -1
	for i < len(lines) && (isBlank(lines[i]) || indent(lines[i]) > 0) {
		if !isBlank(lines[i]) && (minIndent < 0 || indent(lines[i]) < minIndent) {
			minIndent = indent(lines[i])
		}
		i++
	}

	end := i
	for end > start && isBlank(lines[end-1]) {
		end--
	}

	block := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		if isBlank(line) {
			block = append(block, "")
			continue
		}
		block = append(block, strings.TrimRight(line[minIndent:], " \t"))
	}

	return block, i
}

// inline renders inline markup in a single line of text.
func inline(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "``"):
			if content, rest, ok := strings.Cut(s[2:], "``"); ok {
				b.WriteString("<code>" + html.EscapeString(content) + "</code>")
				s = rest
				continue
			}
		case strings.HasPrefix(s, "**"):
			if content, rest, ok := strings.Cut(s[2:], "**"); ok && content != "" {
				b.WriteString("<strong>" + html.EscapeString(content) + "</strong>")
				s = rest
				continue
			}
		case strings.HasPrefix(s, "*"):
			if content, rest, ok := strings.Cut(s[1:], "*"); ok && content != "" {
				b.WriteString("<em>" + html.EscapeString(content) + "</em>")
				s = rest
				continue
			}
		case strings.HasPrefix(s, "`"):
			if content, rest, ok := strings.Cut(s[1:], "`_"); ok {
				b.WriteString(hyperlink(content))
				s = strings.TrimPrefix(rest, "_")
				continue
			}
		}

		b.WriteString(html.EscapeString(s[:1]))
		s = s[1:]
	}
	return b.String()
}

// hyperlink renders the inside of `text <url>`_.
func hyperlink(content string) string {
	open := strings.LastIndex(content, "<")
	if open < 0 || !strings.HasSuffix(content, ">") {
		return html.EscapeString(content)
	}

	label := strings.TrimSpace(content[:open])
	url := content[open+1 : len(content)-1]
	if label == "" {
		label = url
	}

	return "<a href=\"" + html.EscapeString(url) + "\">" + html.EscapeString(label) + "</a>"
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isBullet(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[1] != ' ' {
		return false
	}
	return trimmed[0] == '-' || trimmed[0] == '*' || trimmed[0] == '+'
}

func isAdornment(line string) bool {
	line = strings.TrimRight(line, " \t")
	if len(line) < 2 || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}
