package tui

import "strings"

// truncateText cuts text to width characters, ending in an ellipsis when
// something was dropped. Widths of three or less leave no room for the
// ellipsis and cut hard.
func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	if width <= 3 {
		return text[:width]
	}
	return text[:width-3] + "..."
}

// wrapText lays text out on at most maxLines lines of at most width
// characters, breaking between words. Words wider than a line are cut, and
// when content does not fit the last line ends in an ellipsis.
func wrapText(text string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return []string{""}
	}
	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for i, word := range words {
		if len(word) > width {
			word = truncateText(word, width)
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			if len(lines)+1 == maxLines {
				// Out of room; elide the rest on the final line.
				rest := current + " " + strings.Join(words[i:], " ")
				return append(lines, truncateText(rest, width))
			}
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// padLines appends empty lines until there are n, keeping pane heights
// stable while the cursor moves.
func padLines(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}
