package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// DOM helpers over golang.org/x/net/html. Court portal markup is table soup
// from a legacy ASP.NET app; everything here is positional and defensive.

// findFirst returns the first element with the given tag, depth-first.
func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns all elements with the given tag, depth-first.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// childTables returns the table elements that are direct children of n.
// Section dispatch works on top-level tables only; nested tables belong to
// whichever section contains them.
func childTables(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "table" {
			out = append(out, c)
		}
	}
	return out
}

// hasClass reports whether the element carries the given class attribute value.
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// findByClass returns the first element with the given tag and class.
func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

// cleanCell strips non-breaking spaces and the mojibake artifact "Â" that the
// portal emits for them, then trims.
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "Â", "")
	return strings.TrimSpace(s)
}

// nodeText returns all text content beneath n, concatenated.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// textCells returns every non-empty cleaned text leaf beneath n, in document
// order. The charge table is scanned this way in fixed strides.
func textCells(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if cell := cleanCell(n.Data); cell != "" {
				out = append(out, cell)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// extractRows returns the non-empty text leaves of each tr beneath table,
// dropping empty rows.
func extractRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range findAll(table, "tr") {
		row := textCells(tr)
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// headerRows returns the text leaves of each tr that contains a th cell,
// with inner whitespace collapsed. The events table marks data rows with th
// date cells.
func headerRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range findAll(table, "tr") {
		if findFirst(tr, "th") == nil {
			continue
		}
		row := textCells(tr)
		for i, cell := range row {
			row[i] = strings.Join(strings.Fields(cell), " ")
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// renderNode serializes n back to HTML. Used for fingerprint input after the
// volatile balance table has been removed.
func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// removeBalanceTable drops the trailing "Balance Due" table from the body.
// The balance updates as costs are paid off; hashing it would register a new
// version every time a payment posts.
func removeBalanceTable(body *html.Node) {
	tables := childTables(body)
	if len(tables) == 0 {
		return
	}
	last := tables[len(tables)-1]
	if strings.Contains(nodeText(last), "Balance Due") {
		body.RemoveChild(last)
	}
}

// at returns the cell at rows[r][c], or nil when the row is too short. Short
// rows yield partial results, never a panic.
func at(rows [][]string, r, c int) *string {
	if r >= len(rows) || c >= len(rows[r]) {
		return nil
	}
	v := rows[r][c]
	return &v
}

// fieldAt splits the cell at rows[r][c] on spaces and returns the idx-th
// field, for combined cells like "Male White" or `5'10" 180`.
func fieldAt(rows [][]string, r, c, idx int) *string {
	cell := at(rows, r, c)
	if cell == nil {
		return nil
	}
	fields := strings.Fields(*cell)
	if idx >= len(fields) {
		return nil
	}
	return &fields[idx]
}
