package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell is a normalized table cell: collapsed text plus the href of the first
// link inside it, if any.
type Cell struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// HasLink reports whether the cell carried a link.
func (c Cell) HasLink() bool { return c.Href != "" }

// Param returns a query parameter of the cell's link.
func (c Cell) Param(key string) string {
	return QueryParam(c.Href, key)
}

// IntParam returns a numeric query parameter of the cell's link.
func (c Cell) IntParam(key string) (int, bool) {
	v := c.Param(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Row maps column name to cell.
type Row map[string]Cell

// Text returns the cell text for a column, empty when absent.
func (r Row) Text(column string) string { return r[column].Text }

// Table is the result of normalizing an HTML table.
type Table struct {
	Headers []string
	Rows    []Row
}

// Width is the number of named columns.
func (t *Table) Width() int { return len(t.Headers) }

// QueryParam extracts a query parameter from a possibly relative link.
func QueryParam(href, key string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

// CellOf normalizes a single th/td selection.
func CellOf(sel *goquery.Selection) Cell {
	c := Cell{Text: strings.Join(strings.Fields(sel.Text()), " ")}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		c.Href = href
	}
	return c
}

// Rows returns the direct rows of a table in document order, looking
// through thead/tbody/tfoot but not into nested tables.
func Rows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.First().Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tr)
			})
		}
	})
	return rows
}

// IsHeaderRow reports whether a row is a column header row: at least two
// cells, all of them th.
func IsHeaderRow(row *goquery.Selection) bool {
	cells := row.ChildrenFiltered("th, td")
	return cells.Length() >= 2 && cells.Filter("th").Length() == cells.Length()
}

// NormalizeTable normalizes a table element.
func NormalizeTable(page string, table *goquery.Selection) (*Table, error) {
	if table.Length() == 0 {
		return nil, &ParseError{Page: page, Element: "table", Reason: "not found"}
	}
	return NormalizeRows(page, Rows(table))
}

// NormalizeRows turns a row sequence rooted at a header row into named rows.
// Rows before the first header row are skipped, and of adjacent header rows
// the last one is used. Duplicate headers get a numeric suffix ("Goals",
// "Goals2"). Iteration stops at a row with fewer than two cells or at the
// next header row.
func NormalizeRows(page string, rows []*goquery.Selection) (*Table, error) {
	start := -1
	for i, row := range rows {
		if IsHeaderRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, &ParseError{Page: page, Element: "header row", Reason: "not found"}
	}
	// Stacked header rows group columns; the lowest one names them.
	for start+1 < len(rows) && IsHeaderRow(rows[start+1]) {
		start++
	}

	t := &Table{Headers: dedupeHeaders(expand(rows[start]))}

	for _, row := range rows[start+1:] {
		if row.ChildrenFiltered("th, td").Length() < 2 || IsHeaderRow(row) {
			break
		}
		cells := expand(row)
		r := make(Row, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(cells) {
				r[h] = cells[i]
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// expand normalizes a row's cells, repeating a cell across its colspan. Only
// the first column of a spanned cell keeps the value.
func expand(row *goquery.Selection) []Cell {
	var out []Cell
	row.ChildrenFiltered("th, td").Each(func(_ int, sel *goquery.Selection) {
		span := 1
		if v, ok := sel.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		c := CellOf(sel)
		out = append(out, c)
		for i := 1; i < span; i++ {
			out = append(out, Cell{})
		}
	})
	return out
}

func dedupeHeaders(cells []Cell) []string {
	seen := make(map[string]int, len(cells))
	headers := make([]string, len(cells))
	prev := ""
	for i, c := range cells {
		name := c.Text
		if name == "" && i > 0 {
			// Spanned header columns inherit the spanning name.
			name = prev
		}
		prev = name
		seen[name]++
		if n := seen[name]; n > 1 {
			headers[i] = name + strconv.Itoa(n)
		} else {
			headers[i] = name
		}
	}
	return headers
}
