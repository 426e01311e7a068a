package siahl

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rinkstats/siahl/internal/scraper"
)

// Scoresheet field names.
const (
	FieldDate             = "date"
	FieldTime             = "time"
	FieldGame             = "game"
	FieldLeague           = "league"
	FieldLevel            = "level"
	FieldLocation         = "location"
	FieldScorekeeper      = "scorekeeper"
	FieldReferee1         = "referee1"
	FieldReferee2         = "referee2"
	FieldSummary          = "summary"
	FieldPlayers          = "players"
	FieldVisitorScoring   = "visitor_scoring"
	FieldHomeScoring      = "home_scoring"
	FieldVisitorPenalties = "visitor_penalties"
	FieldHomePenalties    = "home_penalties"
	FieldVisitorShootout  = "visitor_shootout"
	FieldHomeShootout     = "home_shootout"
)

// FieldKind selects how a Field's element is read.
type FieldKind int

const (
	// LabeledText is a cell like "Scorekeeper: Pat"; the label is stripped.
	LabeledText FieldKind = iota
	// TableData is a table normalized into rows.
	TableData
)

// Field maps a structural path to a named value.
type Field struct {
	Name string
	Path string
	Kind FieldKind
	// Label prefixes LabeledText values.
	Label string
	// Required fields fail extraction with a ParseError when absent.
	Required bool
	// Anchor fields fail with a MissingStatsError when absent or empty:
	// the sheet exists but the game has not been scored yet.
	Anchor bool
}

// Layout is one version of the scoresheet markup.
type Layout struct {
	Version string
	// Probe names the field whose presence identifies this layout.
	Probe  string
	Fields []Field
}

// Sheet holds the values a Layout extracted.
type Sheet struct {
	Layout string
	Text   map[string]string
	Tables map[string]*scraper.Table
}

func (l *Layout) field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Matches reports whether the probe field is present with its label.
func (l *Layout) Matches(doc *goquery.Document) bool {
	f, ok := l.field(l.Probe)
	if !ok {
		return false
	}
	sel := doc.Find(f.Path).First()
	if sel.Length() == 0 {
		return false
	}
	if f.Kind == LabeledText {
		return strings.HasPrefix(strings.TrimSpace(sel.Text()), f.Label)
	}
	return true
}

// DetectLayout returns the first layout whose probe matches.
func DetectLayout(doc *goquery.Document, layouts []Layout) (*Layout, error) {
	for i := range layouts {
		if layouts[i].Matches(doc) {
			return &layouts[i], nil
		}
	}
	return nil, &scraper.ParseError{Page: PageScoresheet, Element: "layout", Reason: "no known layout matches"}
}

// Text reads one LabeledText field.
func (l *Layout) Text(doc *goquery.Document, name string) (string, error) {
	f, ok := l.field(name)
	if !ok || f.Kind != LabeledText {
		return "", &scraper.ParseError{Page: PageScoresheet, Element: name, Reason: "not a text field of layout " + l.Version}
	}
	v, found := readLabeled(doc, f)
	if !found {
		return "", &scraper.ParseError{Page: PageScoresheet, Element: name, Reason: "not found"}
	}
	return v, nil
}

// Extract walks every field. Anchor fields are checked first so an
// unscored sheet reports MissingStatsError rather than a missing table.
func (l *Layout) Extract(doc *goquery.Document, gameID string) (*Sheet, error) {
	sheet := &Sheet{
		Layout: l.Version,
		Text:   make(map[string]string),
		Tables: make(map[string]*scraper.Table),
	}

	for _, f := range l.Fields {
		if !f.Anchor {
			continue
		}
		v, found := readLabeled(doc, f)
		if !found || v == "" {
			return nil, &scraper.MissingStatsError{GameID: gameID, Field: f.Name}
		}
		sheet.Text[f.Name] = v
	}

	for _, f := range l.Fields {
		if f.Anchor {
			continue
		}
		switch f.Kind {
		case LabeledText:
			v, found := readLabeled(doc, f)
			if !found {
				if f.Required {
					return nil, &scraper.ParseError{Page: PageScoresheet, Element: f.Name, Reason: "not found"}
				}
				continue
			}
			sheet.Text[f.Name] = v
		case TableData:
			sel := doc.Find(f.Path).First()
			if sel.Length() == 0 {
				if f.Required {
					return nil, &scraper.ParseError{Page: PageScoresheet, Element: f.Name, Reason: "not found"}
				}
				continue
			}
			tbl, err := scraper.NormalizeTable(PageScoresheet, sel)
			if err != nil {
				if f.Required {
					return nil, fmt.Errorf("read %s: %w", f.Name, err)
				}
				continue
			}
			sheet.Tables[f.Name] = tbl
		}
	}
	return sheet, nil
}

func readLabeled(doc *goquery.Document, f Field) (string, bool) {
	sel := doc.Find(f.Path).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if f.Label != "" {
		if !strings.HasPrefix(text, f.Label) {
			return "", false
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, f.Label))
	}
	return text, true
}

// --------------------------------------------------------------------------
// Known layouts
// --------------------------------------------------------------------------

// DefaultLayouts lists the scoresheet versions in probe order. The nested
// layout goes first: its info table sits inside the first cell of the flat
// layout's info position, so the flat probe would also match it.
func DefaultLayouts() []Layout {
	return []Layout{
		scoresheetLayout("nested",
			"body > table:nth-of-type(1) > tbody > tr:nth-of-type(1) > td:nth-of-type(1) > table:nth-of-type(1) > tbody"),
		scoresheetLayout("flat",
			"body > table:nth-of-type(1) > tbody"),
	}
}

// scoresheetLayout builds a layout whose game info grid lives under infoBody
// and whose data tables follow as body-level siblings.
func scoresheetLayout(version, infoBody string) Layout {
	info := func(row, col int) string {
		return fmt.Sprintf("%s > tr:nth-of-type(%d) > td:nth-of-type(%d)", infoBody, row, col)
	}
	top := func(n int) string {
		return fmt.Sprintf("body > table:nth-of-type(%d)", n)
	}
	side := func(n, col int) string {
		return fmt.Sprintf("%s > tbody > tr:nth-of-type(1) > td:nth-of-type(%d) > table", top(n), col)
	}

	return Layout{
		Version: version,
		Probe:   FieldDate,
		Fields: []Field{
			{Name: FieldDate, Path: info(1, 1), Kind: LabeledText, Label: "Date:", Required: true},
			{Name: FieldTime, Path: info(1, 2), Kind: LabeledText, Label: "Time:"},
			{Name: FieldGame, Path: info(1, 3), Kind: LabeledText, Label: "Game:"},
			{Name: FieldLeague, Path: info(2, 1), Kind: LabeledText, Label: "League:"},
			{Name: FieldLevel, Path: info(2, 2), Kind: LabeledText, Label: "Level:"},
			{Name: FieldLocation, Path: info(2, 3), Kind: LabeledText, Label: "Location:"},
			{Name: FieldScorekeeper, Path: info(3, 1), Kind: LabeledText, Label: "Scorekeeper:", Anchor: true},
			{Name: FieldReferee1, Path: info(3, 2), Kind: LabeledText, Label: "Referee 1:"},
			{Name: FieldReferee2, Path: info(3, 3), Kind: LabeledText, Label: "Referee 2:"},
			{Name: FieldSummary, Path: top(2), Kind: TableData, Required: true},
			{Name: FieldPlayers, Path: top(3), Kind: TableData, Required: true},
			{Name: FieldVisitorScoring, Path: side(4, 1), Kind: TableData, Required: true},
			{Name: FieldHomeScoring, Path: side(4, 2), Kind: TableData, Required: true},
			{Name: FieldVisitorPenalties, Path: side(5, 1), Kind: TableData, Required: true},
			{Name: FieldHomePenalties, Path: side(5, 2), Kind: TableData, Required: true},
			{Name: FieldVisitorShootout, Path: side(6, 1), Kind: TableData},
			{Name: FieldHomeShootout, Path: side(6, 2), Kind: TableData},
		},
	}
}
