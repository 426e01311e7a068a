package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const scheduleTable = `<html><body><table>
<tr><th colspan="11">Team Schedule</th></tr>
<tr><th>Game</th><th>Date</th><th>Time</th><th>Away</th><th>Goals</th><th>Home</th><th>Goals</th></tr>
<tr><td><a href="oss-scoresheet?game_id=123&amp;mode=display">123*</a></td><td>Thu Jan 4</td><td>7:30 PM</td>
    <td>Ducks  B</td><td>4</td><td>Sharks&nbsp;A</td><td>2</td></tr>
<tr><td>124</td><td>Fri Jan 5</td><td>9:00 PM</td><td>Sharks A</td><td></td><td>Kings C</td><td></td></tr>
<tr><td colspan="7">end</td></tr>
<tr><td>999</td><td>never</td></tr>
</table></body></html>`

func TestNormalizeRowsDedupesHeadersAndStops(t *testing.T) {
	doc := mustDoc(t, scheduleTable)
	tbl, err := NormalizeTable("schedule", doc.Find("table").First())
	require.NoError(t, err)

	assert.Equal(t, []string{"Game", "Date", "Time", "Away", "Goals", "Home", "Goals2"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)

	first := tbl.Rows[0]
	assert.Equal(t, "123*", first.Text("Game"))
	assert.Equal(t, "123", first["Game"].Param("game_id"))
	assert.Equal(t, "Ducks B", first.Text("Away"))
	assert.Equal(t, "Sharks A", first.Text("Home"))
	assert.Equal(t, "4", first.Text("Goals"))
	assert.Equal(t, "2", first.Text("Goals2"))
	assert.False(t, first["Away"].HasLink())

	assert.Equal(t, "", tbl.Rows[1].Text("Goals"))
}

func TestNormalizeRowsStopsAtNextHeader(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr><th>Team</th><th>GP</th></tr>
<tr><td>A</td><td>1</td></tr>
<tr><th>Team</th><th>GP</th></tr>
<tr><td>B</td><td>2</td></tr>
</table>`)
	tbl, err := NormalizeTable("standings", doc.Find("table"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "A", tbl.Rows[0].Text("Team"))
}

func TestNormalizeRowsUsesLowestStackedHeader(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr><th colspan="3">Visitor</th><th colspan="3">Home</th></tr>
<tr><th>#</th><th>Pos</th><th>Name</th><th>#</th><th>Pos</th><th>Name</th></tr>
<tr><td>9</td><td>F</td><td>Alex</td><td>12</td><td>D</td><td>Sam</td></tr>
</table>`)
	tbl, err := NormalizeTable("players", doc.Find("table"))
	require.NoError(t, err)
	assert.Equal(t, []string{"#", "Pos", "Name", "#2", "Pos2", "Name2"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Sam", tbl.Rows[0].Text("Name2"))
}

func TestNormalizeRowsWithoutHeader(t *testing.T) {
	doc := mustDoc(t, `<table><tr><td>a</td><td>b</td></tr></table>`)
	_, err := NormalizeTable("standings", doc.Find("table"))
	require.Error(t, err)
	assert.True(t, IsParse(err))

	_, err = NormalizeTable("standings", doc.Find("section"))
	assert.True(t, IsParse(err))
}

func TestRowsSkipsNestedTables(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr><td><table><tr><td>inner</td></tr></table></td></tr>
<tr><td>outer</td></tr>
</table>`)
	rows := Rows(doc.Find("body > table"))
	assert.Len(t, rows, 2)
}

func TestColspanHeaderExpands(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr><th>Name</th><th colspan="2">Goals</th></tr>
<tr><td>A</td><td>1</td><td>2</td></tr>
</table>`)
	tbl, err := NormalizeTable("x", doc.Find("table"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Goals", "Goals2"}, tbl.Headers)
	assert.Equal(t, "2", tbl.Rows[0].Text("Goals2"))
}

func TestQueryParam(t *testing.T) {
	assert.Equal(t, "42", QueryParam("display-schedule?team=42&season=60", "team"))
	assert.Equal(t, "", QueryParam("", "team"))
	assert.Equal(t, "", QueryParam("display-schedule", "team"))

	n, ok := Cell{Href: "x?level=7"}.IntParam("level")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = Cell{Href: "x?level=abc"}.IntParam("level")
	assert.False(t, ok)
}
