package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/fleetvoice/internal/config"
)

// GridQuery parses DOM snapshots using the configured grid selectors. The
// selectors are data so UI drift is a config change.
type GridQuery struct {
	selectors config.GridConfig
}

func NewGridQuery(selectors config.GridConfig) GridQuery {
	return GridQuery{selectors: selectors}
}

// Parse builds a queryable view over one HTML snapshot.
func (q GridQuery) Parse(html string) (*GridSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &GridSnapshot{doc: doc, selectors: q.selectors}, nil
}

// GridSnapshot is an immutable parsed copy of the page at one instant.
type GridSnapshot struct {
	doc       *goquery.Document
	selectors config.GridConfig
}

// Row is a handle to one rendered grid row.
type Row struct {
	Index int
	sel   *goquery.Selection
}

func (g *GridSnapshot) container() *goquery.Selection {
	return g.doc.Find(g.selectors.Container)
}

// ContainerPresent reports whether the grid container is rendered.
func (g *GridSnapshot) ContainerPresent() bool {
	return g.container().Length() > 0
}

// Rows returns the rows currently rendered inside the container.
func (g *GridSnapshot) Rows() []Row {
	var rows []Row
	g.container().Find(g.selectors.Row).Each(func(i int, s *goquery.Selection) {
		rows = append(rows, Row{Index: i, sel: s})
	})
	return rows
}

// LocateRow returns the first row whose identifier cell, trimmed, equals
// matchKey exactly. Substring matches are not matches, and inner whitespace
// is compared as is.
func (g *GridSnapshot) LocateRow(matchKey string) (Row, bool) {
	key := strings.TrimSpace(matchKey)
	if key == "" {
		return Row{}, false
	}
	for _, row := range g.Rows() {
		cell := g.cell(row, g.selectors.IdentifierColumn)
		if cell != nil && strings.TrimSpace(cell.Text()) == key {
			return row, true
		}
	}
	return Row{}, false
}

// ReadCell reads the cell matched by column within row only, never the
// whole document.
func (g *GridSnapshot) ReadCell(row Row, column string) (string, bool) {
	cell := g.cell(row, column)
	if cell == nil {
		return "", false
	}
	return NormalizeText(cell.Text()), true
}

func (g *GridSnapshot) cell(row Row, column string) *goquery.Selection {
	if row.sel == nil {
		return nil
	}
	cell := row.sel.Find(column).First()
	if cell.Length() == 0 {
		return nil
	}
	return cell
}

// identifierCellCount counts rows that have an identifier cell at all.
func (g *GridSnapshot) identifierCellCount() int {
	n := 0
	for _, row := range g.Rows() {
		if g.cell(row, g.selectors.IdentifierColumn) != nil {
			n++
		}
	}
	return n
}
