package scrape

import (
	"fmt"
	"strings"

	"github.com/aleister1102/fleetvoice/internal/config"
)

func testSelectors() config.GridConfig {
	return config.GridConfig{
		Container:        ".ag-center-cols-container",
		Row:              "div[role='row']",
		IdentifierColumn: "div[col-id='plate']",
		AddressColumn:    "div[col-id='address']",
	}
}

type fixtureRow struct {
	plate   string
	address string
}

func gridHTML(rows ...fixtureRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ag-root"><div class="ag-center-cols-container">`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div role="row"><div col-id="plate"> %s </div><div col-id="address">%s</div></div>`, r.plate, r.address)
	}
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}

const loadingHTML = `<html><body><div class="spinner">Cargando...</div></body></html>`
