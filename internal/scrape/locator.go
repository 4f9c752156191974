package scrape

import (
	"fmt"
	"strings"

	"github.com/aleister1102/fleetvoice/internal/config"
)

// RowLocator extracts an entity's address from a grid snapshot.
type RowLocator struct {
	selectors config.GridConfig
	source    string
}

func NewRowLocator(selectors config.GridConfig, source string) *RowLocator {
	return &RowLocator{selectors: selectors, source: source}
}

// FindRow returns the normalized address of the row whose identifier equals
// matchKey. It returns ErrNotFound when the grid has identifiable rows but
// none match, and an *ExtractionError when the grid shape is wrong.
func (l *RowLocator) FindRow(snap *GridSnapshot, matchKey string) (string, error) {
	if !snap.ContainerPresent() {
		return "", &ExtractionError{Source: l.source, Reason: fmt.Sprintf("grid container %q missing", l.selectors.Container)}
	}

	rows := snap.Rows()
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: grid has no rows", ErrNotFound)
	}
	if snap.identifierCellCount() == 0 {
		return "", &ExtractionError{
			Source: l.source,
			Reason: fmt.Sprintf("none of %d rows has identifier cell %q", len(rows), l.selectors.IdentifierColumn),
		}
	}

	row, ok := snap.LocateRow(matchKey)
	if !ok {
		return "", fmt.Errorf("%w: no row with identifier %q", ErrNotFound, strings.TrimSpace(matchKey))
	}

	raw, ok := snap.ReadCell(row, l.selectors.AddressColumn)
	if !ok {
		return "", &ExtractionError{Source: l.source, Reason: fmt.Sprintf("matched row %d has no address cell %q", row.Index, l.selectors.AddressColumn)}
	}
	address := NormalizeAddress(raw)
	if address == "" {
		return "", &ExtractionError{Source: l.source, Reason: fmt.Sprintf("matched row %d has an empty address", row.Index)}
	}
	return address, nil
}
