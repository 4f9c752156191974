package scrape

// Readiness is a named predicate over a grid snapshot.
type Readiness struct {
	Name  string
	Check func(*GridSnapshot) bool
}

// ContainerPresent is satisfied once the grid container exists.
func ContainerPresent() Readiness {
	return Readiness{
		Name:  "container_present",
		Check: (*GridSnapshot).ContainerPresent,
	}
}

// ContainerHasRows is satisfied once the container holds at least one row.
func ContainerHasRows() Readiness {
	return Readiness{
		Name: "container_has_rows",
		Check: func(g *GridSnapshot) bool {
			return g.ContainerPresent() && len(g.Rows()) > 0
		},
	}
}

// TargetRowPresent is satisfied once a row matching matchKey is rendered.
func TargetRowPresent(matchKey string) Readiness {
	return Readiness{
		Name: "target_row_present",
		Check: func(g *GridSnapshot) bool {
			_, ok := g.LocateRow(matchKey)
			return ok
		},
	}
}
