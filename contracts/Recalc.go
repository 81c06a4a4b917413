package contracts

// RecalcMode controls when edits trigger evaluation.
type RecalcMode int

const (
	RecalcAutomatic RecalcMode = iota
	RecalcManual
)

func (m RecalcMode) String() string {
	if m == RecalcManual {
		return "manual"
	}
	return "automatic"
}

// RecalcOrder selects the traversal strategy. Natural (dependency order)
// is always used when the affected subgraph has edges; the legacy
// column/row orders exist only for compatibility with formats that
// recorded a fixed evaluation sweep.
type RecalcOrder int

const (
	OrderNatural RecalcOrder = iota
	OrderColumnWise
	OrderRowWise
)

func (o RecalcOrder) String() string {
	switch o {
	case OrderColumnWise:
		return "column-wise"
	case OrderRowWise:
		return "row-wise"
	}
	return "natural"
}

// StructuralEditKind tags a row/column insert or delete.
type StructuralEditKind int

const (
	InsertRow StructuralEditKind = iota
	DeleteRow
	InsertColumn
	DeleteColumn
)

// RecalcStats reports what a recalculation pass did.
type RecalcStats struct {
	CellsEvaluated    int     `json:"cells_evaluated"`
	CircularRefsFound int     `json:"circular_refs_found"`
	ErrorsFound       int     `json:"errors_found"`
	ElapsedMs         float64 `json:"elapsed_ms"`
}

// RecalcEngine is the dependency-tracking recalculation engine.
type RecalcEngine interface {
	SetMode(RecalcMode)
	SetOrder(RecalcOrder)

	// OnCellEdited registers new raw content for a cell, updates the
	// dependency graph and, in automatic mode, recalculates the
	// affected set.
	OnCellEdited(Coordinate, string) RecalcStats

	// OnStructuralEdit shifts references in every stored formula for a
	// row/column insert or delete at the given index.
	OnStructuralEdit(StructuralEditKind, int) RecalcStats

	// OnNameDefined re-resolves every formula that mentions the
	// identifier after a named target is created or retargeted.
	OnNameDefined(identifier string) RecalcStats

	// RequestManualRecalculation evaluates the whole dirty set.
	RequestManualRecalculation() RecalcStats

	GetDependents(Coordinate) []Coordinate
	GetCircularReferences() []Coordinate
}
