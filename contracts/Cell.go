package contracts

import "errors"

// Cell is the API-facing view of one cell: the raw content the user
// typed and the displayed result of the last evaluation.
type Cell struct {
	Value  string `json:"value"`
	Result string `json:"result"`
}

// CellList maps "A1"-style references to cells for whole-sheet responses.
type CellList map[string]*Cell

var CellNotFoundError = errors.New("cell not found")

var SheetNotFoundError = errors.New("sheet not found")

var NameNotFoundError = errors.New("named range not found")
