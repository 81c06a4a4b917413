package contracts

// SheetRepository persists sheets and exposes them to the API layer.
// Every mutation goes through the sheet's recalculation engine so
// results and the dependency graph stay current.
type SheetRepository interface {
	SetCell(sheetId string, ref string, value string) (*Cell, error)
	GetCell(sheetId string, ref string) (*Cell, error)
	GetCellList(sheetId string) (CellList, error)

	SetName(sheetId string, name string, target string) error
	GetName(sheetId string, name string) (string, error)

	Recalculate(sheetId string) (RecalcStats, error)
	StructuralEdit(sheetId string, kind StructuralEditKind, index int) (RecalcStats, error)

	SetMode(sheetId string, mode RecalcMode) error
	SetOrder(sheetId string, order RecalcOrder) error

	GetDependents(sheetId string, ref string) ([]string, error)
	GetCircularReferences(sheetId string) ([]string, error)
}
