package contracts

// NameTarget is what a named range resolves to: a single cell or a
// rectangular range.
type NameTarget struct {
	Ref     Reference
	Range   RangeReference
	IsRange bool
}

// CellStore is the cell storage provider the engine evaluates against.
// The engine never owns cell content; it reads raw text and writes
// computed results back through this interface.
type CellStore interface {
	GetRawContent(Coordinate) (string, bool)
	SetRawContent(Coordinate, string)
	DeleteCell(Coordinate)

	GetValue(Coordinate) Value
	SetValue(Coordinate, Value)
	SetFormulaError(Coordinate, ErrorKind)

	ResolveName(identifier string) (NameTarget, bool)

	// EachCell visits every occupied cell in row-major order.
	EachCell(visit func(Coordinate, string) bool)
}
