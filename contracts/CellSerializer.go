package contracts

// CellSerializer encodes one cell record (reference text, raw content,
// cached result) for storage.
type CellSerializer interface {
	Marshal(ref string, value string, result string) []byte
	Unmarshal(data []byte) (ref string, value string, result string, err error)
}
