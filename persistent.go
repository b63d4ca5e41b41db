package trustee

// Persistent is implemented by objects that can write their state into
// bytes and load it back. This is the only requirement the store layer
// puts on the models it keeps.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
