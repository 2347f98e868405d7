package model

// Record - Represents one slot in the record array.
// A slot is empty when its stored key is 0, which makes 0 a reserved key value. Occupied
// carries that distinction as an explicit tag so call sites never compare against the
// sentinel themselves.
type Record struct {
	Occupied bool
	Position int64
	Key      int64
	Value    []byte
}
