package foldhashmap

// NoRecordFound - Custom error to inform that no record was found
type NoRecordFound struct {
	msg string
}

// Error - Used to notify that no record was found
func (E NoRecordFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}

// TableFull - Custom error to inform that the table can't take more records, a put probed
// through its entire rehash budget without reaching a free slot
type TableFull struct {
	msg string
}

// Error - Used to notify that the table is full
func (E TableFull) Error() string {
	if E.msg == "" {
		return "table full"
	}
	return E.msg
}

// ProbingExhausted - Custom error to inform that a get spent its entire rehash budget without
// settling whether the key is present, which happens when probing a full table for an absent key
type ProbingExhausted struct {
	msg string
}

// Error - Used to notify that probing was exhausted
func (E ProbingExhausted) Error() string {
	if E.msg == "" {
		return "probing exhausted"
	}
	return E.msg
}

// ReservedKey - Custom error to inform that the key value 0 (zero) is reserved as the
// empty slot sentinel and can never be stored
type ReservedKey struct {
	msg string
}

// Error - Used to notify that a reserved key was given
func (E ReservedKey) Error() string {
	if E.msg == "" {
		return "key 0 is reserved"
	}
	return E.msg
}
