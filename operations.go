package foldhashmap

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gostonefire/foldhashmap/internal/model"
)

// Get - Gets the value stored under the given key.
//   - key is the identifier of a record, the value 0 (zero) is reserved and never stored
//
// It returns:
//   - value is the value of the matching record if found, if not found an error of type NoRecordFound is also returned
//   - err is of type NoRecordFound, ProbingExhausted or a standard error, if something went wrong
func (F *FoldHashMap) Get(key int64) (value []byte, err error) {
	F.mu.Lock()
	defer F.mu.Unlock()

	// The reserved key denotes empty slots and can never have been stored
	if key == 0 {
		err = NoRecordFound{}
		return
	}

	record, err := F.search(key)
	if err != nil {
		return
	}

	if !record.Occupied {
		err = NoRecordFound{}
		return
	}

	value = record.Value

	return
}

// Put - Stores the value under the given key, overwriting any value already stored under it.
//   - key is the identifier of a record, the value 0 (zero) is reserved and will be rejected
//   - value is the bytes to store, its length must equal the value length given in the call to NewFoldHashMap
//
// It returns:
//   - previous is the value that was overwritten, or nil if the key was not present
//   - err is of type ReservedKey, TableFull or a standard error, if something went wrong
func (F *FoldHashMap) Put(key int64, value []byte) (previous []byte, err error) {
	F.mu.Lock()
	defer F.mu.Unlock()

	// Check validity of the key
	if key == 0 {
		err = ReservedKey{}
		return
	}
	// Check validity of the value
	if int64(len(value)) != F.valueLength {
		err = fmt.Errorf("wrong length of value, should be %d", F.valueLength)
		return
	}

	record, err := F.search(key)
	if err != nil {
		if errors.Is(err, ProbingExhausted{}) {
			err = TableFull{}
		}
		return
	}

	if record.Occupied {
		previous = record.Value
	}

	err = F.fileManagement.Write(record.Position, model.Record{Key: key, Value: value})
	if err != nil {
		previous = nil
		err = fmt.Errorf("error while writing record to slot: %s", err)
	}

	return
}

// search - Walks the candidate slots for a key and returns the first one that terminates the
// walk: a slot beyond the current record count, an empty slot, or the slot holding the key.
// The returned record always carries the position it was (or would be) stored at.
// Spending more than the table's rehash budget of scramble cycles ends the walk with a
// ProbingExhausted error.
func (F *FoldHashMap) search(key int64) (record model.Record, err error) {
	probe := F.folder.NewProbe(key)

	for {
		position := F.folder.NodeIndex(probe)

		if position >= F.fileManagement.RecordCount() {
			record = model.Record{Position: position}
			return
		}

		record, err = F.fileManagement.Read(position)
		if err != nil {
			err = fmt.Errorf("error while reading slot from record array: %s", err)
			return
		}

		if !record.Occupied || record.Key == key {
			return
		}

		F.folder.Advance(probe)
		if probe.Cycles() > F.maxRehash {
			log.Warn().Msgf("probing exhausted %d scramble cycles for key %d in hash map %s", F.maxRehash, key, F.name)
			record = model.Record{}
			err = ProbingExhausted{}
			return
		}
	}
}
