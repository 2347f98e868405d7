//go:build integration

package foldhashmap

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestFoldHashMap_Put(t *testing.T) {
	t.Run("round trips records", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		keys := []int64{1, 42, 4711, -5, 255}

		// Execute
		for i, key := range keys {
			previous, err := fhm.Put(key, []byte(fmt.Sprintf("val%02d", i)))
			assert.NoErrorf(t, err, "puts record #%d", i)
			assert.Nilf(t, previous, "no previous value for new key #%d", i)
		}

		// Check
		for i, key := range keys {
			value, err := fhm.Get(key)
			assert.NoErrorf(t, err, "gets record #%d", i)
			assert.Equalf(t, []byte(fmt.Sprintf("val%02d", i)), value, "correct value for key #%d", i)
		}

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("overwrite returns the previous value", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		_, err = fhm.Put(42, []byte("first"))
		assert.NoError(t, err, "puts record")

		// Execute
		previous, err := fhm.Put(42, []byte("other"))

		// Check
		assert.NoError(t, err, "puts record again")
		assert.Equal(t, []byte("first"), previous, "previous value returned")

		value, err := fhm.Get(42)
		assert.NoError(t, err, "gets record")
		assert.Equal(t, []byte("other"), value, "new value stored")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("error when key is the reserved sentinel", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		// Execute
		_, err = fhm.Put(0, []byte("xxxxx"))

		// Check
		assert.True(t, errors.Is(err, ReservedKey{}), "reserved key rejected")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("error when value has the wrong length", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		// Execute
		_, err = fhm.Put(42, []byte("too long for the table"))

		// Check
		assert.Error(t, err, "wrong value length rejected")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("error when the table is full", func(t *testing.T) {
		// Prepare, a table with only two addressable slots and one scramble cycle of budget
		fhm, info, err := NewFoldHashMap(testHashMap, 0, 4, 1, 1, nil)
		assert.NoError(t, err, "creates fold hash map")
		assert.Equal(t, int64(2), info.Capacity, "two addressable slots")

		_, err = fhm.Put(1, []byte{1})
		assert.NoError(t, err, "puts first record")
		_, err = fhm.Put(2, []byte{2})
		assert.NoError(t, err, "puts second record")

		// Execute
		_, err = fhm.Put(4, []byte{4})

		// Check
		assert.True(t, errors.Is(err, TableFull{}), "table full")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})
}

func TestFoldHashMap_Get(t *testing.T) {
	t.Run("not found for a key never inserted", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		_, err = fhm.Put(42, []byte("hello"))
		assert.NoError(t, err, "puts record")

		// Execute
		_, err = fhm.Get(4711)

		// Check
		assert.True(t, errors.Is(err, NoRecordFound{}), "no record found")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("not found for the reserved sentinel key", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 2, 1000, 3, 5, nil)
		assert.NoError(t, err, "creates fold hash map")

		// Execute
		_, err = fhm.Get(0)

		// Check
		assert.True(t, errors.Is(err, NoRecordFound{}), "no record found")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("probing exhausted for an absent key in a full table", func(t *testing.T) {
		// Prepare
		fhm, _, err := NewFoldHashMap(testHashMap, 0, 4, 1, 1, nil)
		assert.NoError(t, err, "creates fold hash map")

		_, err = fhm.Put(1, []byte{1})
		assert.NoError(t, err, "puts first record")
		_, err = fhm.Put(2, []byte{2})
		assert.NoError(t, err, "puts second record")

		// Execute
		_, err = fhm.Get(4)

		// Check
		assert.True(t, errors.Is(err, ProbingExhausted{}), "probing exhausted")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})

	t.Run("resolves keys sharing their low bits", func(t *testing.T) {
		// Prepare, with offset 2 the keys 9 and 17 land on the same slot at the first depth
		fhm, info, err := NewFoldHashMap(testHashMap, 2, 64, 3, 3, nil)
		assert.NoError(t, err, "creates fold hash map")
		assert.Equal(t, int64(5), info.MaxDepth, "correct max depth")

		keys := []int64{5, 9, 17}

		for i, key := range keys {
			_, err = fhm.Put(key, []byte(fmt.Sprintf("v%02d", i)))
			assert.NoErrorf(t, err, "puts record #%d", i)
		}

		// Execute and Check
		for i, key := range keys {
			value, err := fhm.Get(key)
			assert.NoErrorf(t, err, "gets record #%d", i)
			assert.Equalf(t, []byte(fmt.Sprintf("v%02d", i)), value, "correct value for key #%d", i)
		}

		// 17 was pushed one depth further by the collision with 9
		assert.Greater(t, fhm.fileManagement.RecordCount(), int64(8), "a record landed beyond the first depth")

		// Clean up
		err = fhm.RemoveFile()
		assert.NoError(t, err, "removes file")
	})
}
