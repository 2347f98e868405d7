package recarray

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"

	"github.com/gostonefire/foldhashmap/internal/model"
)

// HeaderLength - Length of the record array file header
const HeaderLength int64 = 1024

// HeaderSlots - Number of int64 slots the header holds
const HeaderSlots int64 = HeaderLength / 8

// ReservedSlots - Number of leading header slots owned by the array itself,
// client slots start at this number
const ReservedSlots int64 = 1

// valueLengthSlot - Header slot holding the value length of records in the array
const valueLengthSlot int64 = 0

// KeyLength - Length of the key column prepended to every record
const KeyLength int64 = 8

// recordCacheSize - Size in bytes of the in-memory read cache over records
const recordCacheSize = 1024 * 1024

// Array - Represents a fixed record width persistent array over a single file.
// Records are addressed by a non-negative position, the file grows on demand when a position
// beyond the current logical size is written, and every newly exposed position carries
// the zero key sentinel until explicitly written.
type Array struct {
	fileName     string
	file         *os.File
	valueLength  int64
	recordLength int64
	recordCount  int64
	cache        *freecache.Cache
}

// Conf - Is a struct to be passed in the call to NewArray and contains configuration that
// affects file creation and processing.
//   - Name is the name to base the array file name on
//   - ValueLength is the fixed length of record values to store
type Conf struct {
	Name        string
	ValueLength int64
}

// GetFileName - Returns the array file name given the hash map name
func GetFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-fold.bin", name)
}

// NewArray - Returns a pointer to a new record array instance.
// It always creates a new file (or opens and truncates an existing file).
//   - conf is a Conf struct providing configuration affecting file creation and processing
//
// It returns:
//   - array which is a pointer to the created instance
//   - err which is a standard Go type of error
func NewArray(conf Conf) (array *Array, err error) {
	if conf.ValueLength <= 0 {
		err = fmt.Errorf("value length must be a positive value higher than 0 (zero)")
		return
	}

	array = &Array{
		fileName:     GetFileName(conf.Name),
		valueLength:  conf.ValueLength,
		recordLength: KeyLength + conf.ValueLength,
		cache:        freecache.NewCache(recordCacheSize),
	}

	array.file, err = os.OpenFile(array.fileName, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		err = fmt.Errorf("error while open/create new array file: %s", err)
		return
	}

	err = array.file.Truncate(HeaderLength)
	if err != nil {
		_ = array.file.Close()
		array.file = nil
		err = fmt.Errorf("error while truncate new array file to header length: %s", err)
		return
	}

	err = array.SetHeaderInt(valueLengthSlot, conf.ValueLength)
	if err != nil {
		_ = array.file.Close()
		array.file = nil
		return
	}

	log.Debug().Msgf("created record array file %s with record length %d", array.fileName, array.recordLength)

	return
}

// NewArrayFromExistingFile - Returns a pointer to a new record array instance given an existing
// file. If the file doesn't exist, doesn't have a valid header or if its size doesn't hold a
// whole number of records it fails with error.
//   - name is the name the array file name was based on
//
// It returns:
//   - array which is a pointer to the created instance
//   - err which is a standard Go type of error
func NewArrayFromExistingFile(name string) (array *Array, err error) {
	fileName := GetFileName(name)

	stat, err := os.Stat(fileName)
	if err != nil {
		err = fmt.Errorf("record array file not found")
		return
	}

	array = &Array{
		fileName: fileName,
		cache:    freecache.NewCache(recordCacheSize),
	}

	array.file, err = os.OpenFile(fileName, os.O_RDWR, 0644)
	if err != nil {
		err = fmt.Errorf("unable to open existing record array file: %s", err)
		return
	}

	array.valueLength, err = array.GetHeaderInt(valueLengthSlot)
	if err != nil {
		_ = array.file.Close()
		array.file = nil
		err = fmt.Errorf("unable to read header from record array file: %s", err)
		return
	}

	if array.valueLength <= 0 {
		_ = array.file.Close()
		array.file = nil
		err = fmt.Errorf("record array file header holds an invalid value length")
		return
	}

	array.recordLength = KeyLength + array.valueLength

	if stat.Size() < HeaderLength || (stat.Size()-HeaderLength)%array.recordLength != 0 {
		_ = array.file.Close()
		array.file = nil
		err = fmt.Errorf("actual file size doesn't hold a whole number of records")
		return
	}

	array.recordCount = (stat.Size() - HeaderLength) / array.recordLength

	log.Debug().Msgf("opened record array file %s with %d records", array.fileName, array.recordCount)

	return
}

// Close - Syncs and closes the array file
func (A *Array) Close() {
	if A.file != nil {
		_ = A.file.Sync()
		_ = A.file.Close()
		A.file = nil
	}
}

// Remove - Removes the array file, make sure to close it first before calling this function
func (A *Array) Remove() (err error) {
	// Only try to remove if exists, and is not by accident a directory (could happen when testing things out)
	if stat, ok := os.Stat(A.fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(A.fileName)
			if err != nil {
				err = fmt.Errorf("error while removing array file: %s", err)
				return
			}
		}
	}

	return
}

// GetHeaderInt - Reads one int64 from the given header slot
func (A *Array) GetHeaderInt(slot int64) (value int64, err error) {
	if slot < 0 || slot >= HeaderSlots {
		err = fmt.Errorf("header slot %d is out of range", slot)
		return
	}

	_, err = A.file.Seek(slot*8, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, 8)
	_, err = A.file.Read(buf)
	if err != nil {
		return
	}

	value = int64(binary.LittleEndian.Uint64(buf))

	return
}

// SetHeaderInt - Writes one int64 to the given header slot
func (A *Array) SetHeaderInt(slot, value int64) (err error) {
	if slot < 0 || slot >= HeaderSlots {
		err = fmt.Errorf("header slot %d is out of range", slot)
		return
	}

	_, err = A.file.Seek(slot*8, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))

	_, err = A.file.Write(buf)

	return
}

// RecordCount - Returns the current logical number of addressable records
func (A *Array) RecordCount() int64 {
	return A.recordCount
}

// ValueLength - Returns the fixed length of record values in the array
func (A *Array) ValueLength() int64 {
	return A.valueLength
}

// FileSize - Returns the current size of the array file
func (A *Array) FileSize() int64 {
	return HeaderLength + A.recordCount*A.recordLength
}

// Read - Returns the record at the given position.
// Positions at or beyond the current record count have never been created and reading them
// is an error, it is up to the caller to check RecordCount first.
func (A *Array) Read(position int64) (record model.Record, err error) {
	if position < 0 || position >= A.recordCount {
		err = fmt.Errorf("record position %d is out of range", position)
		return
	}

	if buf, ok := A.cache.Get(positionKey(position)); ok == nil {
		record = A.bytesToRecord(buf, position)
		return
	}

	_, err = A.file.Seek(HeaderLength+position*A.recordLength, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, A.recordLength)
	_, err = A.file.Read(buf)
	if err != nil {
		return
	}

	_ = A.cache.Set(positionKey(position), buf, 0)

	record = A.bytesToRecord(buf, position)

	return
}

// Write - Writes the record at the given position.
// If the position is at or beyond the current record count the file is first extended to
// cover it, leaving any newly exposed intermediate positions with the zero key sentinel.
func (A *Array) Write(position int64, record model.Record) (err error) {
	if position < 0 {
		err = fmt.Errorf("record position %d is out of range", position)
		return
	}
	if int64(len(record.Value)) != A.valueLength {
		err = fmt.Errorf("wrong length of value, should be %d", A.valueLength)
		return
	}

	if position >= A.recordCount {
		err = A.file.Truncate(HeaderLength + (position+1)*A.recordLength)
		if err != nil {
			err = fmt.Errorf("error while extending array file: %s", err)
			return
		}
		A.recordCount = position + 1
	}

	buf := make([]byte, KeyLength, A.recordLength)
	binary.LittleEndian.PutUint64(buf, uint64(record.Key))
	buf = append(buf, record.Value...)

	_, err = A.file.Seek(HeaderLength+position*A.recordLength, io.SeekStart)
	if err != nil {
		return
	}

	_, err = A.file.Write(buf)
	if err != nil {
		return
	}

	_ = A.cache.Set(positionKey(position), buf, 0)

	return
}

// bytesToRecord - Converts record raw data to a model.Record struct
func (A *Array) bytesToRecord(buf []byte, position int64) (record model.Record) {
	key := int64(binary.LittleEndian.Uint64(buf[:KeyLength]))

	value := make([]byte, A.valueLength)
	_ = copy(value, buf[KeyLength:KeyLength+A.valueLength])

	record = model.Record{
		Occupied: key != 0,
		Position: position,
		Key:      key,
		Value:    value,
	}

	return
}

// positionKey - Returns the record cache key for a position
func positionKey(position int64) (key []byte) {
	key = make([]byte, 8)
	binary.LittleEndian.PutUint64(key, uint64(position))
	return
}
