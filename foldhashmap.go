package foldhashmap

import (
	"fmt"
	"sync"

	"github.com/gostonefire/foldhashmap/internal/folding"
	"github.com/gostonefire/foldhashmap/internal/model"
	"github.com/gostonefire/foldhashmap/internal/recarray"
	"github.com/gostonefire/foldhashmap/scramble"
)

// Header slots in the record array used to persist table parameters.
// They are written once at creation and read back verbatim on reopen.
const (
	offsetHeaderSlot    int64 = recarray.ReservedSlots
	maxDepthHeaderSlot  int64 = recarray.ReservedSlots + 1
	maxRehashHeaderSlot int64 = recarray.ReservedSlots + 2
	scramblerHeaderSlot int64 = recarray.ReservedSlots + 3
)

// FileManagement - Interface for any record array implementation backing the hash map
type FileManagement interface {
	Close()
	Remove() (err error)
	GetHeaderInt(slot int64) (value int64, err error)
	SetHeaderInt(slot, value int64) (err error)
	RecordCount() int64
	ValueLength() int64
	FileSize() int64
	Read(position int64) (record model.Record, err error)
	Write(position int64, record model.Record) (err error)
}

// TableInfo - Information structure containing some information about the hash map created
//   - Offset is the number of low depths skipped in the folded address space
//   - MaxDepth is the deepest probe level, derived from the requested max size at creation
//   - MaxRehash is the number of scramble cycles a single operation may spend
//   - Capacity is the actual number of addressable slots, it is derived from the requested max size and is usually somewhat smaller
//   - ValueLength is the fixed length of values stored
//   - FileSize is the current size of the table file
type TableInfo struct {
	Offset      int64
	MaxDepth    int64
	MaxRehash   int64
	Capacity    int64
	ValueLength int64
	FileSize    int64
}

// FoldHashMap - The main implementation struct
type FoldHashMap struct {
	mu             sync.Mutex
	fileManagement FileManagement
	folder         *folding.Folder
	name           string
	offset         int64
	maxDepth       int64
	maxRehash      int64
	valueLength    int64
	// CloseFile - Closes the table file. Use this preferably in a "defer" directly
	// after a NewFoldHashMap or NewFromExistingFile.
	CloseFile func()
	// RemoveFile - Removes the table file if it exists.
	// The function first internally closes it using CloseFile.
	RemoveFile func() error
}

// NewFoldHashMap - Returns a new file prepared to hold up to a requested maximum number of entries.
// The requested max size is re-computed to a folding depth resulting in an actual capacity less
// than the given max size, the actual capacity can be retrieved from the returned TableInfo.
//   - name is the name of the hash map and will be used to form the file name
//   - offset is the number of low depths skipped in the folded address space, a good number is 8
//   - maxSize is the requested maximum number of entries
//   - maxRehash is the number of scramble cycles a single operation may spend before giving up
//   - valueLength is the fixed length of values to store
//   - scrambler is an optional custom rehash scrambler following the scramble.Scrambler interface
//
// It returns:
//   - foldHashMap is a pointer to a FoldHashMap struct
//   - tableInfo is a TableInfo struct containing some data regarding the hash map created
//   - err is a normal Go error which should be nil if everything went ok
func NewFoldHashMap(
	name string,
	offset int64,
	maxSize int64,
	maxRehash int64,
	valueLength int64,
	scrambler scramble.Scrambler,
) (
	foldHashMap *FoldHashMap,
	tableInfo TableInfo,
	err error,
) {

	// Check if name is empty
	if name == "" {
		err = fmt.Errorf("name can not be empty, it will be used to name the physical file")
		return
	}

	// Check if offset is valid
	if offset < 0 {
		err = fmt.Errorf("offset must not be negative")
		return
	}

	// Check if maxRehash is valid
	if maxRehash < 0 {
		err = fmt.Errorf("max rehash must not be negative")
		return
	}

	// Check if the valueLength is valid
	if valueLength <= 0 {
		err = fmt.Errorf("value length must be a positive value higher than 0 (zero)")
		return
	}

	// Derive the deepest probe level from the requested max size
	maxDepth, err := folding.MaxDepth(maxSize, offset)
	if err != nil {
		return
	}

	// If no Scrambler was given then use the default internal
	var internalAlg bool
	if scrambler == nil {
		scrambler = scramble.Affine{}
		internalAlg = true
	}

	var fm FileManagement
	fm, err = recarray.NewArray(recarray.Conf{Name: name, ValueLength: valueLength})
	if err != nil {
		return
	}

	err = setParameterHeader(fm, offset, maxDepth, maxRehash, internalAlg)
	if err != nil {
		fm.Close()
		_ = fm.Remove()
		err = fmt.Errorf("error while writing table parameters to header: %s", err)
		return
	}

	foldHashMap = &FoldHashMap{
		fileManagement: fm,
		folder:         folding.NewFolder(offset, maxDepth, scrambler),
		name:           name,
		offset:         offset,
		maxDepth:       maxDepth,
		maxRehash:      maxRehash,
		valueLength:    valueLength,
		CloseFile:      func() { fm.Close() },
		RemoveFile: func() error {
			fm.Close()
			return fm.Remove()
		},
	}

	tableInfo = foldHashMap.tableInfo()

	return
}

// NewFromExistingFile - Opens an existing file containing a hash map. The file must have a valid
// header, and if the file was created with a custom scrambler, also that same scrambler has to
// be supplied. Parameters persisted in the header take precedence, nothing from the original
// creation call needs to (or can) be passed again.
//   - name is the name of an existing hash map
//   - scrambler is an optional custom rehash scrambler following the scramble.Scrambler interface
//
// It returns:
//   - foldHashMap is a pointer to a FoldHashMap struct
//   - tableInfo is a TableInfo struct containing some data regarding the hash map opened
//   - err is a normal Go error which should be nil if everything went ok
func NewFromExistingFile(name string, scrambler scramble.Scrambler) (
	foldHashMap *FoldHashMap,
	tableInfo TableInfo,
	err error,
) {
	var fm FileManagement
	fm, err = recarray.NewArrayFromExistingFile(name)
	if err != nil {
		return
	}

	offset, maxDepth, maxRehash, internalAlg, err := getParameterHeader(fm)
	if err != nil {
		fm.Close()
		err = fmt.Errorf("error while reading table parameters from header: %s", err)
		return
	}

	// Check for mismatch in choice of scrambler
	if internalAlg && scrambler != nil {
		fm.Close()
		err = fmt.Errorf("seems the hash map file was used with the internal scrambler but an external was given")
		return
	}
	if !internalAlg && scrambler == nil {
		fm.Close()
		err = fmt.Errorf("seems the hash map file was used with an external scrambler but none was given")
		return
	}

	if scrambler == nil {
		scrambler = scramble.Affine{}
	}

	foldHashMap = &FoldHashMap{
		fileManagement: fm,
		folder:         folding.NewFolder(offset, maxDepth, scrambler),
		name:           name,
		offset:         offset,
		maxDepth:       maxDepth,
		maxRehash:      maxRehash,
		valueLength:    fm.ValueLength(),
		CloseFile:      func() { fm.Close() },
		RemoveFile: func() error {
			fm.Close()
			return fm.Remove()
		},
	}

	tableInfo = foldHashMap.tableInfo()

	return
}

// tableInfo - Assembles a TableInfo struct from current table state
func (F *FoldHashMap) tableInfo() (tableInfo TableInfo) {
	tableInfo = TableInfo{
		Offset:      F.offset,
		MaxDepth:    F.maxDepth,
		MaxRehash:   F.maxRehash,
		Capacity:    folding.Capacity(F.maxDepth, F.offset),
		ValueLength: F.valueLength,
		FileSize:    F.fileManagement.FileSize(),
	}

	return
}

// setParameterHeader - Persists table parameters in the record array header
func setParameterHeader(fm FileManagement, offset, maxDepth, maxRehash int64, internalAlg bool) (err error) {
	err = fm.SetHeaderInt(offsetHeaderSlot, offset)
	if err != nil {
		return
	}
	err = fm.SetHeaderInt(maxDepthHeaderSlot, maxDepth)
	if err != nil {
		return
	}
	err = fm.SetHeaderInt(maxRehashHeaderSlot, maxRehash)
	if err != nil {
		return
	}

	var alg int64
	if internalAlg {
		alg = 1
	}
	err = fm.SetHeaderInt(scramblerHeaderSlot, alg)

	return
}

// getParameterHeader - Reads table parameters back from the record array header
func getParameterHeader(fm FileManagement) (offset, maxDepth, maxRehash int64, internalAlg bool, err error) {
	offset, err = fm.GetHeaderInt(offsetHeaderSlot)
	if err != nil {
		return
	}
	maxDepth, err = fm.GetHeaderInt(maxDepthHeaderSlot)
	if err != nil {
		return
	}
	maxRehash, err = fm.GetHeaderInt(maxRehashHeaderSlot)
	if err != nil {
		return
	}

	var alg int64
	alg, err = fm.GetHeaderInt(scramblerHeaderSlot)
	if err != nil {
		return
	}
	internalAlg = alg == 1

	if maxDepth <= offset {
		err = fmt.Errorf("header holds a max depth not greater than its offset")
	}

	return
}
