package fat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	bitmap "github.com/boljen/go-bitmap"
	"github.com/dargueta/fatboot"
	"github.com/hashicorp/go-multierror"
)

// ReadFATRegion reads `sectorSize * fatCount` bytes from the current position of
// the stream, which should be immediately after the boot sector. The bytes are
// returned as-is; FAT entries are not unpacked.
//
// If the length doesn't fit in a uint, it's treated as math.MaxUint, which no
// stream can supply.
func ReadFATRegion(stream io.Reader, sectorSize, fatCount uint) ([]byte, error) {
	return readExactly(stream, saturatingMul(sectorSize, fatCount))
}

// saturatingMul returns a * b, or math.MaxUint if the product overflows.
func saturatingMul(a, b uint) uint {
	if a != 0 && b > math.MaxUint/a {
		return math.MaxUint
	}
	return a * b
}

// readExactly reads `length` bytes from the stream. The buffer grows as data
// arrives, so a huge length against a short stream fails without allocating
// `length` bytes up front.
func readExactly(stream io.Reader, length uint) ([]byte, error) {
	limit := int64(math.MaxInt64)
	if uint64(length) < uint64(math.MaxInt64) {
		limit = int64(length)
	}

	data, err := io.ReadAll(io.LimitReader(stream, limit))
	if err != nil {
		return nil, fatboot.ErrIOFailed.Wrap(err)
	}
	if uint(len(data)) < length {
		return nil, fatboot.NewTruncatedInputError(
			fatboot.RegionFATRegion, length, uint(len(data)))
	}
	return data, nil
}

// FATCopies holds every copy of the file allocation table found on the disk.
type FATCopies struct {
	copies  [][]byte
	matches bitmap.Bitmap
}

// ReadFATCopies reads all copies of the FAT, as given by the `fats` and
// `sectors_per_fat` fields of the boot sector. The first copy begins right after
// the reserved sectors. The stream's position is undefined afterwards.
func ReadFATCopies(stream io.ReadSeeker, bootSector *BootSector, sectorSize uint) (*FATCopies, error) {
	totalCopies := int(bootSector.FATs())
	copyLength := saturatingMul(uint(bootSector.SectorsPerFAT()), sectorSize)
	totalLength := saturatingMul(copyLength, uint(totalCopies))

	start := saturatingMul(uint(bootSector.ReservedSectors()), sectorSize)
	if uint64(start) > uint64(math.MaxInt64) {
		return nil, fatboot.NewTruncatedInputError(fatboot.RegionFATRegion, totalLength, 0)
	}

	_, err := stream.Seek(int64(start), io.SeekStart)
	if err != nil {
		return nil, fatboot.ErrIOFailed.Wrap(err)
	}

	fats := FATCopies{
		copies:  make([][]byte, totalCopies),
		matches: bitmap.New(totalCopies),
	}

	for i := 0; i < totalCopies; i++ {
		table, err := readExactly(stream, copyLength)

		var truncated *fatboot.TruncatedInputError
		if errors.As(err, &truncated) {
			// Report the shortfall against the whole set of copies.
			return nil, fatboot.NewTruncatedInputError(
				fatboot.RegionFATRegion,
				totalLength,
				saturatingMul(copyLength, uint(i))+truncated.Available)
		} else if err != nil {
			return nil, err
		}

		fats.copies[i] = table
		fats.matches.Set(i, bytes.Equal(table, fats.copies[0]))
	}
	return &fats, nil
}

// Len returns the number of FAT copies read.
func (f *FATCopies) Len() int {
	return len(f.copies)
}

// Copy returns the raw bytes of the `index`th copy of the FAT.
func (f *FATCopies) Copy(index int) []byte {
	return f.copies[index]
}

// Matches returns true if the `index`th copy is identical to the first one.
func (f *FATCopies) Matches(index int) bool {
	return f.matches.Get(index)
}

// Verify returns an error for every copy of the FAT that differs from the first one,
// or nil if all of them are the same.
func (f *FATCopies) Verify() error {
	var result *multierror.Error
	for i := 1; i < len(f.copies); i++ {
		if !f.Matches(i) {
			result = multierror.Append(
				result,
				fatboot.ErrFATMismatch.WithMessage(
					fmt.Sprintf("copy %d does not match the original", i)))
		}
	}
	return result.ErrorOrNil()
}
