package fat

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Velocidex/ordereddict"
	"github.com/dargueta/fatboot"
	"github.com/noxer/bytewriter"
)

// Field is a single decoded boot sector field.
type Field struct {
	FieldSpec
	// Raw is a copy of the bytes of the field exactly as they were on disk.
	Raw []byte
	// Uint is the little-endian value of the field. It's only meaningful for fields
	// of kind KindUnsignedIntLE and KindHexSignature.
	Uint uint64
}

// Value returns the decoded value of the field: a []byte for raw fields, a uint64
// for integers, and a string for hex signatures.
func (f Field) Value() interface{} {
	switch f.Kind {
	case KindUnsignedIntLE:
		return f.Uint
	case KindHexSignature:
		return FormatHexSignature(f.Uint)
	default:
		return cloneBytes(f.Raw)
	}
}

// String renders the value for a `name: value` dump. Raw bytes are quoted with
// non-printable bytes escaped.
func (f Field) String() string {
	switch f.Kind {
	case KindUnsignedIntLE:
		return strconv.FormatUint(f.Uint, 10)
	case KindHexSignature:
		return FormatHexSignature(f.Uint)
	default:
		return strconv.Quote(string(f.Raw))
	}
}

// FormatHexSignature formats a signature value as "0X" followed by uppercase hex
// digits, without zero padding.
func FormatHexSignature(value uint64) string {
	return fmt.Sprintf("0X%X", value)
}

func cloneBytes(raw []byte) []byte {
	return append([]byte(nil), raw...)
}

// decodeUintLE interprets up to eight bytes as a little-endian unsigned integer.
func decodeUintLE(raw []byte) uint64 {
	var padded [8]byte
	copy(padded[:], raw)
	return binary.LittleEndian.Uint64(padded[:])
}

// BootSector is an immutable, decoded boot sector. The zero value is not useful;
// create one with [DecodeBootSector] or [ReadBootSector].
type BootSector struct {
	fields [FieldCount]Field
}

// DecodeBootSector decodes the first [BootSectorSize] bytes of `buffer`. Bytes past
// that are ignored.
//
// If the buffer is too short, it returns nil and a [fatboot.TruncatedInputError].
func DecodeBootSector(buffer []byte) (*BootSector, error) {
	bootSector := BootSector{}
	cursor := uint(0)

	for i, spec := range bootSectorLayout {
		end := cursor + spec.Width
		if end > uint(len(buffer)) {
			return nil, fatboot.NewTruncatedInputError(
				fatboot.RegionBootSector, BootSectorSize, uint(len(buffer)))
		}

		raw := make([]byte, spec.Width)
		copy(raw, buffer[cursor:end])

		field := Field{FieldSpec: spec, Raw: raw}
		field.Offset = cursor
		if spec.Kind != KindRawBytes {
			field.Uint = decodeUintLE(raw)
		}

		bootSector.fields[i] = field
		cursor = end
	}

	return &bootSector, nil
}

// ReadBootSector reads exactly [BootSectorSize] bytes from the stream and decodes
// them. On success the stream is positioned immediately after the boot sector.
func ReadBootSector(reader io.Reader) (*BootSector, error) {
	buffer := make([]byte, BootSectorSize)

	n, err := io.ReadFull(reader, buffer)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fatboot.NewTruncatedInputError(
			fatboot.RegionBootSector, BootSectorSize, uint(n))
	} else if err != nil {
		return nil, fatboot.ErrIOFailed.Wrap(err)
	}

	return DecodeBootSector(buffer)
}

// Fields returns a copy of every field of the boot sector in on-disk order.
func (bs *BootSector) Fields() []Field {
	fields := make([]Field, FieldCount)
	for i := range bs.fields {
		fields[i] = bs.Field(i)
	}
	return fields
}

// Field returns a copy of the field at the given index. The index must be one of
// the Field* constants, i.e. in [0, FieldCount); anything else panics.
func (bs *BootSector) Field(index int) Field {
	field := bs.fields[index]
	field.Raw = cloneBytes(field.Raw)
	return field
}

// Record returns the boot sector as an ordered name -> value mapping. Iteration and
// JSON serialization both follow on-disk order.
func (bs *BootSector) Record() *ordereddict.Dict {
	record := ordereddict.NewDict()
	for _, field := range bs.fields {
		record.Set(field.Name, field.Value())
	}
	return record
}

// Bytes re-encodes the boot sector into its 512-byte on-disk form.
func (bs *BootSector) Bytes() ([]byte, error) {
	sector := make([]byte, BootSectorSize)
	writer := bytewriter.New(sector)

	for _, field := range bs.fields {
		var err error
		if field.Kind == KindRawBytes {
			_, err = writer.Write(field.Raw)
		} else {
			var encoded [8]byte
			binary.LittleEndian.PutUint64(encoded[:], field.Uint)
			_, err = writer.Write(encoded[:field.Width])
		}

		if err != nil {
			return nil, fatboot.ErrIOFailed.Wrap(
				fmt.Errorf("failed to write field %q: %w", field.Name, err))
		}
	}
	return sector, nil
}

// raw returns a copy of the bytes of a raw field. The record itself is never
// handed out.
func (bs *BootSector) raw(index int) []byte {
	return cloneBytes(bs.fields[index].Raw)
}

func (bs *BootSector) Ignore1() []byte        { return bs.raw(FieldIgnore1) }
func (bs *BootSector) OEM() []byte            { return bs.raw(FieldOEM) }
func (bs *BootSector) Ignore2() []byte        { return bs.raw(FieldIgnore2) }
func (bs *BootSector) HiddenSectors() []byte  { return bs.raw(FieldHiddenSectors) }
func (bs *BootSector) Ignore4() []byte        { return bs.raw(FieldIgnore4) }
func (bs *BootSector) VolumeLabel() []byte    { return bs.raw(FieldVolumeLabel) }
func (bs *BootSector) FileSystemType() []byte { return bs.raw(FieldFileSystemType) }
func (bs *BootSector) BootCode() []byte       { return bs.raw(FieldBootCode) }

func (bs *BootSector) BytesPerSector() uint16 {
	return uint16(bs.fields[FieldBytesPerSector].Uint)
}

func (bs *BootSector) SectorsPerCluster() uint8 {
	return uint8(bs.fields[FieldSectorsPerCluster].Uint)
}

func (bs *BootSector) ReservedSectors() uint16 {
	return uint16(bs.fields[FieldReservedSectors].Uint)
}

// FATs returns the number of copies of the FAT on the disk.
func (bs *BootSector) FATs() uint8 {
	return uint8(bs.fields[FieldFATs].Uint)
}

// RootDirs returns the maximum number of entries in the root directory.
func (bs *BootSector) RootDirs() uint16 {
	return uint16(bs.fields[FieldRootDirs].Uint)
}

func (bs *BootSector) SectorCount() uint16 {
	return uint16(bs.fields[FieldSectorCount].Uint)
}

func (bs *BootSector) SectorsPerFAT() uint16 {
	return uint16(bs.fields[FieldSectorsPerFAT].Uint)
}

func (bs *BootSector) SectorsPerTrack() uint16 {
	return uint16(bs.fields[FieldSectorsPerTrack].Uint)
}

func (bs *BootSector) NumberOfHeads() uint16 {
	return uint16(bs.fields[FieldNumberOfHeads].Uint)
}

func (bs *BootSector) TotalSectorCountForFAT32() uint32 {
	return uint32(bs.fields[FieldTotalSectorCountForFAT32].Uint)
}

func (bs *BootSector) DriveNumber() uint8 {
	return uint8(bs.fields[FieldDriveNumber].Uint)
}

// BootSignature returns the extended boot signature formatted as "0X..".
func (bs *BootSector) BootSignature() string {
	return FormatHexSignature(bs.fields[FieldBootSignature].Uint)
}

func (bs *BootSector) VolumeID() uint32 {
	return uint32(bs.fields[FieldVolumeID].Uint)
}

// BootablePartitionSignature returns the last two bytes of the sector as a
// little-endian value formatted as "0X..". Bootable media have "0XAA55".
func (bs *BootSector) BootablePartitionSignature() string {
	return FormatHexSignature(bs.fields[FieldBootablePartitionSignature].Uint)
}

// HasExtendedSignature returns true if the boot signature is 0x28 or 0x29, meaning
// the volume ID, label, and file system type fields are present. This is purely
// informational; decoding never depends on it.
func (bs *BootSector) HasExtendedSignature() bool {
	signature := bs.fields[FieldBootSignature].Uint
	return signature == 0x28 || signature == 0x29
}

// HexRecord is like Record but with raw fields rendered as lowercase hex strings.
func (bs *BootSector) HexRecord() *ordereddict.Dict {
	record := ordereddict.NewDict()
	for _, field := range bs.fields {
		if field.Kind == KindRawBytes {
			record.Set(field.Name, hex.EncodeToString(field.Raw))
		} else {
			record.Set(field.Name, field.Value())
		}
	}
	return record
}

