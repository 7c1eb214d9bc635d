// Package fat decodes the boot sector of FAT12 and FAT16 disk images and reads the
// raw FAT region that follows it.
package fat

import "fmt"

// BootSectorSize is the size of the boot sector in bytes. The layout always sums to
// exactly this.
const BootSectorSize = 512

// FieldKind determines how the bytes of a boot sector field are interpreted.
type FieldKind int

const (
	// KindRawBytes fields are kept as the exact bytes found on disk. No text decoding,
	// trimming, or null-stripping is done.
	KindRawBytes FieldKind = iota
	// KindUnsignedIntLE fields are little-endian unsigned integers.
	KindUnsignedIntLE
	// KindHexSignature fields are little-endian unsigned integers rendered as
	// uppercase hexadecimal with a "0X" prefix.
	KindHexSignature
)

func (k FieldKind) String() string {
	switch k {
	case KindRawBytes:
		return "raw_bytes"
	case KindUnsignedIntLE:
		return "uint_le"
	case KindHexSignature:
		return "hex_signature"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FieldSpec describes a single field of the boot sector.
type FieldSpec struct {
	Name   string
	Width  uint
	Kind   FieldKind
	Offset uint
}

// Indexes of the fields in the boot sector, in on-disk order.
const (
	FieldIgnore1 = iota
	FieldOEM
	FieldBytesPerSector
	FieldSectorsPerCluster
	FieldReservedSectors
	FieldFATs
	FieldRootDirs
	FieldSectorCount
	FieldIgnore2
	FieldSectorsPerFAT
	FieldSectorsPerTrack
	FieldNumberOfHeads
	FieldHiddenSectors
	FieldTotalSectorCountForFAT32
	FieldDriveNumber
	FieldIgnore4
	FieldBootSignature
	FieldVolumeID
	FieldVolumeLabel
	FieldFileSystemType
	FieldBootCode
	FieldBootablePartitionSignature

	// FieldCount is the number of fields in the boot sector.
	FieldCount
)

// bootSectorLayout is the field table without offsets. Offsets are never written
// down; they're computed from the widths of the preceding fields.
var bootSectorLayout = [FieldCount]FieldSpec{
	FieldIgnore1:                    {Name: "ignore1", Width: 3, Kind: KindRawBytes},
	FieldOEM:                        {Name: "oem", Width: 8, Kind: KindRawBytes},
	FieldBytesPerSector:             {Name: "bytes_per_sector", Width: 2, Kind: KindUnsignedIntLE},
	FieldSectorsPerCluster:          {Name: "sectors_per_cluster", Width: 1, Kind: KindUnsignedIntLE},
	FieldReservedSectors:            {Name: "reserved_sectors", Width: 2, Kind: KindUnsignedIntLE},
	FieldFATs:                       {Name: "fats", Width: 1, Kind: KindUnsignedIntLE},
	FieldRootDirs:                   {Name: "root_dirs", Width: 2, Kind: KindUnsignedIntLE},
	FieldSectorCount:                {Name: "sector_count", Width: 2, Kind: KindUnsignedIntLE},
	FieldIgnore2:                    {Name: "ignore2", Width: 1, Kind: KindRawBytes},
	FieldSectorsPerFAT:              {Name: "sectors_per_fat", Width: 2, Kind: KindUnsignedIntLE},
	FieldSectorsPerTrack:            {Name: "sectors_per_track", Width: 2, Kind: KindUnsignedIntLE},
	FieldNumberOfHeads:              {Name: "number_of_heads", Width: 2, Kind: KindUnsignedIntLE},
	FieldHiddenSectors:              {Name: "hidden_sectors", Width: 4, Kind: KindRawBytes},
	FieldTotalSectorCountForFAT32:   {Name: "total_sector_count_for_fat32", Width: 4, Kind: KindUnsignedIntLE},
	FieldDriveNumber:                {Name: "drive_number", Width: 1, Kind: KindUnsignedIntLE},
	FieldIgnore4:                    {Name: "ignore4", Width: 1, Kind: KindRawBytes},
	FieldBootSignature:              {Name: "boot_signature", Width: 1, Kind: KindHexSignature},
	FieldVolumeID:                   {Name: "volume_id", Width: 4, Kind: KindUnsignedIntLE},
	FieldVolumeLabel:                {Name: "volume_label", Width: 11, Kind: KindRawBytes},
	FieldFileSystemType:             {Name: "file_system_type", Width: 8, Kind: KindRawBytes},
	FieldBootCode:                   {Name: "boot_code", Width: 448, Kind: KindRawBytes},
	FieldBootablePartitionSignature: {Name: "bootable_partition_signature", Width: 2, Kind: KindHexSignature},
}

var layoutWithOffsets [FieldCount]FieldSpec

func init() {
	var offset uint
	for i, spec := range bootSectorLayout {
		spec.Offset = offset
		layoutWithOffsets[i] = spec
		offset += spec.Width
	}

	if offset != BootSectorSize {
		panic(fmt.Errorf(
			"boot sector layout is %d bytes, expected %d", offset, BootSectorSize))
	}
}

// Layout returns the boot sector field table in on-disk order, with offsets filled in.
// The returned slice is a copy and may be modified freely.
func Layout() []FieldSpec {
	specs := make([]FieldSpec, FieldCount)
	copy(specs, layoutWithOffsets[:])
	return specs
}

// FieldOffset returns the byte offset of the named field from the beginning of the
// boot sector. The second return value is false if no field has that name.
func FieldOffset(name string) (uint, bool) {
	for _, spec := range layoutWithOffsets {
		if spec.Name == name {
			return spec.Offset, true
		}
	}
	return 0, false
}
