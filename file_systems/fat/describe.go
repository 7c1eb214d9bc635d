package fat

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

// SummaryLine is a single human-readable line of a boot sector summary.
type SummaryLine struct {
	Label string
	Value string
}

// TextField converts a space-padded text field from the boot sector to a string. The
// bytes are decoded as code page 437 and cut off at the first space.
func TextField(raw []byte) string {
	if end := bytes.IndexByte(raw, ' '); end >= 0 {
		raw = raw[:end]
	}

	decoded, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		// CP437 maps every byte value, so this can't really happen.
		return string(raw)
	}
	return string(decoded)
}

// Describe gives a short summary of the most interesting fields of the boot sector.
func Describe(bs *BootSector) []SummaryLine {
	uintString := func(value uint64) string {
		return strconv.FormatUint(value, 10)
	}

	return []SummaryLine{
		{"OEM", TextField(bs.OEM())},
		{"Bytes per sector", uintString(uint64(bs.BytesPerSector()))},
		{"Sectors per cluster", uintString(uint64(bs.SectorsPerCluster()))},
		{"Reserved Sectors", uintString(uint64(bs.ReservedSectors()))},
		{"Number of FATs", uintString(uint64(bs.FATs()))},
		{"Max Root Directories", uintString(uint64(bs.RootDirs()))},
		{"Sector count", uintString(uint64(bs.SectorCount()))},
		{"Sectors per FAT", uintString(uint64(bs.SectorsPerFAT()))},
		// The record keeps hidden sectors as raw bytes. This is display-only.
		{"Hidden Sectors", uintString(uint64(binary.LittleEndian.Uint32(bs.HiddenSectors())))},
		{"Volume label", TextField(bs.VolumeLabel())},
		{"File system type", TextField(bs.FileSystemType())},
	}
}
