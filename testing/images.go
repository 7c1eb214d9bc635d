package testing

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// FloppyGeometry describes the boot sector values used by [CreateFloppyImage].
type FloppyGeometry struct {
	OEM               string
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntries       uint16
	TotalSectors      uint16
	MediaDescriptor   uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	DriveNumber       uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       string
	FileSystemType    string
}

// Floppy144M is the geometry of a standard 3.5" 1.44 MB floppy formatted with FAT12.
var Floppy144M = FloppyGeometry{
	OEM:               "MSWIN4.1",
	BytesPerSector:    512,
	SectorsPerCluster: 1,
	ReservedSectors:   1,
	NumFATs:           2,
	RootEntries:       224,
	TotalSectors:      2880,
	MediaDescriptor:   0xF0,
	SectorsPerFAT:     9,
	SectorsPerTrack:   18,
	NumHeads:          2,
	HiddenSectors:     0,
	DriveNumber:       0,
	BootSignature:     0x29,
	VolumeID:          0x1234ABCD,
	VolumeLabel:       "NO NAME",
	FileSystemType:    "FAT12",
}

// CreateRandomImage creates an image with the given number of blocks and bytes per
// block, filled with random data. It is guaranteed to either return a valid slice
// or fail the test and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}

// padText copies `text` into a field of `width` bytes, padding with spaces.
func padText(field []byte, text string, t *testing.T) {
	require.LessOrEqualf(t, len(text), len(field), "text %q too long for field", text)
	for i := range field {
		if i < len(text) {
			field[i] = text[i]
		} else {
			field[i] = ' '
		}
	}
}

// CreateBootSector builds a 512-byte boot sector from the geometry. The boot code
// area is filled with a recognizable pattern and the sector ends with 0x55 0xAA.
func CreateBootSector(geometry FloppyGeometry, t *testing.T) []byte {
	sector := make([]byte, 512)

	// BS_jmpBoot
	sector[0] = 0xEB
	sector[1] = 0x3C
	sector[2] = 0x90

	padText(sector[3:11], geometry.OEM, t)
	binary.LittleEndian.PutUint16(sector[11:13], geometry.BytesPerSector)
	sector[13] = geometry.SectorsPerCluster
	binary.LittleEndian.PutUint16(sector[14:16], geometry.ReservedSectors)
	sector[16] = geometry.NumFATs
	binary.LittleEndian.PutUint16(sector[17:19], geometry.RootEntries)
	binary.LittleEndian.PutUint16(sector[19:21], geometry.TotalSectors)
	sector[21] = geometry.MediaDescriptor
	binary.LittleEndian.PutUint16(sector[22:24], geometry.SectorsPerFAT)
	binary.LittleEndian.PutUint16(sector[24:26], geometry.SectorsPerTrack)
	binary.LittleEndian.PutUint16(sector[26:28], geometry.NumHeads)
	binary.LittleEndian.PutUint32(sector[28:32], geometry.HiddenSectors)
	// sector[32:36] is the 32-bit total sector count, unused on small disks.
	sector[36] = geometry.DriveNumber
	sector[38] = geometry.BootSignature
	binary.LittleEndian.PutUint32(sector[39:43], geometry.VolumeID)
	padText(sector[43:54], geometry.VolumeLabel, t)
	padText(sector[54:62], geometry.FileSystemType, t)

	for i := 62; i < 510; i++ {
		sector[i] = byte(i)
	}

	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

// CreateFloppyImage creates a full disk image with the given geometry. Every copy
// of the FAT gets the same contents: the media descriptor, two 0xFF bytes, and a
// few allocated clusters.
func CreateFloppyImage(geometry FloppyGeometry, t *testing.T) []byte {
	sectorSize := uint(geometry.BytesPerSector)
	image := make([]byte, sectorSize*uint(geometry.TotalSectors))
	require.GreaterOrEqual(t, len(image), 512, "image can't hold a boot sector")

	copy(image, CreateBootSector(geometry, t))

	fatSize := sectorSize * uint(geometry.SectorsPerFAT)
	fatStart := sectorSize * uint(geometry.ReservedSectors)
	for i := uint(0); i < uint(geometry.NumFATs); i++ {
		table := image[fatStart+i*fatSize : fatStart+(i+1)*fatSize]
		table[0] = geometry.MediaDescriptor
		table[1] = 0xFF
		table[2] = 0xFF
		table[3] = 0x03
		table[4] = 0x40
		table[5] = 0x00
	}
	return image
}

// LoadDiskImage returns a seekable stream over a copy of the image bytes. Writes to
// the stream do not affect `imageBytes`, and the stream cannot grow.
func LoadDiskImage(imageBytes []byte, t *testing.T) io.ReadWriteSeeker {
	require.Greater(t, len(imageBytes), 0, "image is empty")

	buffer := make([]byte, len(imageBytes))
	copy(buffer, imageBytes)
	return bytesextra.NewReadWriteSeeker(buffer)
}
