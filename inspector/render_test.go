package inspector_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dargueta/fatboot"
	"github.com/dargueta/fatboot/file_systems/fat"
	"github.com/dargueta/fatboot/inspector"
	fattest "github.com/dargueta/fatboot/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floppyBootSector(t *testing.T) *fat.BootSector {
	sector := fattest.CreateBootSector(fattest.Floppy144M, t)
	bs, err := fat.DecodeBootSector(sector)
	require.NoError(t, err)
	return bs
}

func TestParseFormat(t *testing.T) {
	for _, format := range inspector.Formats {
		parsed, err := inspector.ParseFormat(string(format))
		require.NoError(t, err)
		assert.Equal(t, format, parsed)
	}

	_, err := inspector.ParseFormat("xml")
	assert.ErrorIs(t, err, fatboot.ErrInvalidArgument)
}

func TestWriteText(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteText(&buffer, floppyBootSector(t)))

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	require.Len(t, lines, fat.FieldCount)

	assert.Equal(t, `ignore1: "\xeb<\x90"`, lines[0])
	assert.Equal(t, `oem: "MSWIN4.1"`, lines[1])
	assert.Equal(t, "bytes_per_sector: 512", lines[2])
	assert.Equal(t, "fats: 2", lines[5])
	assert.Equal(t, "boot_signature: 0X29", lines[16])
	assert.Equal(t, `volume_label: "NO NAME    "`, lines[18])
	assert.Equal(t, "bootable_partition_signature: 0XAA55", lines[21])

	// Order must follow the disk, not the alphabet.
	for i, spec := range fat.Layout() {
		assert.Truef(
			t,
			strings.HasPrefix(lines[i], spec.Name+": "),
			"line %d should be %q, got %q",
			i,
			spec.Name,
			lines[i])
	}
}

func TestWriteSummary(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteSummary(&buffer, floppyBootSector(t)))

	output := buffer.String()
	assert.True(t, strings.HasPrefix(output, "OEM: MSWIN4.1\nBytes per sector: 512\n"))
	assert.Contains(t, output, "File system type: FAT12\n")
}

func TestWriteJSON(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteJSON(&buffer, floppyBootSector(t)))

	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &decoded))
	assert.Len(t, decoded, fat.FieldCount)
	assert.EqualValues(t, 512, decoded["bytes_per_sector"])
	assert.Equal(t, "4d5357494e342e31", decoded["oem"])
	assert.Equal(t, "0XAA55", decoded["bootable_partition_signature"])

	output := buffer.String()
	assert.Less(
		t,
		strings.Index(output, `"ignore1"`),
		strings.Index(output, `"bytes_per_sector"`),
		"keys are out of order")
	assert.Less(
		t,
		strings.Index(output, `"boot_code"`),
		strings.Index(output, `"bootable_partition_signature"`),
		"keys are out of order")
}

func TestWriteCSV(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteCSV(&buffer, floppyBootSector(t)))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, fat.FieldCount+1)
	assert.Equal(t, "offset,width,name,kind,value", lines[0])
	assert.Equal(t, "0,3,ignore1,raw_bytes,eb3c90", lines[1])
	assert.Equal(t, "11,2,bytes_per_sector,uint_le,512", lines[3])
	assert.Equal(t, "38,1,boot_signature,hex_signature,0X29", lines[17])
	assert.Equal(t, "510,2,bootable_partition_signature,hex_signature,0XAA55", lines[22])
}

func TestWrite__Dispatch(t *testing.T) {
	bs := floppyBootSector(t)

	for _, format := range inspector.Formats {
		buffer := bytes.Buffer{}
		assert.NoErrorf(t, inspector.Write(&buffer, bs, format), "format %q failed", format)
		assert.NotZerof(t, buffer.Len(), "format %q wrote nothing", format)
	}

	err := inspector.Write(&bytes.Buffer{}, bs, inspector.Format("yaml"))
	assert.ErrorIs(t, err, fatboot.ErrInvalidArgument)
}

func TestWriteLayout(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteLayout(&buffer))

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	require.Len(t, lines, fat.FieldCount)
	assert.Equal(t, "  0    3  raw_bytes      ignore1", lines[0])
	assert.Equal(t, "510    2  hex_signature  bootable_partition_signature", lines[21])
}

func TestWriteFATRegion(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteFATRegion(&buffer, []byte{0xF0, 0xFF, 0xFF}))
	assert.True(t, strings.HasPrefix(buffer.String(), "00000000  f0 ff ff"))
}

// shortWriter accepts a fixed number of writes, then fails every one after that.
type shortWriter struct {
	writesLeft int
	buffer     bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.writesLeft <= 0 {
		return 0, errors.New("disk full")
	}
	w.writesLeft--
	return w.buffer.Write(p)
}

func TestWriteReport__WithoutFATRegion(t *testing.T) {
	report := inspector.Report{BootSector: floppyBootSector(t)}

	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteReport(&buffer, &report, inspector.FormatText))

	expected := bytes.Buffer{}
	require.NoError(t, inspector.WriteText(&expected, report.BootSector))
	assert.Equal(t, expected.String(), buffer.String())
}

func TestWriteReport__WithFATRegion(t *testing.T) {
	report := inspector.Report{
		BootSector: floppyBootSector(t),
		FATRegion:  []byte{0xF0, 0xFF, 0xFF},
	}

	buffer := bytes.Buffer{}
	require.NoError(t, inspector.WriteReport(&buffer, &report, inspector.FormatText))
	assert.Contains(
		t, buffer.String(), "bootable_partition_signature: 0XAA55\n\n00000000  f0 ff ff")
}

func TestWriteReport__SeparatorWriteFails(t *testing.T) {
	report := inspector.Report{
		BootSector: floppyBootSector(t),
		FATRegion:  []byte{0xF0, 0xFF, 0xFF},
	}

	// Let every field line through, then fail on the blank separator line.
	writer := shortWriter{writesLeft: fat.FieldCount}
	err := inspector.WriteReport(&writer, &report, inspector.FormatText)
	assert.ErrorIs(t, err, fatboot.ErrIOFailed)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, strings.HasSuffix(writer.buffer.String(), "0XAA55\n"))
}
