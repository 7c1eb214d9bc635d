package inspector

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dargueta/fatboot"
	"github.com/dargueta/fatboot/file_systems/fat"
	"github.com/gocarina/gocsv"
)

// Format selects how a boot sector is written out.
type Format string

const (
	FormatText    = Format("text")
	FormatSummary = Format("summary")
	FormatJSON    = Format("json")
	FormatCSV     = Format("csv")
)

// Formats lists every supported output format.
var Formats = []Format{FormatText, FormatSummary, FormatJSON, FormatCSV}

// ParseFormat converts a format name to a [Format].
func ParseFormat(name string) (Format, error) {
	for _, format := range Formats {
		if string(format) == name {
			return format, nil
		}
	}
	return "", fatboot.ErrInvalidArgument.WithMessage(
		fmt.Sprintf("unrecognized output format %q", name))
}

// Write renders the boot sector in the given format.
func Write(w io.Writer, bs *fat.BootSector, format Format) error {
	switch format {
	case FormatText:
		return WriteText(w, bs)
	case FormatSummary:
		return WriteSummary(w, bs)
	case FormatJSON:
		return WriteJSON(w, bs)
	case FormatCSV:
		return WriteCSV(w, bs)
	default:
		return fatboot.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("unrecognized output format %q", format))
	}
}

// WriteText writes one `name: value` line per field, in on-disk order.
func WriteText(w io.Writer, bs *fat.BootSector) error {
	for _, field := range bs.Fields() {
		_, err := fmt.Fprintf(w, "%s: %s\n", field.Name, field.String())
		if err != nil {
			return fatboot.ErrIOFailed.Wrap(err)
		}
	}
	return nil
}

// WriteSummary writes the human-readable summary from [fat.Describe].
func WriteSummary(w io.Writer, bs *fat.BootSector) error {
	for _, line := range fat.Describe(bs) {
		_, err := fmt.Fprintf(w, "%s: %s\n", line.Label, line.Value)
		if err != nil {
			return fatboot.ErrIOFailed.Wrap(err)
		}
	}
	return nil
}

// WriteJSON writes the boot sector as a single JSON object whose keys are in on-disk
// order. Raw byte fields are written as lowercase hex strings.
func WriteJSON(w io.Writer, bs *fat.BootSector) error {
	serialized, err := json.MarshalIndent(bs.HexRecord(), "", "  ")
	if err != nil {
		return fatboot.ErrIOFailed.Wrap(err)
	}

	serialized = append(serialized, '\n')
	_, err = w.Write(serialized)
	if err != nil {
		return fatboot.ErrIOFailed.Wrap(err)
	}
	return nil
}

type csvRow struct {
	Offset uint   `csv:"offset"`
	Width  uint   `csv:"width"`
	Name   string `csv:"name"`
	Kind   string `csv:"kind"`
	Value  string `csv:"value"`
}

// WriteCSV writes one row per field with its offset, width, and kind. Raw byte
// fields are written as lowercase hex strings.
func WriteCSV(w io.Writer, bs *fat.BootSector) error {
	rows := make([]csvRow, 0, fat.FieldCount)
	for _, field := range bs.Fields() {
		value := field.String()
		if field.Kind == fat.KindRawBytes {
			value = hex.EncodeToString(field.Raw)
		}

		rows = append(rows, csvRow{
			Offset: field.Offset,
			Width:  field.Width,
			Name:   field.Name,
			Kind:   field.Kind.String(),
			Value:  value,
		})
	}

	err := gocsv.Marshal(rows, w)
	if err != nil {
		return fatboot.ErrIOFailed.Wrap(err)
	}
	return nil
}

// WriteReport writes the boot sector in the given format, followed by a blank line
// and a hex dump of the FAT region if the report has one.
func WriteReport(w io.Writer, report *Report, format Format) error {
	err := Write(w, report.BootSector, format)
	if err != nil {
		return err
	}

	if report.FATRegion == nil {
		return nil
	}

	_, err = fmt.Fprintln(w)
	if err != nil {
		return fatboot.ErrIOFailed.Wrap(err)
	}
	return WriteFATRegion(w, report.FATRegion)
}

// WriteLayout writes the boot sector field table, one field per line.
func WriteLayout(w io.Writer) error {
	for _, spec := range fat.Layout() {
		_, err := fmt.Fprintf(
			w, "%3d  %3d  %-13s  %s\n", spec.Offset, spec.Width, spec.Kind, spec.Name)
		if err != nil {
			return fatboot.ErrIOFailed.Wrap(err)
		}
	}
	return nil
}

// WriteFATRegion writes the raw FAT region as a hex dump.
func WriteFATRegion(w io.Writer, region []byte) error {
	dumper := hex.Dumper(w)
	_, err := dumper.Write(region)
	if err == nil {
		err = dumper.Close()
	}
	if err != nil {
		return fatboot.ErrIOFailed.Wrap(err)
	}
	return nil
}
