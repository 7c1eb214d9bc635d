// Package inspector opens disk images and decodes their boot sectors.
package inspector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dargueta/fatboot"
	"github.com/dargueta/fatboot/file_systems/fat"
	"github.com/dargueta/fatboot/logger"
	"go.uber.org/zap"
)

const (
	DefaultImagePath  = "intro.img"
	DefaultSectorSize = 512
	// MaxSectorSize is the largest sector size accepted. FAT itself tops out at
	// 4096 bytes per sector and 32 KiB per cluster.
	MaxSectorSize = 32768
)

// Options controls what [Inspect] reads from the image.
type Options struct {
	// ImagePath is the path to the raw disk image.
	ImagePath string
	// SectorSize is the number of bytes in a sector. The size of the FAT region is
	// computed from this, not from the boot sector.
	SectorSize uint
	// ReadFATRegion makes Inspect read the `SectorSize * fats` bytes immediately
	// following the boot sector.
	ReadFATRegion bool
	// VerifyFATCopies makes Inspect read every copy of the FAT and compare them.
	VerifyFATCopies bool
	// Logger receives debug events. Nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options used when nothing else is specified.
func DefaultOptions() Options {
	return Options{
		ImagePath:  DefaultImagePath,
		SectorSize: DefaultSectorSize,
	}
}

// Validate checks the options themselves. It does not look at the image.
func (o Options) Validate() error {
	if o.ImagePath == "" {
		return fatboot.ErrInvalidArgument.WithMessage("image path is empty")
	}
	if o.SectorSize == 0 {
		return fatboot.ErrInvalidArgument.WithMessage("sector size must be nonzero")
	}
	if o.SectorSize > MaxSectorSize {
		return fatboot.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("sector size can be at most %d, got %d", MaxSectorSize, o.SectorSize))
	}
	return nil
}

// Report is everything read from a single image.
type Report struct {
	ImagePath  string
	BootSector *fat.BootSector
	// FATRegion is nil unless Options.ReadFATRegion was set.
	FATRegion []byte
	// FATCopies is nil unless Options.VerifyFATCopies was set.
	FATCopies *fat.FATCopies
}

// Inspect opens the image, decodes its boot sector, and reads whatever else the
// options ask for. The image is always closed before returning.
func Inspect(options Options) (*Report, error) {
	err := options.Validate()
	if err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = logger.Nop()
	}

	imageFile, err := os.Open(options.ImagePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fatboot.ErrNotFound.WithMessage(
			fmt.Sprintf("could not open image: %q", options.ImagePath))
	} else if err != nil {
		return nil, fatboot.ErrIOFailed.Wrap(err)
	}
	defer imageFile.Close()

	log.Debug("opened image", zap.String("path", options.ImagePath))

	bootSector, err := fat.ReadBootSector(imageFile)
	if err != nil {
		return nil, err
	}

	log.Debug(
		"decoded boot sector",
		zap.Uint16("bytes_per_sector", bootSector.BytesPerSector()),
		zap.Uint8("fats", bootSector.FATs()),
		zap.String("boot_signature", bootSector.BootSignature()),
	)

	report := Report{
		ImagePath:  options.ImagePath,
		BootSector: bootSector,
	}

	if options.ReadFATRegion {
		report.FATRegion, err = fat.ReadFATRegion(
			imageFile, options.SectorSize, uint(bootSector.FATs()))
		if err != nil {
			return nil, err
		}
		log.Debug("read FAT region", zap.Int("size", len(report.FATRegion)))
	}

	if options.VerifyFATCopies {
		report.FATCopies, err = fat.ReadFATCopies(imageFile, bootSector, options.SectorSize)
		if err != nil {
			return nil, err
		}
		log.Debug("read FAT copies", zap.Int("copies", report.FATCopies.Len()))
	}

	return &report, nil
}
