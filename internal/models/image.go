package models

// Supported sniffed formats. Names match what image.DecodeConfig reports.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

// SupportedFormats enumerates every format the validator accepts.
var SupportedFormats = []string{FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP}

// ImageBlob is a validated inbound image: raw bytes plus the sniffed format.
// The sniffed format always governs; the declared filename is kept only for
// building download names.
type ImageBlob struct {
	Data     []byte
	Format   string
	Filename string
	Width    int
	Height   int
}

func (b *ImageBlob) Size() int64 {
	return int64(len(b.Data))
}

func (b *ImageBlob) Mimetype() string {
	return "image/" + b.Format
}

// IsSupportedFormat reports whether format is in the supported enumeration.
func IsSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}
