package asset

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font/sfnt"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Detected is what sniffing a file revealed.
type Detected struct {
	Type        Type
	Format      string
	ContentType string
	Meta        Meta
}

var fontFormats = map[string]string{
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

// Detect sniffs data and extracts metadata. The declared content type and
// the filename are only consulted when the content itself is not
// recognised, which is the case for SVG.
func Detect(data []byte, contentType, filename string) (Detected, error) {
	kind, _ := filetype.Match(data)

	switch {
	case filetype.IsImage(data):
		d := Detected{Type: TypeImage, Format: kind.Extension, ContentType: kind.MIME.Value}
		d.Meta.Width, d.Meta.Height = imageSize(data)
		return d, nil
	case filetype.IsFont(data):
		d := Detected{Type: TypeFont, Format: kind.Extension, ContentType: kind.MIME.Value}
		d.Meta = fontMeta(data, filename)
		return d, nil
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	switch {
	case strings.HasPrefix(contentType, "image/"):
		format := strings.TrimPrefix(contentType, "image/")
		if i := strings.IndexAny(format, "+;"); i >= 0 {
			format = format[:i]
		}
		d := Detected{Type: TypeImage, Format: format, ContentType: contentType}
		d.Meta.Width, d.Meta.Height = imageSize(data)
		return d, nil
	case strings.HasPrefix(contentType, "font/") || fontFormats[ext] != "":
		if ext == "" || fontFormats[ext] == "" {
			ext = strings.TrimPrefix(contentType, "font/")
		}
		ct := fontFormats[ext]
		if ct == "" {
			ct = contentType
		}
		return Detected{Type: TypeFont, Format: ext, ContentType: ct, Meta: fontMeta(data, filename)}, nil
	}
	return Detected{}, ErrUnsupportedType
}

// imageSize returns the displayed size, honouring EXIF orientation. Formats
// that cannot be decoded report zero.
func imageSize(data []byte) (int, int) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// fontMeta reads family and subfamily from an OpenType name table. For
// compressed formats the filename stands in.
func fontMeta(data []byte, filename string) Meta {
	family, subfamily := "", ""
	if f, err := sfnt.Parse(data); err == nil {
		var buf sfnt.Buffer
		family, _ = f.Name(&buf, sfnt.NameIDFamily)
		subfamily, _ = f.Name(&buf, sfnt.NameIDSubfamily)
	}
	if family == "" {
		base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
		family, subfamily = splitFontName(base)
	}
	style, weight := parseSubfamily(subfamily)
	return Meta{Family: family, Style: style, Weight: weight}
}

var fontWeights = []struct {
	word   string
	weight int
}{
	// Longer words first so "extrabold" does not match "bold".
	{"extralight", 200},
	{"ultralight", 200},
	{"extrabold", 800},
	{"ultrabold", 800},
	{"semibold", 600},
	{"demibold", 600},
	{"regular", 400},
	{"normal", 400},
	{"medium", 500},
	{"light", 300},
	{"black", 900},
	{"heavy", 900},
	{"thin", 100},
	{"bold", 700},
	{"book", 400},
}

// parseSubfamily maps names like "Bold Italic" to a CSS style and weight.
func parseSubfamily(subfamily string) (string, int) {
	s := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(subfamily))
	style := "normal"
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		style = "italic"
	}
	weight := 400
	for _, w := range fontWeights {
		if strings.Contains(s, w.word) {
			weight = w.weight
			break
		}
	}
	return style, weight
}

// splitFontName splits "Inter-BoldItalic" into family and subfamily.
func splitFontName(name string) (string, string) {
	if i := strings.LastIndexAny(name, "-_"); i > 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}
