package migrate

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// srcEncoding marks Unicode encodings we can recognize by BOM. Everything
// else is encUnknown and goes through charset sniffing later.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func isUTF32BigEndianBOM4(buf []byte) bool {
	return buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func isUTF8BOM3(buf []byte) bool {
	return buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return buf[0] == 0xFF && buf[1] == 0xFE
}

// detectUTF sniffs the BOM at the beginning of the buffer. Order matters,
// UTF-32LE starts with the UTF-16LE mark.
func detectUTF(buf []byte) srcEncoding {
	if len(buf) < 4 {
		return encUnknown
	}
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// markupExtensions lists file extensions we treat as legacy markup exports.
var markupExtensions = []string{".html", ".htm", ".txt"}

func hasMarkupExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range markupExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isArchiveFile checks if file is a zip archive, both extension and magic
// bytes must agree.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 261)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}

	kind, err := filetype.Match(buf[:n])
	if err != nil {
		return false, err
	}
	return kind == matchers.TypeZip, nil
}

// sniffMarkup decides if the content with given name could be a legacy markup
// export. Markup has no magic signature of its own so we rely on the
// extension and reject anything with a recognized binary signature.
func sniffMarkup(name string, head []byte) (bool, srcEncoding) {
	if !hasMarkupExtension(name) {
		return false, encUnknown
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return false, encUnknown
	}
	return true, detectUTF(head)
}

// isMarkupFile checks if file looks like a legacy markup export and reports
// its BOM encoding when present.
func isMarkupFile(path string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, encUnknown, err
	}
	ok, enc := sniffMarkup(path, buf[:n])
	return ok, enc, nil
}

// isMarkupInArchive is isMarkupFile for a file inside zip archive.
func isMarkupInArchive(f *zip.File) (bool, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, encUnknown, err
	}
	ok, enc := sniffMarkup(f.FileHeader.Name, buf[:n])
	return ok, enc, nil
}

// selectReader wraps source reader with a decoder matching detected BOM.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder())
	default:
		// this should never happen
		panic("unsupported source encoding requested")
	}
}

// readMarkup reads the whole source decoding it to UTF-8. Sources without a
// BOM are decoded with the forced code page when one was requested, otherwise
// the charset is sniffed from content.
func readMarkup(r io.Reader, enc srcEncoding, forced encoding.Encoding) (string, error) {
	if enc != encUnknown {
		data, err := io.ReadAll(selectReader(r, enc))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if forced != nil {
		data, err := io.ReadAll(transform.NewReader(r, forced.NewDecoder()))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	cr, err := charset.NewReader(r, "text/html")
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(cr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
