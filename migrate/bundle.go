package migrate

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"time"

	fixzip "github.com/hidez8891/zip"
)

// bundle collects converted documents into a single zip archive instead of a
// directory tree. Entries are written to a temporary file first so a failed
// run never leaves a truncated archive behind.
type bundle struct {
	final  string
	tmp    string
	fix    bool
	file   *os.File
	zw     *zip.Writer
	sealed bool
}

func newBundle(path string, fix bool) (*bundle, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".bundle-*.zip")
	if err != nil {
		return nil, fmt.Errorf("unable to create bundle: %w", err)
	}
	return &bundle{
		final: path,
		tmp:   f.Name(),
		fix:   fix,
		file:  f,
		zw:    zip.NewWriter(f),
	}, nil
}

// add stores one converted document under the given name. Names use forward
// slashes as zip requires.
func (b *bundle) add(name string, data []byte) error {
	w, err := b.zw.CreateHeader(&zip.FileHeader{
		Name:     filepath.ToSlash(name),
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// seal finishes the archive and moves it to its final location.
func (b *bundle) seal() error {
	if b.sealed {
		return nil
	}
	b.sealed = true

	if err := b.zw.Close(); err != nil {
		b.file.Close()
		return fmt.Errorf("unable to close bundle archive: %w", err)
	}
	if err := b.file.Close(); err != nil {
		return fmt.Errorf("unable to finalize bundle file: %w", err)
	}
	defer os.Remove(b.tmp)

	if b.fix {
		return copyZipWithoutDataDescriptors(b.tmp, b.final)
	}
	return os.Rename(b.tmp, b.final)
}

// discard drops the unfinished bundle.
func (b *bundle) discard() {
	if b.sealed {
		return
	}
	b.sealed = true
	b.zw.Close()
	b.file.Close()
	os.Remove(b.tmp)
}

// copyZipWithoutDataDescriptors rewrites archive avoiding data descriptor
// records, some legacy CMS import tools cannot handle streamed zips.
func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
