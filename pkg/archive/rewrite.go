package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// maxEntryBytes bounds the size of a single entry read fully into memory
const maxEntryBytes = 512 << 20

// deterministicTimestamp is used for entries that have no modification time
var deterministicTimestamp = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is one record of an input archive
type Entry struct {
	file *zip.File
}

// Name returns the entry name with forward slashes
func (e *Entry) Name() string { return e.file.Name }

// IsDir reports whether the entry is a directory record
func (e *Entry) IsDir() bool { return e.file.FileInfo().IsDir() }

// Open returns a reader for the decompressed entry content
func (e *Entry) Open() (io.ReadCloser, error) { return e.file.Open() }

// ReadAll reads the whole decompressed entry
func (e *Entry) ReadAll() ([]byte, error) {
	r, err := e.file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(io.LimitReader(r, maxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxEntryBytes {
		return nil, errors.Newf(errors.ErrArchive, "entry %s too large", e.Name())
	}
	return data, nil
}

// Result tells Rewrite what to do with an entry
type Result struct {
	drop    bool
	content []byte
}

// Keep copies the entry unchanged
func Keep() Result { return Result{} }

// Drop omits the entry from the output
func Drop() Result { return Result{drop: true} }

// Replace writes content instead of the original bytes, under the same name
func Replace(content []byte) Result {
	if content == nil {
		content = []byte{}
	}
	return Result{content: content}
}

// VisitFunc decides the fate of each input entry
type VisitFunc func(e *Entry) (Result, error)

// File is an entry created from memory
type File struct {
	Name string
	Data []byte
}

// Rewrite copies every entry of in to out in order, consulting fn for each.
// Files in extra are appended after all input entries. out is removed if
// anything fails.
func Rewrite(ctx context.Context, in, out string, fn VisitFunc, extra ...File) (err error) {
	reader, err := zip.OpenReader(in)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to open %s", in)
	}
	defer func() { _ = reader.Close() }()

	w, err := create(out)
	if err != nil {
		return err
	}
	defer w.finish(out, &err)

	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := &Entry{file: f}
		result := Keep()
		if fn != nil {
			result, err = fn(entry)
			if err != nil {
				return err
			}
		}

		switch {
		case result.drop:
			continue
		case result.content != nil:
			if err := w.writeEntry(copyHeader(&f.FileHeader), result.content); err != nil {
				return errors.Wrapf(err, errors.ErrArchive, "failed to write %s", f.Name)
			}
		default:
			if err := w.zw.Copy(f); err != nil {
				return errors.Wrapf(err, errors.ErrArchive, "failed to copy %s", f.Name)
			}
		}
	}

	for _, file := range extra {
		if err := w.writeEntry(newHeader(file.Name), file.Data); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to add %s", file.Name)
		}
	}
	return nil
}

// Walk calls fn for every entry of in without writing anything.
func Walk(in string, fn func(e *Entry) error) error {
	reader, err := zip.OpenReader(in)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to open %s", in)
	}
	defer func() { _ = reader.Close() }()

	for _, f := range reader.File {
		if err := fn(&Entry{file: f}); err != nil {
			return err
		}
	}
	return nil
}

// Names lists the entry names of in, in archive order.
func Names(in string) ([]string, error) {
	var names []string
	err := Walk(in, func(e *Entry) error {
		names = append(names, e.Name())
		return nil
	})
	return names, err
}

// ReadEntry returns the content of a single named entry.
func ReadEntry(in, name string) ([]byte, error) {
	var data []byte
	found := false
	err := Walk(in, func(e *Entry) error {
		if found || e.Name() != name {
			return nil
		}
		found = true
		var rerr error
		data, rerr = e.ReadAll()
		return rerr
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.ErrNotFound, "entry %s not found in %s", name, in)
	}
	return data, nil
}

type writer struct {
	file *os.File
	zw   *zip.Writer
}

func create(out string) (*writer, error) {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to create directory for %s", out)
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", out)
	}
	return &writer{file: f, zw: zip.NewWriter(f)}, nil
}

func (w *writer) writeEntry(header *zip.FileHeader, data []byte) error {
	ew, err := w.zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = ew.Write(data)
	return err
}

// finish closes the archive and removes out when *errp is set or the
// writing goroutine is panicking. A panic is re-raised after cleanup.
func (w *writer) finish(out string, errp *error) {
	if r := recover(); r != nil {
		_ = w.file.Close()
		_ = os.Remove(out)
		panic(r)
	}
	if cerr := w.Close(); *errp == nil {
		*errp = cerr
	}
	if *errp != nil {
		_ = os.Remove(out)
	}
}

func (w *writer) Close() error {
	zerr := w.zw.Close()
	ferr := w.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

func copyHeader(h *zip.FileHeader) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:     h.Name,
		Comment:  h.Comment,
		Method:   zip.Deflate,
		Modified: h.Modified,
	}
	if header.Modified.IsZero() {
		header.Modified = deterministicTimestamp
	}
	header.SetMode(h.Mode())
	return header
}

func newHeader(name string) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: deterministicTimestamp,
	}
	header.SetMode(0644)
	return header
}
