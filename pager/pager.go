// Package pager owns the on-disk file backing a table and a bounded,
// fixed-size array of in-memory page slots. It reads pages lazily from disk
// and writes resident pages back on Close; it never evicts under memory
// pressure and never frees a page once allocated.
package pager

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// PageSize is the fixed size, in bytes, of every page in the file.
	PageSize = 4096

	// MaxPages bounds how many pages may be simultaneously resident in the
	// cache. It is a compile-time design choice, not a dynamic condition.
	MaxPages = 100
)

// Page is one PageSize-byte buffer. Every page represents exactly one node;
// the pager itself is agnostic to the node layout stored inside.
type Page struct {
	Data [PageSize]byte
}

// Pager owns a file handle and the bounded cache of pages read from or to
// be written to it.
type Pager struct {
	file     *os.File
	pages    [MaxPages]*Page
	NumPages uint32
}

// Open opens or creates the file at path for read+write and determines how
// many whole pages it currently holds. A file length that isn't an exact
// multiple of PageSize is a corrupt file and is reported as an error; the
// caller is expected to treat this as fatal per the pager's failure model.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "pager: open %q", path)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "pager: stat %q", path)
	}
	length := fi.Size()
	if length%PageSize != 0 {
		return nil, errors.Errorf("pager: corrupt file %q: length %d is not a multiple of page size %d", path, length, PageSize)
	}
	return &Pager{
		file:     f,
		NumPages: uint32(length / PageSize),
	}, nil
}

// GetPage returns the cached page for n, loading it from disk first if the
// slot is empty. If n falls within the on-disk range the slot is filled from
// disk; otherwise it starts zeroed. NumPages grows to cover n if it didn't
// already.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if n >= MaxPages {
		return nil, errors.Errorf("pager: page %d out of bounds (max %d pages)", n, MaxPages)
	}
	if p.pages[n] == nil {
		pg := &Page{}
		if n < p.NumPages {
			if err := p.readPage(n, pg); err != nil {
				return nil, err
			}
		}
		p.pages[n] = pg
	}
	if n >= p.NumPages {
		p.NumPages = n + 1
	}
	return p.pages[n], nil
}

func (p *Pager) readPage(n uint32, pg *Page) error {
	off := int64(n) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "pager: seek page %d", n)
	}
	_, err := io.ReadFull(p.file, pg.Data[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errors.Wrapf(err, "pager: read page %d", n)
	}
	return nil
}

// AllocatePage returns the next unused page number. The caller is expected
// to immediately GetPage it, which brings NumPages up to date.
func (p *Pager) AllocatePage() uint32 {
	return p.NumPages
}

// Flush writes the full PageSize bytes of a resident page back to disk. It
// is an error to flush a slot that was never loaded or allocated.
func (p *Pager) Flush(n uint32) error {
	pg := p.pages[n]
	if pg == nil {
		return errors.Errorf("pager: flush: page %d was never resident", n)
	}
	off := int64(n) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "pager: seek page %d for flush", n)
	}
	if _, err := p.file.Write(pg.Data[:]); err != nil {
		return errors.Wrapf(err, "pager: write page %d", n)
	}
	return nil
}

// Close flushes every resident page, fsyncs the file, evicts the cache, and
// closes the file handle. Durability only happens here; there is no
// per-operation fsync.
func (p *Pager) Close() error {
	for n := uint32(0); n < p.NumPages; n++ {
		if p.pages[n] == nil {
			continue
		}
		if err := p.Flush(n); err != nil {
			return err
		}
		p.pages[n] = nil
	}
	if err := p.file.Sync(); err != nil {
		return errors.Wrap(err, "pager: fsync")
	}
	if err := p.file.Close(); err != nil {
		return errors.Wrap(err, "pager: close")
	}
	return nil
}
