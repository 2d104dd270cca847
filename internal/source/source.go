// Package source builds read-only image pools for the sequencer: a
// directory of stills, or the pages of a PDF document.
package source

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/gen2brain/go-fitz"
)

// Source is a read-only ordered pool of still images. References
// returned by Refs are opaque to consumers; only the source itself can
// turn them back into pixels.
type Source interface {
	Count() int
	// Refs returns the stable, ordered reference list of the pool.
	Refs() []string
	// ModTime reports when the backing data of a reference last
	// changed, used for cache freshness checks.
	ModTime(ref string) (time.Time, error)
	// Render decodes the referenced image at full size.
	Render(ref string) (image.Image, error)
	Close() error
}

// UnknownRefError reports a reference that does not belong to the pool.
type UnknownRefError struct {
	Ref string
}

func (e *UnknownRefError) Error() string {
	return "unknown image reference: " + e.Ref
}

// FitzPDFSource exposes the pages of a PDF document as an image pool.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
	refs []string
	idx  map[string]int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}

	s := &FitzPDFSource{doc: doc, path: path, dpi: dpi, idx: make(map[string]int)}
	for i := 0; i < doc.NumPage(); i++ {
		ref := fmt.Sprintf("page_%04d", i+1)
		s.refs = append(s.refs, ref)
		s.idx[ref] = i
	}
	return s, nil
}

func (s *FitzPDFSource) Count() int {
	return len(s.refs)
}

func (s *FitzPDFSource) Refs() []string {
	return s.refs
}

func (s *FitzPDFSource) ModTime(ref string) (time.Time, error) {
	// Pages live inside one file, so every ref shares its mod time.
	fi, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func (s *FitzPDFSource) Render(ref string) (image.Image, error) {
	i, ok := s.idx[ref]
	if !ok {
		return nil, &UnknownRefError{Ref: ref}
	}
	// go-fitz is not goroutine-safe; open a document per render.
	workerDoc, err := fitz.New(s.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(i, float64(s.dpi))
}

func (s *FitzPDFSource) Close() error {
	return s.doc.Close()
}
