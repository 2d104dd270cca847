package source

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ImageSource is a pool backed by still-image files in a directory.
// References are the base filenames, ordered lexicographically so a
// given directory always produces the same pool order.
type ImageSource struct {
	dir   string
	refs  []string
	paths map[string]string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s := &ImageSource{paths: make(map[string]string)}
	if fi.IsDir() {
		s.dir = path
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
				s.refs = append(s.refs, entry.Name())
				s.paths[entry.Name()] = filepath.Join(path, entry.Name())
			}
		}
		sort.Strings(s.refs)
	} else {
		s.dir = filepath.Dir(path)
		name := filepath.Base(path)
		s.refs = []string{name}
		s.paths[name] = path
	}

	return s, nil
}

func (s *ImageSource) Count() int {
	return len(s.refs)
}

func (s *ImageSource) Refs() []string {
	return s.refs
}

// Path returns the filesystem path behind a reference.
func (s *ImageSource) Path(ref string) (string, bool) {
	p, ok := s.paths[ref]
	return p, ok
}

func (s *ImageSource) ModTime(ref string) (time.Time, error) {
	p, ok := s.paths[ref]
	if !ok {
		return time.Time{}, &UnknownRefError{Ref: ref}
	}
	fi, err := os.Stat(p)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func (s *ImageSource) Render(ref string) (image.Image, error) {
	p, ok := s.paths[ref]
	if !ok {
		return nil, &UnknownRefError{Ref: ref}
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
