// Package camera provides frame sources for QR scanning: V4L2 video devices
// and still images.
package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"sync"

	"github.com/aaearon/authlive/internal/scan"
)

// Still serves a fixed list of images as frames, each once.
type Still struct {
	paths  []string
	images []image.Image
}

// NewStill creates a source reading image files when opened.
func NewStill(paths ...string) *Still {
	return &Still{paths: paths}
}

// FromImages creates a source over in-memory images.
func FromImages(images ...image.Image) *Still {
	return &Still{images: images}
}

// Open loads the images. Unreadable files fail the acquisition.
func (s *Still) Open(ctx context.Context) (scan.Stream, error) {
	frames := append([]image.Image(nil), s.images...)
	for _, p := range s.paths {
		img, err := loadImage(p)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no images to scan")
	}
	return &stillStream{frames: frames}, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

type stillStream struct {
	mu     sync.Mutex
	frames []image.Image
	closed bool
}

func (s *stillStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errClosed
	}
	if len(s.frames) == 0 {
		return nil, scan.ErrStreamEnded
	}
	img := s.frames[0]
	s.frames = s.frames[1:]
	return img, nil
}

func (s *stillStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frames = nil
	return nil
}
