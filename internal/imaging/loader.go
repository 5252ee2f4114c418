package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPagePattern names rendered page images inside a page directory.
// The verb receives the 1-indexed page number.
const DefaultPagePattern = "page-%d.png"

// ImageCache provides thread-safe caching of decoded page images.
//
// Images are keyed by the exact path string passed to Load. Once loaded, an
// image stays in memory until Evict or Clear is called; the watcher evicts a
// page when its file changes on disk.
//
// ImageCache is the only type in this module that is safe for concurrent use.
//
// # Memory Management
//
// Cached pages remain in memory until explicitly removed. Large drawing sets
// rendered at high DPI can hold hundreds of megabytes; call Clear between
// projects in long-running processes.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/drawings/render/page-1.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Use img...
//	cache.Evict("/drawings/render/page-1.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
//
// The returned cache is ready for immediate use and is safe for concurrent access.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, and GIF.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached under the exact path string provided. A relative and an
// absolute path to the same file produce separate cache entries.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
//
// After Clear, every page is decoded from disk again on its next Load.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes the image cached under path, if any.
//
// Parameters:
//   - path: The exact path string used when the image was loaded.
//
// The file watcher calls Evict when a rendered page is rewritten, so the next
// Load reads the new render.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// PageSource resolves page numbers to rendered page images.
//
// Rendering PDF pages to images happens outside this module; PageSource only
// locates the files a renderer produced. Pattern must contain one integer
// verb, e.g. "page-%d.png" or "sheet_%03d.jpg".
type PageSource struct {
	Dir     string
	Pattern string
	Cache   *ImageCache
}

// NewPageSource returns a source for dir using DefaultPagePattern when
// pattern is empty.
//
// Parameters:
//   - dir: Directory holding the rendered page images.
//   - pattern: fmt pattern with exactly one integer verb. Empty selects
//     DefaultPagePattern.
//   - cache: Shared image cache. Nil allocates a private one.
//
// Returns:
//   - *PageSource: The configured source.
//   - error: Non-nil if pattern does not contain exactly one verb.
//
// # Example Usage
//
//	src, err := imaging.NewPageSource("/drawings/render", "sheet_%03d.jpg", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info, err := src.Info(2) // reads /drawings/render/sheet_002.jpg
func NewPageSource(dir, pattern string, cache *ImageCache) (*PageSource, error) {
	if pattern == "" {
		pattern = DefaultPagePattern
	}
	if strings.Count(pattern, "%") != 1 {
		return nil, fmt.Errorf("page pattern %q must contain exactly one %%d verb", pattern)
	}
	if cache == nil {
		cache = NewImageCache()
	}
	return &PageSource{Dir: dir, Pattern: pattern, Cache: cache}, nil
}

// Path returns the image file for a 1-indexed page.
func (s *PageSource) Path(page int) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, page))
}

// Page loads the image for a 1-indexed page.
//
// # Errors
//
//   - Returns error if page is less than 1
//   - Returns error if the page image is missing or cannot be decoded
func (s *PageSource) Page(page int) (image.Image, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1, got %d", page)
	}
	img, err := s.Cache.Load(s.Path(page))
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return img, nil
}

// PageInfo describes a rendered page image.
type PageInfo struct {
	Page          int    `json:"page"`
	Path          string `json:"path"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// Info loads a page and reports its dimensions and file size.
//
// Returns:
//   - *PageInfo: Pixel width and height of the decoded image plus the on-disk
//     size in bytes.
//   - error: Non-nil if the page cannot be loaded or stat'ed.
func (s *PageSource) Info(page int) (*PageInfo, error) {
	img, err := s.Page(page)
	if err != nil {
		return nil, err
	}
	path := s.Path(page)
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	b := img.Bounds()
	return &PageInfo{
		Page:          page,
		Path:          path,
		Width:         b.Dx(),
		Height:        b.Dy(),
		FileSizeBytes: stat.Size(),
	}, nil
}
