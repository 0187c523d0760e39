// Package thumbnail stores and produces thumbnail images.
//
// The Cache maps (path, signature) to a PNG on disk. Keys are derived from the
// file URI and its signature, so concurrent writers for the same key write the
// same bytes and the last rename wins.
package thumbnail

import (
	"container/list"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/justyntemme/razorcore/internal/debug"
)

// Signature identifies one version of a file's content.
type Signature struct {
	Size    int64
	ModTime time.Time
}

func (s Signature) String() string {
	return fmt.Sprintf("%d-%d", s.Size, s.ModTime.UnixNano())
}

// SignatureOf stats path and returns its current signature.
func SignatureOf(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// FileURI returns the file:// URI for an absolute or relative path.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// Cache is the on-disk thumbnail store plus an LRU of decoded images.
type Cache struct {
	root string

	mu         sync.Mutex
	images     map[string]*cacheEntry // thumbnail path -> entry
	lru        *list.List             // front = most recent
	maxEntries int
}

type cacheEntry struct {
	path    string
	img     image.Image
	element *list.Element
}

// NewCache creates the cache directories under root.
// maxEntries bounds the number of decoded images kept in memory.
func NewCache(root string, maxEntries int) (*Cache, error) {
	for _, dir := range []string{"thumbs", "fail"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o700); err != nil {
			return nil, fmt.Errorf("thumbnail cache: %w", err)
		}
	}
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		root:       root,
		images:     make(map[string]*cacheEntry),
		lru:        list.New(),
		maxEntries: maxEntries,
	}, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

func key(path string, sig Signature) string {
	sum := md5.Sum([]byte(FileURI(path) + "\x00" + sig.String()))
	return hex.EncodeToString(sum[:])
}

// PathFor returns where the thumbnail for (path, sig) lives, whether or not it exists.
func (c *Cache) PathFor(path string, sig Signature) string {
	return filepath.Join(c.root, "thumbs", key(path, sig)+".png")
}

func (c *Cache) failPath(path string, sig Signature) string {
	return filepath.Join(c.root, "fail", key(path, sig))
}

// Lookup reports the materialized thumbnail for (path, sig), if any. It never generates.
func (c *Cache) Lookup(path string, sig Signature) (string, bool) {
	thumb := c.PathFor(path, sig)

	c.mu.Lock()
	_, inMemory := c.images[thumb]
	c.mu.Unlock()
	if inMemory {
		return thumb, true
	}

	if _, err := os.Stat(thumb); err != nil {
		return "", false
	}
	return thumb, true
}

// Load decodes a thumbnail file, serving repeated loads from memory.
func (c *Cache) Load(thumbPath string) (image.Image, error) {
	c.mu.Lock()
	if e, ok := c.images[thumbPath]; ok {
		c.lru.MoveToFront(e.element)
		c.mu.Unlock()
		return e.img, nil
	}
	c.mu.Unlock()

	f, err := os.Open(thumbPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", thumbPath, err)
	}
	c.put(thumbPath, img)
	return img, nil
}

// Store writes img as the thumbnail for (path, sig) and returns its path.
func (c *Cache) Store(path string, sig Signature, img image.Image) (string, error) {
	thumb := c.PathFor(path, sig)

	tmp, err := os.CreateTemp(filepath.Dir(thumb), ".tmp-*.png")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, thumb); err != nil {
		os.Remove(tmpName)
		return "", err
	}

	c.put(thumb, img)
	debug.Log(debug.THUMB, "cache: stored %s -> %s", path, filepath.Base(thumb))
	return thumb, nil
}

// MarkFailed records that generation failed for this version of path.
func (c *Cache) MarkFailed(path string, sig Signature) error {
	return os.WriteFile(c.failPath(path, sig), nil, 0o600)
}

// Failed reports whether generation previously failed for this version of path.
func (c *Cache) Failed(path string, sig Signature) bool {
	_, err := os.Stat(c.failPath(path, sig))
	return err == nil
}

// put adds a decoded image, evicting the least recently used ones.
func (c *Cache) put(thumbPath string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.images[thumbPath]; ok {
		e.img = img
		c.lru.MoveToFront(e.element)
		return
	}

	for c.lru.Len() >= c.maxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		old := oldest.Value.(*cacheEntry)
		delete(c.images, old.path)
		c.lru.Remove(oldest)
	}

	e := &cacheEntry{path: thumbPath, img: img}
	e.element = c.lru.PushFront(e)
	c.images[thumbPath] = e
}

// Len returns the number of decoded images held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
