// Package iconcache exports platform icons as PNG files so they can be
// handed across the bridge by path.
package iconcache

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/pkg/apps"
)

var ErrIconNotFound = errors.New("icon not found")

var iconSizes = []string{"512x512", "256x256", "128x128", "96x96", "64x64", "48x48"}

var iconExts = []string{".png", ".jpg", ".jpeg"}

// Cache writes resized icons into a directory
type Cache struct {
	dir        string
	size       int
	searchDirs []string
	now        func() time.Time
}

func New(dir string, size int) *Cache {
	return &Cache{
		dir:        dir,
		size:       size,
		searchDirs: DefaultSearchDirs(),
		now:        time.Now,
	}
}

// DefaultSearchDirs returns the freedesktop locations searched for icons
func DefaultSearchDirs() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".local", "share", "icons", "hicolor"),
			filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "icons", "hicolor"),
		)
	}
	roots = append(roots,
		"/usr/share/icons/hicolor",
		"/var/lib/flatpak/exports/share/icons/hicolor",
	)

	var dirs []string
	for _, root := range roots {
		for _, size := range iconSizes {
			dirs = append(dirs, filepath.Join(root, size, "apps"))
		}
	}
	return append(dirs, "/usr/share/pixmaps")
}

// Resolve finds the source image for an icon name or path
func (c *Cache) Resolve(icon string) (string, error) {
	if icon == "" {
		return "", ErrIconNotFound
	}
	if filepath.IsAbs(icon) {
		if _, err := os.Stat(icon); err != nil {
			return "", errors.Wrapf(ErrIconNotFound, "%s", icon)
		}
		return icon, nil
	}

	for _, dir := range c.searchDirs {
		for _, ext := range iconExts {
			path := filepath.Join(dir, icon+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", errors.Wrapf(ErrIconNotFound, "%s", icon)
}

// Export writes the platform icon as a square PNG and returns its absolute path
func (c *Cache) Export(p apps.Platform) (string, error) {
	src, err := c.Resolve(p.Icon)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to decode icon %s", src)
	}

	fitted := imaging.Fit(img, c.size, c.size, imaging.Lanczos)
	canvas := imaging.New(c.size, c.size, color.NRGBA{})
	out := imaging.PasteCenter(canvas, fitted)

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create icon cache directory")
	}
	name := fmt.Sprintf("app_icon_%s_%d.png", p.ID, c.now().UnixMilli())
	path, err := filepath.Abs(filepath.Join(c.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve icon path")
	}
	if err := imaging.Save(out, path); err != nil {
		return "", errors.Wrapf(err, "failed to write icon %s", path)
	}
	return path, nil
}

// Prune removes exported icons older than maxAge and returns how many were removed
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read icon cache directory")
	}

	cutoff := c.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app_icon_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
