package dashboard

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
)

// FullSeriesMarker is the trailing name segment identifying whole-range
// charts: <table>_<column>_full.png.
const FullSeriesMarker = "full"

// FullSeriesImageName builds the filename of the whole-range chart for base.
func FullSeriesImageName(base, ext string) string {
	return base + "_" + FullSeriesMarker + ext
}

// IsFullSeriesImage reports whether name carries the full-series marker as
// its last underscore-separated segment. Table or column names containing
// "full" elsewhere do not match.
func IsFullSeriesImage(name string) bool {
	stem := strings.TrimSuffix(name, path.Ext(name))
	return stem == FullSeriesMarker || strings.HasSuffix(stem, "_"+FullSeriesMarker)
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".svg":  {},
	".webp": {},
}

// DirImageLister lists chart images stored as <prefix>/<table>/<file> inside a
// filesystem, typically os.DirFS(assetsDir).
type DirImageLister struct {
	fsys fs.FS
}

// NewDirImageLister builds a lister over fsys.
func NewDirImageLister(fsys fs.FS) *DirImageLister {
	return &DirImageLister{fsys: fsys}
}

// ListTableImages returns image filenames for tableID sorted by name. A
// missing directory yields an empty list.
func (l *DirImageLister) ListTableImages(_ context.Context, prefix, tableID string) ([]string, error) {
	if l == nil || l.fsys == nil {
		return nil, nil
	}
	dir := imageDir(prefix, tableID)
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(path.Ext(entry.Name()))]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// PartitionImages splits filenames with IsFullSeriesImage. Each filename
// lands in exactly one group and input order is kept within a group.
func PartitionImages(names []string) (full, sub []string) {
	for _, name := range names {
		if IsFullSeriesImage(name) {
			full = append(full, name)
			continue
		}
		sub = append(sub, name)
	}
	return full, sub
}

// ImageURL joins the public base path, optional prefix, table id, and file.
// Every segment after the base path is escaped.
func ImageURL(basePath, prefix, tableID, name string) string {
	segments := strings.Split(path.Join(imageDir(prefix, tableID), name), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(basePath, "/") + "/" + strings.Join(segments, "/")
}

func imageDir(prefix, tableID string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return tableID
	}
	return path.Join(prefix, tableID)
}
