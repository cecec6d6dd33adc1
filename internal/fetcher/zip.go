package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoArchiveEntry is returned when an archive holds no usable price list.
var ErrNoArchiveEntry = eris.New("zip: no price list in archive")

// maxEntrySize caps the uncompressed size of an extracted entry.
const maxEntrySize = 64 << 20

// ExtractPriceList extracts the one entry of zipPath whose extension is in
// exts (".xlsx", ".csv", ...). Directories, macOS metadata and office lock
// files are skipped. More than one candidate is an error.
func ExtractPriceList(zipPath, destDir string, exts ...string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var candidates []*zip.File
	for _, f := range r.File {
		if skipEntry(f) || !hasExt(f.Name, exts) {
			continue
		}
		candidates = append(candidates, f)
	}

	switch len(candidates) {
	case 0:
		return "", eris.Wrapf(ErrNoArchiveEntry, "zip: %s", filepath.Base(zipPath))
	case 1:
		return extractEntry(candidates[0], destDir)
	default:
		names := make([]string, len(candidates))
		for i, f := range candidates {
			names[i] = f.Name
		}
		return "", eris.Errorf("zip: %d price lists in archive, expected one: %s", len(candidates), strings.Join(names, ", "))
	}
}

func skipEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
		return true
	}
	base := path.Base(f.Name)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$")
}

func hasExt(name string, exts []string) bool {
	ext := path.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// extractEntry writes f flat into destDir under its base name.
func extractEntry(f *zip.File, destDir string) (string, error) {
	if strings.Contains(f.Name, "..") || path.IsAbs(f.Name) {
		return "", eris.Errorf("zip: illegal path %q", f.Name)
	}
	if f.UncompressedSize64 > maxEntrySize {
		return "", eris.Errorf("zip: %s is %d bytes, limit %d", f.Name, f.UncompressedSize64, maxEntrySize)
	}
	destPath := filepath.Join(destDir, path.Base(f.Name))

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}
	if n > maxEntrySize {
		return "", eris.Errorf("zip: %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return destPath, nil
}
