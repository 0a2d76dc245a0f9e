package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analyzer/internal/ingest"
)

// salesExtensions are the archive members ExtractSalesFile considers.
var salesExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// ExtractSalesFile extracts the one sales file (.csv, .tsv, .txt, .xlsx,
// .xlsm) from a ZIP archive into destDir. Archives with none or several are
// rejected, as are members larger than maxBytes.
func ExtractSalesFile(zipPath, destDir string, maxBytes int64) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var candidates []*zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if salesExtensions[strings.ToLower(filepath.Ext(f.Name))] {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) != 1 {
		return "", eris.Errorf("zip: expected exactly 1 sales file, got %d", len(candidates))
	}

	f := candidates[0]
	if maxBytes > 0 && f.UncompressedSize64 > uint64(maxBytes) {
		return "", eris.Wrapf(ingest.ErrTooLarge, "zip: %s is %d bytes (limit %d)", f.Name, f.UncompressedSize64, maxBytes)
	}
	return extractZIPEntry(f, destDir, maxBytes)
}

// extractZIPEntry writes a single archive member to destDir.
func extractZIPEntry(f *zip.File, destDir string, maxBytes int64) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

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

	var src io.Reader = rc
	if maxBytes > 0 {
		src = io.LimitReader(rc, maxBytes+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}
	if maxBytes > 0 && n > maxBytes {
		return "", eris.Wrapf(ingest.ErrTooLarge, "zip: %s exceeds %d bytes", f.Name, maxBytes)
	}

	return destPath, nil
}
