package kmlgen

import (
	"fmt"
	"os"
	"path/filepath"
)

// GenKmlName derives an output file name from an input layer file. A
// non-zero idx distinguishes several exports of one input.
func GenKmlName(inp string, zipped bool, idx int) string {
	outfn := filepath.Base(inp)
	ext := filepath.Ext(outfn)
	if len(ext) < len(outfn) {
		outfn = outfn[0 : len(outfn)-len(ext)]
	}
	if zipped {
		ext = ".kmz"
	} else {
		ext = ".kml"
	}
	if idx > 0 {
		ext = fmt.Sprintf(".%d%s", idx, ext)
	}
	outfn = outfn + ext
	return outfn
}

// TempName is the n-th temporary file name for prefix in dir.
func TempName(dir, prefix string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.kml", prefix, n))
}

// NextTempName returns the first TempName, counting from 0, that does
// not exist yet. Stat errors other than absence are left for the caller's
// open to report.
func NextTempName(dir, prefix string) (string, int) {
	for n := 0; ; n++ {
		fn := TempName(dir, prefix, n)
		if _, err := os.Lstat(fn); err != nil {
			return fn, n
		}
	}
}
