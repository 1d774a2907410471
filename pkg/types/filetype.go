package types

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	IS_UNKNOWN = -1
	IS_GEOJSON = 1
	IS_SQL     = 2
	IS_CSV     = 3
	IS_WKT     = 4
)

// EvinceFileType guesses the layer source format from its leading bytes,
// falling back to the file extension.
func EvinceFileType(fn string) (int, error) {
	res := IS_UNKNOWN
	file, err := os.Open(fn)
	if err != nil {
		return res, errors.Wrap(err, "filetype")
	}
	defer file.Close()
	fh := bufio.NewReader(file)
	sig, err := fh.Peek(128) //read a few bytes without consuming
	if len(sig) > 0 {
		tsig := bytes.TrimLeft(sig, " \t\r\n\xef\xbb\xbf")
		usig := strings.ToUpper(string(tsig))
		switch {
		case strings.HasPrefix(string(sig), "SQLite format 3"):
			res = IS_SQL
		case bytes.HasPrefix(tsig, []byte("{")):
			res = IS_GEOJSON
		case isWKTPrefix(usig):
			res = IS_WKT
		}
	}
	if res == IS_UNKNOWN {
		switch strings.ToLower(filepath.Ext(fn)) {
		case ".geojson", ".json":
			res = IS_GEOJSON
		case ".sqlite", ".db", ".gpkg":
			res = IS_SQL
		case ".csv", ".tsv":
			res = IS_CSV
		case ".wkt":
			res = IS_WKT
		}
	}
	return res, nil
}

func isWKTPrefix(s string) bool {
	for _, p := range []string{"POINT", "MULTIPOINT", "LINESTRING", "MULTILINESTRING", "POLYGON", "MULTIPOLYGON"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
