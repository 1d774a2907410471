package kmlgen

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"layer2kml/pkg/types"
)

// DEFAULT_PREFIX names temporary exports when no prefix is configured.
const DEFAULT_PREFIX = "layer2kml"

// A Session owns the temporary files written by one tool instance.
// Close removes them.
type Session struct {
	Dir    string
	Prefix string
	Logger *slog.Logger

	mu    sync.Mutex
	files []string
}

// NewSession returns a session writing to dir (os.TempDir() when empty).
func NewSession(dir, prefix string, logger *slog.Logger) *Session {
	if dir == "" {
		dir = os.TempDir()
	}
	if prefix == "" {
		prefix = DEFAULT_PREFIX
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{Dir: dir, Prefix: prefix, Logger: logger}
}

// createTemp opens the next free temporary name exclusively, probing
// again if another process takes the name first.
func (s *Session) createTemp() (*os.File, error) {
	for {
		fn, _ := NextTempName(s.Dir, s.Prefix)
		f, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, &TempFileError{Path: fn, Err: err}
		}
	}
}

func (s *Session) write(f *os.File, zipped bool, layer *types.Layer, features []types.Feature, r *types.Renderer, ss *types.StyleSet) (ExportReport, error) {
	fn := f.Name()
	rep, err := generate(f, layer, features, r, ss, s.Logger, zipped)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fn)
		return rep, &TempFileError{Path: fn, Err: err}
	}
	rep.Path = fn
	if st, err := os.Stat(fn); err == nil {
		rep.Size = st.Size()
	}
	return rep, nil
}

// Export writes features of layer to a fresh temporary KML file and
// returns its report; rep.Path is the file written. The file belongs to
// the session.
func (s *Session) Export(layer *types.Layer, features []types.Feature, ss *types.StyleSet) (ExportReport, error) {
	r, err := ResolveRenderer(layer, ss)
	if err != nil {
		return ExportReport{}, err
	}
	f, err := s.createTemp()
	if err != nil {
		return ExportReport{}, err
	}
	rep, err := s.write(f, false, layer, features, r, ss)
	if err == nil {
		s.mu.Lock()
		s.files = append(s.files, rep.Path)
		s.mu.Unlock()
		s.Logger.Debug("exported", "layer", layer.Name, "path", rep.Path, "written", rep.Written, "skipped", rep.Skipped)
	}
	return rep, err
}

// ExportFile writes to a named file, which the session does not own. A
// .kmz suffix selects a KMZ archive.
func (s *Session) ExportFile(fn string, layer *types.Layer, features []types.Feature, ss *types.StyleSet) (ExportReport, error) {
	r, err := ResolveRenderer(layer, ss)
	if err != nil {
		return ExportReport{}, err
	}
	if dir := filepath.Dir(fn); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ExportReport{}, &TempFileError{Path: fn, Err: err}
		}
	}
	f, err := os.Create(fn)
	if err != nil {
		return ExportReport{}, &TempFileError{Path: fn, Err: err}
	}
	zipped := strings.EqualFold(filepath.Ext(fn), ".kmz")
	rep, err := s.write(f, zipped, layer, features, r, ss)
	if err == nil {
		s.Logger.Debug("exported", "layer", layer.Name, "path", rep.Path, "written", rep.Written, "skipped", rep.Skipped)
	}
	return rep, err
}

// Files lists the temporary files currently owned by the session.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// Close removes the session's temporary files. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()
	var err error
	for _, fn := range files {
		if rerr := os.Remove(fn); rerr != nil && !os.IsNotExist(rerr) {
			err = errors.Wrapf(rerr, "removing %s", fn)
		}
	}
	return err
}
