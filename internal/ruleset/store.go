package ruleset

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Store holds the current ruleset snapshot. Snapshot reads are lock-free;
// Reload parses and validates the document fully before swapping it in, so
// a failed reload leaves the previous snapshot installed and readers never
// see a partial document.
type Store struct {
	path string
	log  *zap.Logger
	cur  atomic.Pointer[Ruleset]
}

// NewStore loads the initial snapshot from path, or installs the embedded
// defaults when path is empty.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, log: log}

	var rs *Ruleset
	if path == "" {
		rs = Default()
	} else {
		var err error
		rs, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	s.cur.Store(rs)

	log.Info("ruleset loaded",
		zap.String("version", rs.Version),
		zap.Int("missions", len(rs.MissionToGeneSets)),
		zap.Int("gene_sets", len(rs.GeneSets)))
	return s, nil
}

// Snapshot returns the current ruleset. The returned document is shared
// and must be treated as read-only.
func (s *Store) Snapshot() *Ruleset {
	return s.cur.Load()
}

// Path returns the document path the store was built from, empty when the
// embedded defaults are in use.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the document and swaps it in atomically. On failure the
// old snapshot stays installed and the validation error is returned.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	rs, err := Load(s.path)
	if err != nil {
		s.log.Warn("ruleset reload rejected, keeping current snapshot",
			zap.String("current_version", s.Snapshot().Version),
			zap.Error(err))
		return err
	}

	old := s.cur.Swap(rs)
	s.log.Info("ruleset reloaded",
		zap.String("old_version", old.Version),
		zap.String("new_version", rs.Version))
	return nil
}
