package store

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// copyLegacy pulls a networks file left behind by a previous major
// version into the current data dir, so old setups survive an upgrade
// without the user doing anything. It is best-effort: any failure is
// logged and loading proceeds as if no data existed.
func (s *Store) copyLegacy() {
	if s.legacyDir == "" {
		return
	}
	src := filepath.Join(s.legacyDir, fileName)
	data, err := os.ReadFile(src)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading legacy networks file failed", zap.String("path", src), zap.Error(err))
		}
		return
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		s.log.Warn("creating data dir for legacy copy failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		s.log.Warn("copying legacy networks file failed", zap.Error(err))
		return
	}
	s.log.Info("copied legacy networks file", zap.String("from", src), zap.String("to", s.Path()))
}
