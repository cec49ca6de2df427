package playerstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps a local JSON file of player name/identity pairs for offline
// lookups (admin commands target names, not UUIDs). Writes go through a
// temp file and an atomic rename.
type Store struct {
	path   string
	logger *zap.Logger

	mu         sync.RWMutex
	nameToID   map[string]uuid.UUID
	idToName   map[uuid.UUID]string
	displayFor map[string]string
}

// NewStore loads the file if present; a missing file starts an empty store.
func NewStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:       path,
		logger:     logger,
		nameToID:   make(map[string]uuid.UUID),
		idToName:   make(map[uuid.UUID]string),
		displayFor: make(map[string]string),
	}
	s.load()
	return s
}

func (s *Store) load() {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no offline player file found, starting empty")
		} else {
			s.logger.Error("failed to load offline players", zap.Error(err))
		}
		return
	}

	raw := make(map[string]string)
	if err := json.Unmarshal(content, &raw); err != nil {
		s.logger.Error("failed to parse offline players", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, idStr := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.Warn("skipping malformed identity in offline players", zap.String("value", idStr))
			continue
		}
		lower := strings.ToLower(name)
		s.nameToID[lower] = id
		s.idToName[id] = name
		s.displayFor[lower] = name
	}
	s.logger.Info("offline players loaded", zap.Int("players", len(s.nameToID)))
}

// Save writes the store to disk atomically (temp file, then rename).
func (s *Store) Save() error {
	s.mu.RLock()
	raw := make(map[string]string, len(s.nameToID))
	for lower, id := range s.nameToID {
		raw[s.displayFor[lower]] = id.String()
	}
	s.mu.RUnlock()

	content, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode offline players: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create offline players dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write offline players: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace offline players: %w", err)
	}
	s.logger.Debug("offline players saved", zap.Int("players", len(raw)))
	return nil
}

// Record registers or refreshes a player's name/identity pair.
func (s *Store) Record(name string, identity uuid.UUID) {
	lower := strings.ToLower(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.idToName[identity]; ok && !strings.EqualFold(old, name) {
		delete(s.nameToID, strings.ToLower(old))
		delete(s.displayFor, strings.ToLower(old))
	}
	s.nameToID[lower] = identity
	s.idToName[identity] = name
	s.displayFor[lower] = name
}

// Lookup resolves a name (case-insensitive) to an identity.
func (s *Store) Lookup(name string) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameToID[strings.ToLower(name)]
	return id, ok
}

// NameOf resolves an identity back to its display name.
func (s *Store) NameOf(identity uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.idToName[identity]
	return name, ok
}

// NamesWithPrefix lists known names starting with prefix, sorted. Serves
// name completion in admin tooling.
func (s *Store) NamesWithPrefix(prefix string) []string {
	lower := strings.ToLower(prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for key, display := range s.displayFor {
		if strings.HasPrefix(key, lower) {
			names = append(names, display)
		}
	}
	sort.Strings(names)
	return names
}
