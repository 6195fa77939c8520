// Package filestore persists the whole dashboard state as a single JSON
// document on disk. Top-level keys are guild ids, plus one reserved key
// holding the global administrator list. Every mutation rewrites the whole
// document through a temp file and rename, so a crash mid-write never leaves a
// torn store behind. Expected guild counts are small and writes infrequent, so
// whole-document IO is acceptable.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

// adminsKey is the reserved top-level key for the administrator list. Guild
// ids are numeric snowflakes so the underscore prefix cannot collide.
const adminsKey = "_administrators"

// record is the on-disk shape of one guild entry: the config itself plus the
// per-guild permissions, which the relational backend keeps in a side table.
type record struct {
	guilddomain.ServerConfig
	Permissions []guilddomain.Permission `json:"permissions,omitempty"`
}

// Store implements guildstorage.Backend over a JSON file.
type Store struct {
	path   string
	logger *slog.Logger

	// Serializes concurrent mutators; without it two racing writers would
	// interleave load and rewrite and drop each other's changes.
	mu sync.RWMutex
}

var _ guildstorage.Backend = (*Store)(nil)

// New creates a file-backed store at path. The file is created lazily on the
// first write; a missing file reads as an empty store.
func New(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create data dir: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

type document struct {
	guilds map[string]*record
	admins []guilddomain.Administrator
}

// load reads and decodes the whole document. Individual records that fail to
// decode are replaced with defaults instead of failing the load; the rest of
// the store stays usable.
func (s *Store) load() (*document, error) {
	doc := &document{guilds: make(map[string]*record)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", s.path, err)
	}

	for key, blob := range raw {
		if key == adminsKey {
			if err := json.Unmarshal(blob, &doc.admins); err != nil {
				s.logger.Warn("filestore: malformed administrator list, resetting", slog.Any("error", err))
				doc.admins = nil
			}
			continue
		}
		rec := &record{}
		if err := json.Unmarshal(blob, rec); err != nil {
			s.logger.Warn("filestore: malformed guild record, using defaults",
				slog.String("guild_id", key), slog.Any("error", err))
			rec = &record{ServerConfig: *guilddomain.DefaultConfig(key)}
		}
		rec.GuildID = key
		rec.Normalize()
		doc.guilds[key] = rec
	}

	return doc, nil
}

// save serializes the document and atomically replaces the store file.
func (s *Store) save(doc *document) error {
	raw := make(map[string]json.RawMessage, len(doc.guilds)+1)
	for id, rec := range doc.guilds {
		blob, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("filestore: encode guild %s: %w", id, err)
		}
		raw[id] = blob
	}
	if doc.admins != nil {
		blob, err := json.Marshal(doc.admins)
		if err != nil {
			return fmt.Errorf("filestore: encode administrators: %w", err)
		}
		raw[adminsKey] = blob
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".guildboard-*.json")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: replace %s: %w", s.path, err)
	}
	return nil
}

// mutate runs fn against the loaded document under the write lock and persists
// the result.
func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) GetConfig(ctx context.Context, guildID string) (*guilddomain.ServerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.guilds[guildID]
	if !ok {
		return nil, guildstorage.ErrNotFound
	}
	cfg := rec.ServerConfig
	return &cfg, nil
}

func (s *Store) SaveConfig(ctx context.Context, config *guilddomain.ServerConfig) error {
	return s.mutate(func(doc *document) error {
		rec, ok := doc.guilds[config.GuildID]
		if !ok {
			rec = &record{}
			doc.guilds[config.GuildID] = rec
		}
		// Permissions ride along in the same record; a config save must not
		// clobber them.
		rec.ServerConfig = *config
		return nil
	})
}

func (s *Store) ListConfigs(ctx context.Context) ([]*guilddomain.ServerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc.guilds))
	for id := range doc.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*guilddomain.ServerConfig, 0, len(ids))
	for _, id := range ids {
		cfg := doc.guilds[id].ServerConfig
		out = append(out, &cfg)
	}
	return out, nil
}

func (s *Store) ListAdministrators(ctx context.Context) ([]guilddomain.Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return append([]guilddomain.Administrator(nil), doc.admins...), nil
}

func (s *Store) PutAdministrator(ctx context.Context, admin guilddomain.Administrator) error {
	return s.mutate(func(doc *document) error {
		for i := range doc.admins {
			if doc.admins[i].UserID == admin.UserID {
				doc.admins[i] = admin
				return nil
			}
		}
		doc.admins = append(doc.admins, admin)
		return nil
	})
}

func (s *Store) DeleteAdministrator(ctx context.Context, userID string) error {
	return s.mutate(func(doc *document) error {
		for i := range doc.admins {
			if doc.admins[i].UserID == userID {
				doc.admins = append(doc.admins[:i], doc.admins[i+1:]...)
				return nil
			}
		}
		return guildstorage.ErrNotFound
	})
}

func (s *Store) ListPermissions(ctx context.Context, guildID string) ([]guilddomain.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.guilds[guildID]
	if !ok {
		return nil, nil
	}
	return append([]guilddomain.Permission(nil), rec.Permissions...), nil
}

func (s *Store) GrantPermission(ctx context.Context, guildID string, perm guilddomain.Permission) error {
	return s.mutate(func(doc *document) error {
		rec, ok := doc.guilds[guildID]
		if !ok {
			rec = &record{ServerConfig: *guilddomain.DefaultConfig(guildID)}
			doc.guilds[guildID] = rec
		}
		for _, p := range rec.Permissions {
			if p.UserID == perm.UserID {
				return nil
			}
		}
		rec.Permissions = append(rec.Permissions, perm)
		return nil
	})
}

func (s *Store) RevokePermission(ctx context.Context, guildID string, userID string) error {
	return s.mutate(func(doc *document) error {
		rec, ok := doc.guilds[guildID]
		if !ok {
			return guildstorage.ErrNotFound
		}
		for i, p := range rec.Permissions {
			if p.UserID == userID {
				rec.Permissions = append(rec.Permissions[:i], rec.Permissions[i+1:]...)
				return nil
			}
		}
		return guildstorage.ErrNotFound
	})
}

func (s *Store) Close() error {
	return nil
}
