// Package settings persists the values administrators change at runtime:
// the announcement channel and the role pinged on new releases.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted document.
type Settings struct {
	AnnouncementChannelID string `yaml:"announcement_channel_id,omitempty"`
	PingRoleID            string `yaml:"ping_role_id,omitempty"`
}

// HasChannel reports whether an announcement channel is configured.
func (s Settings) HasChannel() bool {
	return s.AnnouncementChannelID != ""
}

// Store holds the current settings and writes every change back to disk.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// Open loads the settings document at path. A missing document is not an
// error: the seed values are used until the first write.
func Open(path string, seed Settings) (*Store, error) {
	s := &Store{
		path:    path,
		current: sanitize(seed),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc Settings
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	doc = sanitize(doc)

	// Values written by commands win over seeds from the environment.
	if doc.AnnouncementChannelID != "" {
		s.current.AnnouncementChannelID = doc.AnnouncementChannelID
	}
	if doc.PingRoleID != "" {
		s.current.PingRoleID = doc.PingRoleID
	}

	return s, nil
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetAnnouncementChannel updates and persists the announcement channel.
func (s *Store) SetAnnouncementChannel(channelID string) error {
	return s.update(func(doc *Settings) { doc.AnnouncementChannelID = strings.TrimSpace(channelID) })
}

// SetPingRole updates and persists the ping role.
func (s *Store) SetPingRole(roleID string) error {
	return s.update(func(doc *Settings) { doc.PingRoleID = strings.TrimSpace(roleID) })
}

func (s *Store) update(apply func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	apply(&next)

	if err := s.save(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// save writes the document through a temp file so readers never see a
// partially written file.
func (s *Store) save(doc Settings) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// sanitize drops untouched "YOUR_..." placeholders from example configs.
func sanitize(doc Settings) Settings {
	clean := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "YOUR_") {
			return ""
		}
		return v
	}
	return Settings{
		AnnouncementChannelID: clean(doc.AnnouncementChannelID),
		PingRoleID:            clean(doc.PingRoleID),
	}
}
