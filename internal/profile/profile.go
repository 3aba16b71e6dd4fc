// Package profile manages the user's profile.json: identity, preferences,
// compliance policies, and the security policy consumed by vetting.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// ProfileFile is the profile file name inside the config directory.
const ProfileFile = "profile.json"

// FileSystem abstracts file operations for testability.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// OSFileSystem implements FileSystem using the real OS.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (OSFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// Rule is one user-defined compliance policy checked by the check_policies
// tool.
type Rule struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Profile is the persisted user profile.
type Profile struct {
	Name        string         `json:"name"`
	Preferences map[string]any `json:"preferences"`
	Policies    []Rule         `json:"policies"`
	Security    models.Policy  `json:"security"`
}

// DefaultProfile returns a reasonably safe default profile.
func DefaultProfile() *Profile {
	return &Profile{
		Name:        "User",
		Preferences: map[string]any{"default_tool": "shell"},
		Policies: []Rule{
			{
				Name:        "no_root_processes",
				Enabled:     false,
				Description: "Ensures no processes are running with root or SYSTEM privileges.",
			},
		},
		Security: models.Policy{
			CommandBlacklist:    []string{"rm", "del", "format", "mkfs", "shutdown", "reboot"},
			FileAccessBlacklist: []string{"/etc/shadow", "/etc/passwd", `C:\Windows\System32\config`},
			AllowShellCommands:  true,
			AllowToolUsage:      true,
		},
	}
}

// Store loads and persists the profile. Safe for use from the manage_profile
// tool and the session wiring at the same time.
type Store struct {
	fs   FileSystem
	path string
	mu   sync.Mutex
}

// NewStore creates a Store over <dir>/profile.json using the real filesystem.
func NewStore(dir string) *Store {
	return NewStoreWithFS(dir, OSFileSystem{})
}

// NewStoreWithFS creates a Store with a custom filesystem (for testing).
func NewStoreWithFS(dir string, fs FileSystem) *Store {
	return &Store{fs: fs, path: filepath.Join(dir, ProfileFile)}
}

// Path returns the profile file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the profile, creating and persisting the default profile when
// the file does not exist. A corrupt file is an error rather than a silent
// fallback.
func (s *Store) Load() (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*Profile, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			p := DefaultProfile()
			if err := s.saveLocked(p); err != nil {
				return nil, err
			}
			return p, nil
		}
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return &p, nil
}

// Save persists the profile with stable indentation.
func (s *Store) Save(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(p)
}

func (s *Store) saveLocked(p *Profile) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return s.fs.WriteFile(s.path, data, 0o644)
}

// Policy returns the security section as an in-memory policy value.
func (s *Store) Policy() (models.Policy, error) {
	p, err := s.Load()
	if err != nil {
		return models.Policy{}, err
	}
	return p.Security, nil
}

// Get resolves a dotted key ("preferences.default_tool") against the profile
// rendered as generic JSON. found is false when any segment is missing.
func (s *Store) Get(key string) (value any, found bool, err error) {
	p, err := s.Load()
	if err != nil {
		return nil, false, err
	}
	m, err := toMap(p)
	if err != nil {
		return nil, false, err
	}

	cur := any(m)
	for _, seg := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false, nil
		}
	}
	return cur, true, nil
}

// Set writes a dotted key, creating intermediate objects as needed, and
// persists the result.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadLocked()
	if err != nil {
		return err
	}
	m, err := toMap(p)
	if err != nil {
		return err
	}

	segs := strings.Split(key, ".")
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var updated Profile
	if err := json.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("set %q: resulting profile is invalid: %w", key, err)
	}
	return s.saveLocked(&updated)
}

func toMap(p *Profile) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
