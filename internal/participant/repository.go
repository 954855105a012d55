package participant

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/logging"
)

// SourceBuiltin is the Source() value when the repository serves the
// built-in default roster instead of a file.
const SourceBuiltin = "builtin"

// rosterFile is the on-disk YAML shape of a roster.
type rosterFile struct {
	Participants []Profile `yaml:"participants"`
}

// Repository holds the active roster and serves immutable views of it.
//
// Reads never block reloads for long: accessors copy under a read lock, and
// a reload validates the incoming roster fully before swapping it in. A
// roster that fails to parse or validate leaves the previous roster in
// place.
type Repository struct {
	mu          sync.RWMutex
	profiles    []Profile
	byID        map[string]int
	source      string
	loadedAt    time.Time
	reloadCount int

	logger *logging.Logger

	// Watch state, nil until StartWatching.
	watcher  *rosterWatcher
	onReload func([]Profile)
}

// NewRepository creates a repository preloaded with the built-in default
// roster. Pass a nil logger to disable logging.
func NewRepository(logger *logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NopLogger()
	}
	r := &Repository{
		logger: logger.WithComponent("roster"),
	}
	r.replace(DefaultProfiles(), SourceBuiltin)
	return r
}

// LoadFile replaces the active roster with the contents of a YAML roster
// file. On any error the previous roster stays active.
func (r *Repository) LoadFile(path string) error {
	profiles, err := ReadRosterFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaceLocked(profiles, path)
	r.logger.Info("roster loaded",
		"path", path,
		"participants", len(profiles))
	return nil
}

// ReadRosterFile parses and validates a YAML roster file without touching
// any repository. The roster CLI verb uses it to lint files.
func ReadRosterFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}

	profiles, err := prepareProfiles(file.Participants)
	if err != nil {
		return nil, fmt.Errorf("roster file %s: %w", path, err)
	}
	return profiles, nil
}

// prepareProfiles normalizes and validates a raw roster. It enforces the
// roster-level invariants: at least one participant and unique ids.
func prepareProfiles(raw []Profile) ([]Profile, error) {
	if len(raw) == 0 {
		return nil, errors.ErrRosterEmpty
	}

	seen := make(map[string]bool, len(raw))
	profiles := make([]Profile, 0, len(raw))
	for i, p := range raw {
		p = p.normalize()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("participant %d: %w", i+1, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s", errors.ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = true
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// replace swaps in a new roster.
func (r *Repository) replace(profiles []Profile, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaceLocked(profiles, source)
}

func (r *Repository) replaceLocked(profiles []Profile, source string) {
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		index[p.ID] = i
	}
	r.profiles = profiles
	r.byID = index
	r.source = source
	r.loadedAt = time.Now()
	r.reloadCount++
}

// All returns a deep copy of the active roster in file order.
func (r *Repository) All() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CloneProfiles(r.profiles)
}

// Get returns a copy of the profile with the given id.
func (r *Repository) Get(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return Profile{}, errors.NewNotFoundError("participant", id)
	}
	return r.profiles[i].Clone(), nil
}

// Count returns the number of participants in the active roster.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// IDs returns the participant ids in roster order.
func (r *Repository) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return IDs(r.profiles)
}

// Source returns the path of the roster file, or SourceBuiltin.
func (r *Repository) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// LoadedAt returns when the active roster was loaded.
func (r *Repository) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// ReloadCount returns how many times a roster has been swapped in,
// including the initial load.
func (r *Repository) ReloadCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reloadCount
}

// SetReloadCallback registers a callback invoked with the fresh roster
// after every successful watched reload.
func (r *Repository) SetReloadCallback(cb func([]Profile)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = cb
}

// StartWatching watches the roster file for changes and reloads it
// atomically on every successful parse. It fails when the repository is
// serving the built-in roster, since there is no file to watch.
func (r *Repository) StartWatching() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source == SourceBuiltin {
		return fmt.Errorf("cannot watch the built-in roster: load a roster file first")
	}
	if r.watcher != nil {
		return nil
	}

	w, err := newRosterWatcher(r.source, r.handleFileChange, r.logger)
	if err != nil {
		return fmt.Errorf("failed to watch roster file: %w", err)
	}
	r.watcher = w
	w.start()
	r.logger.Info("roster watch started", "path", r.source)
	return nil
}

// StopWatching stops the file watcher. Safe to call multiple times and
// when no watch is active.
func (r *Repository) StopWatching() {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	if w != nil {
		w.stop()
	}
}

// handleFileChange reloads the roster after the watcher reports a change.
// A roster that no longer parses or validates is logged and skipped.
func (r *Repository) handleFileChange(path string) {
	profiles, err := ReadRosterFile(path)
	if err != nil {
		r.logger.Warn("roster reload skipped",
			"path", path,
			"error", err.Error())
		return
	}

	r.mu.Lock()
	r.replaceLocked(profiles, path)
	cb := r.onReload
	count := r.reloadCount
	r.mu.Unlock()

	r.logger.Info("roster reloaded",
		"path", path,
		"participants", len(profiles),
		"reload_count", count)

	if cb != nil {
		cb(CloneProfiles(profiles))
	}
}
