package participant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atelier-edu/reparto/internal/errors"
)

// writeRoster writes a roster file into a temp directory and returns its path.
func writeRoster(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write roster file: %v", err)
	}
	return path
}

const twoParticipantRoster = `participants:
  - id: p-101
    name: Nora
    neurotype: ASD
    availability: 75
    strengths: [research, patterns]
    support_needs: [visual_supports]
  - id: p-102
    availability: 90
`

func TestNewRepository_StartsWithDefaults(t *testing.T) {
	repo := NewRepository(nil)

	if got := repo.Count(); got != 8 {
		t.Errorf("Count() = %d, want 8", got)
	}
	if got := repo.Source(); got != SourceBuiltin {
		t.Errorf("Source() = %q, want %q", got, SourceBuiltin)
	}
	if got := repo.ReloadCount(); got != 1 {
		t.Errorf("ReloadCount() = %d, want 1", got)
	}
	if repo.LoadedAt().IsZero() {
		t.Error("LoadedAt() should be set after construction")
	}
}

func TestRepository_LoadFile(t *testing.T) {
	path := writeRoster(t, t.TempDir(), twoParticipantRoster)
	repo := NewRepository(nil)

	if err := repo.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := repo.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := repo.Source(); got != path {
		t.Errorf("Source() = %q, want %q", got, path)
	}

	nora, err := repo.Get("p-101")
	if err != nil {
		t.Fatalf("Get(p-101) error = %v", err)
	}
	if nora.Name != "Nora" {
		t.Errorf("Name = %q, want %q", nora.Name, "Nora")
	}
	if nora.Neurotype != NeurotypeASD {
		t.Errorf("Neurotype = %q, want %q (file spells it ASD)", nora.Neurotype, NeurotypeASD)
	}
	if !nora.HasStrength("patterns") {
		t.Error("loaded profile should keep its strengths")
	}

	// The second entry omits name and neurotype; both get defaults.
	second, err := repo.Get("p-102")
	if err != nil {
		t.Fatalf("Get(p-102) error = %v", err)
	}
	if second.Name != "p-102" {
		t.Errorf("omitted name should default to the id, got %q", second.Name)
	}
	if second.Neurotype != NeurotypeTypical {
		t.Errorf("omitted neurotype should default to typical, got %q", second.Neurotype)
	}
}

func TestRepository_LoadFile_MissingFile(t *testing.T) {
	repo := NewRepository(nil)

	err := repo.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadFile() on a missing file should fail")
	}
	if !strings.Contains(err.Error(), "failed to read roster file") {
		t.Errorf("error %q should mention the read failure", err.Error())
	}
}

func TestRepository_LoadFile_InvalidYAML(t *testing.T) {
	path := writeRoster(t, t.TempDir(), "participants: [not closed")
	repo := NewRepository(nil)

	if err := repo.LoadFile(path); err == nil {
		t.Fatal("LoadFile() on malformed YAML should fail")
	}
}

func TestRepository_LoadFile_EmptyRoster(t *testing.T) {
	path := writeRoster(t, t.TempDir(), "participants: []\n")
	repo := NewRepository(nil)

	err := repo.LoadFile(path)
	if !errors.Is(err, errors.ErrRosterEmpty) {
		t.Errorf("LoadFile() error = %v, want ErrRosterEmpty", err)
	}
}

func TestRepository_LoadFile_DuplicateID(t *testing.T) {
	content := `participants:
  - id: p-101
    availability: 50
  - id: p-101
    availability: 60
`
	path := writeRoster(t, t.TempDir(), content)
	repo := NewRepository(nil)

	err := repo.LoadFile(path)
	if !errors.Is(err, errors.ErrDuplicateParticipant) {
		t.Errorf("LoadFile() error = %v, want ErrDuplicateParticipant", err)
	}
	if !strings.Contains(err.Error(), "p-101") {
		t.Errorf("error %q should name the duplicated id", err.Error())
	}
}

func TestRepository_LoadFile_InvalidAvailability(t *testing.T) {
	content := `participants:
  - id: p-101
    availability: 150
`
	path := writeRoster(t, t.TempDir(), content)
	repo := NewRepository(nil)

	err := repo.LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() should reject availability outside 0-100")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("LoadFile() error = %v, want ErrInvalidInput match", err)
	}
}

func TestRepository_LoadFile_KeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	good := writeRoster(t, dir, twoParticipantRoster)
	repo := NewRepository(nil)

	if err := repo.LoadFile(good); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("participants: []\n"), 0644); err != nil {
		t.Fatalf("Failed to write bad roster: %v", err)
	}

	if err := repo.LoadFile(bad); err == nil {
		t.Fatal("LoadFile() on an empty roster should fail")
	}

	// Previous roster stays active.
	if got := repo.Count(); got != 2 {
		t.Errorf("Count() after failed reload = %d, want 2", got)
	}
	if got := repo.Source(); got != good {
		t.Errorf("Source() after failed reload = %q, want %q", got, good)
	}
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := NewRepository(nil)

	_, err := repo.Get("p-999")
	if err == nil {
		t.Fatal("Get(p-999) should fail")
	}
	want := "participant 'p-999' not found"
	if err.Error() != want {
		t.Errorf("Get() error = %q, want %q", err.Error(), want)
	}
}

func TestRepository_Get_ReturnsCopy(t *testing.T) {
	repo := NewRepository(nil)

	p, err := repo.Get("p-001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	p.Strengths[0] = "changed"

	again, err := repo.Get("p-001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Strengths[0] == "changed" {
		t.Error("Get() must return a copy, not a view into the roster")
	}
}

func TestRepository_All_ReturnsCopies(t *testing.T) {
	repo := NewRepository(nil)

	all := repo.All()
	if len(all) != 8 {
		t.Fatalf("All() returned %d profiles, want 8", len(all))
	}
	all[0].ID = "changed"
	all[0].Strengths[0] = "changed"

	fresh := repo.All()
	if fresh[0].ID == "changed" || fresh[0].Strengths[0] == "changed" {
		t.Error("All() must return copies, not views into the roster")
	}
}

func TestRepository_IDs_PreservesOrder(t *testing.T) {
	path := writeRoster(t, t.TempDir(), twoParticipantRoster)
	repo := NewRepository(nil)
	if err := repo.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	ids := repo.IDs()
	if len(ids) != 2 || ids[0] != "p-101" || ids[1] != "p-102" {
		t.Errorf("IDs() = %v, want [p-101 p-102]", ids)
	}
}

func TestReadRosterFile(t *testing.T) {
	path := writeRoster(t, t.TempDir(), twoParticipantRoster)

	profiles, err := ReadRosterFile(path)
	if err != nil {
		t.Fatalf("ReadRosterFile() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("ReadRosterFile() returned %d profiles, want 2", len(profiles))
	}
}

// waitForCount polls the repository until it holds the wanted number of
// participants or the deadline passes.
func waitForCount(t *testing.T, repo *Repository, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.Count() == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("roster never reached %d participants (still %d)", want, repo.Count())
}

func TestRepository_WatchReload(t *testing.T) {
	dir := t.TempDir()
	path := writeRoster(t, dir, twoParticipantRoster)

	repo := NewRepository(nil)
	if err := repo.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	reloaded := make(chan []Profile, 1)
	repo.SetReloadCallback(func(profiles []Profile) {
		select {
		case reloaded <- profiles:
		default:
		}
	})

	if err := repo.StartWatching(); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer repo.StopWatching()

	grown := twoParticipantRoster + `  - id: p-103
    availability: 80
`
	if err := os.WriteFile(path, []byte(grown), 0644); err != nil {
		t.Fatalf("Failed to rewrite roster: %v", err)
	}

	waitForCount(t, repo, 3)

	select {
	case profiles := <-reloaded:
		if len(profiles) != 3 {
			t.Errorf("reload callback received %d profiles, want 3", len(profiles))
		}
	case <-time.After(2 * time.Second):
		t.Error("reload callback was never invoked")
	}

	if got := repo.ReloadCount(); got < 3 {
		t.Errorf("ReloadCount() = %d, want at least 3 (defaults, file, reload)", got)
	}
}

func TestRepository_WatchReload_InvalidFileKeepsOld(t *testing.T) {
	dir := t.TempDir()
	path := writeRoster(t, dir, twoParticipantRoster)

	repo := NewRepository(nil)
	if err := repo.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := repo.StartWatching(); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer repo.StopWatching()

	if err := os.WriteFile(path, []byte("participants: [broken"), 0644); err != nil {
		t.Fatalf("Failed to rewrite roster: %v", err)
	}

	// Give the watcher time to see the change and skip it.
	time.Sleep(300 * time.Millisecond)

	if got := repo.Count(); got != 2 {
		t.Errorf("Count() after broken reload = %d, want 2", got)
	}
}

func TestRepository_StartWatching_BuiltinRoster(t *testing.T) {
	repo := NewRepository(nil)

	if err := repo.StartWatching(); err == nil {
		repo.StopWatching()
		t.Fatal("StartWatching() should fail for the built-in roster")
	}
}

func TestRepository_StopWatching_Idempotent(t *testing.T) {
	path := writeRoster(t, t.TempDir(), twoParticipantRoster)
	repo := NewRepository(nil)
	if err := repo.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := repo.StartWatching(); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}

	// Calling StopWatching multiple times should not panic, nor should
	// stopping a repository that was never watching.
	repo.StopWatching()
	repo.StopWatching()
	NewRepository(nil).StopWatching()
}
