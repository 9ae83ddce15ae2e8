package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

const (
	indexFile  = "dumps.json"
	reportFile = "report.json"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type artifacts struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewArtifacts - creates an artifact store rooted at dir
func NewArtifacts(fs afero.Fs, dir string) (interfaces.ArtifactStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &artifacts{fs: fs, dir: dir, now: time.Now}, nil
}

// SaveDump - writes <label>-<id>.png and .html and appends the dump to the index
func (a *artifacts) SaveDump(label, url string, screenshot []byte, html string) (entities.FailDump, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dump := entities.FailDump{
		ID:        uuid.NewString(),
		Label:     label,
		URL:       url,
		CreatedAt: a.now(),
	}
	base := fmt.Sprintf("%s-%s", SafeName(label), dump.ID[:8])

	if len(screenshot) > 0 {
		dump.Screenshot = filepath.Join(a.dir, base+".png")
		if err := afero.WriteFile(a.fs, dump.Screenshot, screenshot, 0o644); err != nil {
			return entities.FailDump{}, fmt.Errorf("failed to save screenshot: %w", err)
		}
	}
	if html != "" {
		dump.HTML = filepath.Join(a.dir, base+".html")
		if err := afero.WriteFile(a.fs, dump.HTML, []byte(html), 0o644); err != nil {
			return entities.FailDump{}, fmt.Errorf("failed to save page source: %w", err)
		}
	}

	history, err := a.dumps()
	if err != nil {
		return entities.FailDump{}, err
	}
	if err := a.writeJSON(indexFile, append(history, dump)); err != nil {
		return entities.FailDump{}, err
	}
	return dump, nil
}

// Dumps - loads the dump index
func (a *artifacts) Dumps() ([]entities.FailDump, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dumps()
}

func (a *artifacts) dumps() ([]entities.FailDump, error) {
	history := []entities.FailDump{}
	if err := a.readJSON(indexFile, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveReport - saves the scenario results of a run
func (a *artifacts) SaveReport(results []entities.ScenarioResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeJSON(reportFile, results)
}

// LoadReport - loads the last saved report
func (a *artifacts) LoadReport() ([]entities.ScenarioResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := []entities.ScenarioResult{}
	if err := a.readJSON(reportFile, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *artifacts) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(a.fs, filepath.Join(a.dir, name), data, 0o644)
}

// readJSON leaves v untouched when the file does not exist yet.
func (a *artifacts) readJSON(name string, v interface{}) error {
	data, err := afero.ReadFile(a.fs, filepath.Join(a.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// SafeName turns a scenario or step label into a file name.
func SafeName(label string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(label, "_"), "_.")
	if name == "" {
		return "step"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
