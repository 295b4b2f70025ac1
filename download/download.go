// Package download stores files received from the signature service.
package download

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/utils"
)

// maxCandidates bounds the search for a free file name.
const maxCandidates = 9999

// A Sink receives downloaded files and returns where each was stored.
type Sink interface {
	Save(name string, data []byte) (string, error)
}

// Dir writes downloads into a directory. Existing files are never
// overwritten: a clash gets a numeric suffix, "report_1.sig",
// "report_2.sig" and so on.
type Dir struct {
	path   string
	logger *application.Logger
}

var _ Sink = (*Dir)(nil)

// NewDir returns a Dir writing into path.
func NewDir(path string, logger *application.Logger) *Dir {
	if logger == nil {
		logger = application.NewNopLogger()
	}
	return &Dir{path: path, logger: logger.Named("download")}
}

// Path returns the directory downloads are written to.
func (d *Dir) Path() string {
	return d.path
}

// Save writes data under name, or the next free variant of it.
func (d *Dir) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(d.path, utils.SanitizeFileName(name, "download"))
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 0; i <= maxCandidates; i++ {
		target := path
		if i > 0 {
			target = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		// Downloads may be private keys.
		err := utils.WriteFile(target, data, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		d.logger.Info("saved download", "path", target, "bytes", len(data))
		return target, nil
	}
	return "", fmt.Errorf("no free file name for %s", path)
}

// Memory keeps downloads in memory.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
}

var _ Sink = (*Memory)(nil)

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Save records data under name and returns name.
func (m *Memory) Save(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = utils.SanitizeFileName(name, "download")
	if _, ok := m.files[name]; !ok {
		m.order = append(m.order, name)
	}
	m.files[name] = append([]byte(nil), data...)
	return name, nil
}

// File returns the content saved under name.
func (m *Memory) File(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Names returns the saved names in first-save order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
