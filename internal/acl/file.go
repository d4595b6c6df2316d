package acl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce is how long the watcher waits for writes to settle before reloading.
const DefaultDebounce = 250 * time.Millisecond

// aclFile is the on-disk layout:
//
//	agents:
//	  reporting-bot:
//	    - company: SkyLink
//	    - family: CloudStorage
//	      product: ObjectStorage
//	  admin: []
//
// An agent with no entries is unrestricted.
type aclFile struct {
	Agents map[string][]aclEntry `yaml:"agents"`
}

type aclEntry struct {
	Company string `yaml:"company"`
	Family  string `yaml:"family"`
	Product string `yaml:"product"`
}

// FileProvider serves scopes from a YAML file that is reloaded when it changes.
type FileProvider struct {
	path     string
	log      *zap.SugaredLogger
	debounce time.Duration

	scopes  atomic.Pointer[map[string]schema.AccessScope]
	reloads atomic.Int64

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
}

var _ contract.ScopeProvider = &FileProvider{} // Compile-time check

// NewFileProvider loads path once. Call Watch to follow later edits.
func NewFileProvider(path string, log *zap.SugaredLogger) (*FileProvider, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve acl file %s", path)
	}
	fp := &FileProvider{path: abs, log: log, debounce: DefaultDebounce}
	if err := fp.Reload(); err != nil {
		return nil, err
	}
	return fp, nil
}

// GetUserScope implements contract.ScopeProvider.
func (fp *FileProvider) GetUserScope(ctx context.Context) (schema.AccessScope, error) {
	agentID, ok := AgentIDFrom(ctx)
	if !ok {
		return schema.AccessScope{}, ErrAgentIDNotFound
	}
	scope, ok := (*fp.scopes.Load())[agentID]
	if !ok {
		return schema.AccessScope{}, errors.Wrapf(ErrAgentNotAllowed, "agent %q", agentID)
	}
	return scope, nil
}

// Agents returns the number of agents in the current snapshot.
func (fp *FileProvider) Agents() int {
	return len(*fp.scopes.Load())
}

// Reloads returns how many snapshots have been installed.
func (fp *FileProvider) Reloads() int64 {
	return fp.reloads.Load()
}

// Reload reads the file and swaps in the new snapshot. On error the
// previous snapshot stays in place.
func (fp *FileProvider) Reload() error {
	scopes, err := loadScopes(fp.path)
	if err != nil {
		return err
	}
	fp.scopes.Store(&scopes)
	fp.reloads.Add(1)
	fp.log.Infow("acl loaded", "path", fp.path, "agents", len(scopes))
	return nil
}

// Watch starts following changes to the file. The parent directory is
// watched so editors that replace the file by rename are still seen.
func (fp *FileProvider) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(filepath.Dir(fp.path)); err != nil {
		_ = watcher.Close()
		return errors.Wrapf(err, "failed to watch acl file %s", fp.path)
	}

	fp.mu.Lock()
	fp.watcher = watcher
	fp.mu.Unlock()

	go fp.watchLoop(watcher)
	return nil
}

// Close stops the watcher, if any.
func (fp *FileProvider) Close() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.timer != nil {
		fp.timer.Stop()
	}
	if fp.watcher == nil {
		return nil
	}
	err := fp.watcher.Close()
	fp.watcher = nil
	return err
}

func (fp *FileProvider) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fp.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fp.log.Debugw("acl file changed", "op", event.Op.String())
				fp.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fp.log.Warnw("acl watcher error", "error", err)
		}
	}
}

func (fp *FileProvider) scheduleReload() {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.timer != nil {
		fp.timer.Stop()
	}
	fp.timer = time.AfterFunc(fp.debounce, func() {
		if err := fp.Reload(); err != nil {
			fp.log.Errorw("acl reload failed, keeping previous snapshot", "path", fp.path, "error", err)
		}
	})
}

func loadScopes(path string) (map[string]schema.AccessScope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read acl file %s", path)
	}
	var raw aclFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse acl file %s", path)
	}
	if raw.Agents == nil {
		return nil, errors.Newf("acl file %s has no agents section", path)
	}

	scopes := make(map[string]schema.AccessScope, len(raw.Agents))
	for agentID, entries := range raw.Agents {
		scope := schema.AccessScope{Entries: make([]schema.ScopeEntry, 0, len(entries))}
		for i, e := range entries {
			entry, err := e.decode()
			if err != nil {
				return nil, errors.Wrapf(err, "agent %q entry %d", agentID, i)
			}
			scope.Entries = append(scope.Entries, entry)
		}
		scopes[agentID] = scope
	}
	return scopes, nil
}

func (e aclEntry) decode() (schema.ScopeEntry, error) {
	var out schema.ScopeEntry
	if e.Company == "" && e.Family == "" && e.Product == "" {
		return out, fmt.Errorf("entry sets no field")
	}
	if e.Company != "" {
		c, ok := schema.ParseCompany(e.Company)
		if !ok {
			return out, fmt.Errorf("unknown company %q", e.Company)
		}
		out.Company = schema.Some(c)
	}
	if e.Family != "" {
		f, ok := schema.ParseFamily(e.Family)
		if !ok {
			return out, fmt.Errorf("unknown family %q", e.Family)
		}
		out.Family = schema.Some(f)
	}
	if e.Product != "" {
		p, ok := schema.ParseProduct(e.Product)
		if !ok {
			return out, fmt.Errorf("unknown product %q", e.Product)
		}
		out.Product = schema.Some(p)
	}
	return out, nil
}
