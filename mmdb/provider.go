package mmdb

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
)

var (
	// ErrNotOpened is returned by lookups on a provider whose databases
	// have not been opened.
	ErrNotOpened = errors.New("provider not opened")
	// ErrNoDatabases is returned by Open when none of a provider's
	// database files exist in the chosen directory.
	ErrNoDatabases = errors.New("no database files found")
)

// Field describes one template field a provider can resolve, for help output
// and template listings.
type Field struct {
	// Name is the field name as written in templates.
	Name string
	// Description is a one-line human-readable explanation.
	Description string
	// Example is a representative value for documentation.
	Example string
}

// Provider resolves metadata fields for addresses from a set of local
// database files.
//
// A Provider is created closed; Open loads its databases from a directory.
// Lookup and Routable must only be called on an opened provider and must be
// safe for concurrent use once opened.
type Provider interface {
	// Name is the human-readable provider name.
	Name() string
	// DefaultDir is the directory searched when the caller does not
	// specify one.
	DefaultDir() string
	// FileNames lists the database file names the provider recognizes.
	// Open succeeds when at least one exists.
	FileNames() []string
	// Fields lists the template fields the provider resolves.
	Fields() []Field
	// Open loads databases from dir.
	Open(dir string) error
	// Close releases database handles. Closing a closed provider is a
	// no-op.
	Close() error
	// Lookup resolves field values for addr; raw is the address text as
	// matched. Fields without data resolve to their zero text.
	Lookup(addr netip.Addr, raw string) (map[string]string, error)
	// Routable reports whether addr has an entry in the provider's
	// routing data. Used to skip decoration of unroutable addresses.
	Routable(addr netip.Addr) bool
}

// envDirKeys are checked in order for a database directory override. The
// second name is kept for compatibility with existing deployments.
var envDirKeys = []string{"IPMARK_MMDB_DIR", "GEOIP_MMDB_DIR"}

// EnvDir returns the database directory configured in the environment.
func EnvDir() (string, bool) {
	for _, key := range envDirKeys {
		if dir := os.Getenv(key); dir != "" {
			return dir, true
		}
	}
	return "", false
}

// Registry holds named providers and tracks which one is active.
//
// A Registry is not safe for concurrent mutation; configure it during
// startup and treat it as read-only afterwards.
type Registry struct {
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry with the MaxMind provider registered and
// active.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register("maxmind", NewMaxMind())
	r.active = "maxmind"
	return r
}

// Register adds a provider under name, replacing any previous registration.
func (r *Registry) Register(name string, p Provider) {
	r.providers[name] = p
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetActive selects the provider used by Active and OpenActive.
func (r *Registry) SetActive(name string) error {
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("unknown provider %q (have %v)", name, r.Names())
	}
	r.active = name
	return nil
}

// Active returns the currently selected provider.
func (r *Registry) Active() (Provider, error) {
	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("no active provider")
	}
	return p, nil
}

// OpenActive opens the active provider's databases. The directory is
// resolved in precedence order: the dir argument, the environment, the
// provider's default directory.
func (r *Registry) OpenActive(dir string) (Provider, error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		if envDir, ok := EnvDir(); ok {
			dir = envDir
		} else {
			dir = p.DefaultDir()
		}
	}
	if err := p.Open(dir); err != nil {
		return nil, fmt.Errorf("opening provider %q: %w", r.active, err)
	}
	return p, nil
}

// Describe writes a human-readable summary of every registered provider:
// its default directory, recognized files, and whether any of them exist at
// the default location.
func (r *Registry) Describe(w io.Writer) error {
	if dir, ok := EnvDir(); ok {
		fmt.Fprintf(w, "Database directory from environment: %s\n\n", dir)
	} else {
		fmt.Fprintf(w, "No database directory set in environment (%s)\n\n", envDirKeys[0])
	}

	for _, name := range r.Names() {
		p := r.providers[name]
		fmt.Fprintf(w, "Provider: %s\n", name)
		fmt.Fprintf(w, "  Name: %s\n", p.Name())
		fmt.Fprintf(w, "  Default directory: %s\n", p.DefaultDir())
		fmt.Fprintf(w, "  Recognized files:\n")
		for _, file := range p.FileNames() {
			fmt.Fprintf(w, "    - %s\n", file)
		}
		if anyFileExists(p.DefaultDir(), p.FileNames()) {
			fmt.Fprintf(w, "  Status: installed\n")
		} else {
			fmt.Fprintf(w, "  Status: not installed, or a custom directory is required\n")
		}
		fmt.Fprintln(w)
	}
	return nil
}

func anyFileExists(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
