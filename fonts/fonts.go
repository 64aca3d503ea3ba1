// Package fonts maps font family names to loaded font sources.
//
// A Registry starts with the Go font families bundled in
// golang.org/x/image/font/gofont, so rendering never depends on system fonts.
// Additional TrueType or OpenType files can be registered at runtime; their
// family name is read from the font's name table.
//
// Family lookups are case-insensitive. Resolve maps an unknown family to
// the fallback family instead of failing, which is what drawing code wants;
// Face and Source report ErrUnknownFamily.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"

	"github.com/gogpu/card/internal/lru"
)

// Fallback is the family used when a requested family is not registered.
const Fallback = "Go"

// FaceCacheSize bounds the number of cached faces per registry.
const FaceCacheSize = 64

var (
	// ErrUnknownFamily is returned for a family that is not registered.
	ErrUnknownFamily = errors.New("fonts: unknown family")

	// ErrNoFamily is returned when a font file carries no family name.
	ErrNoFamily = errors.New("fonts: font has no family name")

	// ErrInvalidSize is returned for a non-positive face size.
	ErrInvalidSize = errors.New("fonts: size must be positive")
)

var builtin = []struct {
	family string
	ttf    []byte
}{
	{"Go", goregular.TTF},
	{"Go Bold", gobold.TTF},
	{"Go Italic", goitalic.TTF},
	{"Go Bold Italic", gobolditalic.TTF},
	{"Go Medium", gomedium.TTF},
	{"Go Medium Italic", gomediumitalic.TTF},
	{"Go Mono", gomono.TTF},
	{"Go Mono Bold", gomonobold.TTF},
	{"Go Mono Italic", gomonoitalic.TTF},
	{"Go Mono Bold Italic", gomonobolditalic.TTF},
	{"Go Smallcaps", gosmallcaps.TTF},
	{"Go Smallcaps Italic", gosmallcapsitalic.TTF},
}

type faceKey struct {
	family string
	size   float64
}

type entry struct {
	name   string
	data   []byte
	source *text.FontSource // parsed lazily
}

// Registry is a set of font families. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	families map[string]*entry
	faces    *lru.Cache[faceKey, text.Face]
}

// NewRegistry returns a registry holding the bundled Go font families.
func NewRegistry() *Registry {
	r := &Registry{
		families: make(map[string]*entry, len(builtin)),
		faces:    lru.New[faceKey, text.Face](FaceCacheSize),
	}
	for _, b := range builtin {
		r.families[key(b.family)] = &entry{name: b.family, data: b.ttf}
	}
	return r
}

var shared = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry.
func Default() *Registry { return shared() }

func key(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.families))
	for _, e := range r.families {
		names = append(names, e.name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.families[key(family)]
	return ok
}

// Resolve returns the registered spelling of family, or Fallback when the
// family is unknown.
func (r *Registry) Resolve(family string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.families[key(family)]; ok {
		return e.name
	}
	return Fallback
}

// Source returns the parsed font source of family.
func (r *Registry) Source(family string) (*text.FontSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sourceLocked(family)
}

func (r *Registry) sourceLocked(family string) (*text.FontSource, error) {
	e, ok := r.families[key(family)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	if e.source == nil {
		src, err := text.NewFontSource(e.data)
		if err != nil {
			return nil, fmt.Errorf("fonts: load %q: %w", e.name, err)
		}
		e.source = src
	}
	return e.source, nil
}

// Face returns a face of family at size pixels. Faces are cached per family
// and size.
func (r *Registry) Face(family string, size float64) (text.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	k := faceKey{family: key(family), size: size}
	return r.faces.GetOrCreate(k, func() (text.Face, error) {
		src, err := r.sourceLocked(family)
		if err != nil {
			return nil, err
		}
		return src.Face(size), nil
	})
}

// RegisterTTF adds a TrueType or OpenType font and returns its family
// name. Registering a family that already exists replaces it.
func (r *Registry) RegisterTTF(data []byte) (string, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("fonts: parse: %w", err)
	}
	family := strings.TrimSpace(face.Describe().Family)
	if family == "" {
		return "", ErrNoFamily
	}

	buf := slices.Clone(data)
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(family)
	if old, ok := r.families[k]; ok && old.source != nil {
		_ = old.source.Close()
	}
	r.families[k] = &entry{name: family, data: buf}
	r.faces.DeleteFunc(func(fk faceKey) bool { return fk.family == k })
	return family, nil
}

// RegisterFile reads and registers the font file at path.
func (r *Registry) RegisterFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fonts: %w", err)
	}
	family, err := r.RegisterTTF(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return family, nil
}

// RegisterDir registers every .ttf and .otf file directly inside dir and
// returns the families added. It stops at the first file that fails.
func (r *Registry) RegisterDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	var added []string
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".ttf", ".otf":
		default:
			continue
		}
		family, err := r.RegisterFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return added, err
		}
		added = append(added, family)
	}
	return added, nil
}

// Close releases every parsed font source. The registry stays usable;
// sources are parsed again on demand.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.families {
		if e.source != nil {
			_ = e.source.Close()
			e.source = nil
		}
	}
	r.faces.Clear()
	return nil
}
