package state

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Mutation is one atomic edit of an AppState. The set is closed: values are
// built by the constructors in this package or by ParsePath.
type Mutation interface {
	// Paths lists the dotted paths the mutation writes.
	Paths() []string

	// Apply writes the mutation into s. On error s may be partially
	// written, so callers apply mutations to a clone.
	Apply(s *AppState) error

	sealed()
}

type kind uint8

const (
	kindString kind = iota
	kindOptString
	kindBool
	kindInt
	kindFloat
	kindLayout
)

var kindNames = [...]string{
	kindString:    "string",
	kindOptString: "string or nil",
	kindBool:      "bool",
	kindInt:       "integer",
	kindFloat:     "number",
	kindLayout:    "layout mode",
}

// field is a typed lens onto one leaf of AppState.
type field struct {
	path     string
	kind     kind
	readOnly bool
	get      func(s *AppState) any
	set      func(s *AppState, v any)
}

var fieldList = []*field{
	{
		path: "meta.version", kind: kindString, readOnly: true,
		get: func(s *AppState) any { return s.Meta.Version },
	},
	{
		path: "meta.lastModifiedEpochMs", kind: kindInt, readOnly: true,
		get: func(s *AppState) any { return s.Meta.LastModified },
	},
	{
		path: "content.to", kind: kindString,
		get: func(s *AppState) any { return s.Content.To },
		set: func(s *AppState, v any) { s.Content.To = v.(string) },
	},
	{
		path: "content.message", kind: kindString,
		get: func(s *AppState) any { return s.Content.Message },
		set: func(s *AppState, v any) { s.Content.Message = v.(string) },
	},
	{
		path: "content.from", kind: kindString,
		get: func(s *AppState) any { return s.Content.From },
		set: func(s *AppState, v any) { s.Content.From = v.(string) },
	},
	{
		path: "content.quoteId", kind: kindOptString,
		get: func(s *AppState) any {
			if s.Content.QuoteID == nil {
				return nil
			}
			return *s.Content.QuoteID
		},
		set: func(s *AppState, v any) { s.Content.QuoteID = v.(*string) },
	},
	{
		path: "design.themeId", kind: kindString,
		get: func(s *AppState) any { return s.Design.ThemeID },
		set: func(s *AppState, v any) { s.Design.ThemeID = v.(string) },
	},
	{
		path: "design.fontFamily", kind: kindString,
		get: func(s *AppState) any { return s.Design.FontFamily },
		set: func(s *AppState, v any) { s.Design.FontFamily = v.(string) },
	},
	{
		path: "design.layoutMode", kind: kindLayout,
		get: func(s *AppState) any { return s.Design.LayoutMode },
		set: func(s *AppState, v any) { s.Design.LayoutMode = v.(LayoutMode) },
	},
	{
		path: "design.showWatermark", kind: kindBool,
		get: func(s *AppState) any { return s.Design.ShowWatermark },
		set: func(s *AppState, v any) { s.Design.ShowWatermark = v.(bool) },
	},
	{
		path: "config.canvasScale", kind: kindFloat,
		get: func(s *AppState) any { return s.Config.CanvasScale },
		set: func(s *AppState, v any) { s.Config.CanvasScale = v.(float64) },
	},
	{
		path: "config.width", kind: kindInt,
		get: func(s *AppState) any { return s.Config.Width },
		set: func(s *AppState, v any) { s.Config.Width = v.(int) },
	},
	{
		path: "config.height", kind: kindInt,
		get: func(s *AppState) any { return s.Config.Height },
		set: func(s *AppState, v any) { s.Config.Height = v.(int) },
	},
	{
		path: "config.exportQuality", kind: kindFloat,
		get: func(s *AppState) any { return s.Config.ExportQuality },
		set: func(s *AppState, v any) { s.Config.ExportQuality = v.(float64) },
	},
}

var (
	fields   = make(map[string]*field, len(fieldList))
	mappings = make(map[string]bool)
)

func init() {
	for _, f := range fieldList {
		fields[f.path] = f
		segs := strings.Split(f.path, ".")
		for i := 1; i < len(segs); i++ {
			mappings[strings.Join(segs[:i], ".")] = true
		}
	}
}

// coerce converts v to the Go type stored in the field.
func (f *field) coerce(v any) (any, error) {
	bad := &TypeError{Path: f.path, Want: kindNames[f.kind], Got: v}
	switch f.kind {
	case kindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case kindOptString:
		switch x := v.(type) {
		case nil:
			return (*string)(nil), nil
		case string:
			return &x, nil
		case *string:
			if x == nil {
				return (*string)(nil), nil
			}
			s := *x
			return &s, nil
		}
	case kindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case kindInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int32:
			return int(x), nil
		case int64:
			return int(x), nil
		case uint32:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) && math.Abs(x) <= math.MaxInt32 {
				return int(x), nil
			}
		}
	case kindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case kindLayout:
		switch x := v.(type) {
		case LayoutMode:
			return x, nil
		case string:
			return LayoutMode(x), nil
		}
	}
	return nil, bad
}

// set is a single-leaf mutation.
type set struct {
	f     *field
	value any
}

func (m set) Paths() []string { return []string{m.f.path} }

func (m set) Apply(s *AppState) error {
	v, err := m.f.coerce(m.value)
	if err != nil {
		return err
	}
	m.f.set(s, v)
	return nil
}

func (set) sealed() {}

// batch applies several mutations as one step.
type batch []Mutation

func (b batch) Paths() []string {
	var out []string
	for _, m := range b {
		out = append(out, m.Paths()...)
	}
	return out
}

func (b batch) Apply(s *AppState) error {
	for _, m := range b {
		if err := m.Apply(s); err != nil {
			return err
		}
	}
	return nil
}

func (batch) sealed() {}

// Batch combines mutations into one atomic step.
func Batch(ms ...Mutation) Mutation {
	return batch(slices.Clone(ms))
}

func leaf(path string, v any) Mutation {
	return set{f: fields[path], value: v}
}

// SetRecipient sets content.to.
func SetRecipient(v string) Mutation { return leaf("content.to", v) }

// SetMessage sets content.message.
func SetMessage(v string) Mutation { return leaf("content.message", v) }

// SetSender sets content.from.
func SetSender(v string) Mutation { return leaf("content.from", v) }

// ClearQuote removes content.quoteId.
func ClearQuote() Mutation { return leaf("content.quoteId", nil) }

// UseQuote sets the message to the quote text and records its id.
func UseQuote(q Quote) Mutation {
	return Batch(SetMessage(q.Text), leaf("content.quoteId", q.ID))
}

// SetTheme sets design.themeId. The id is checked when a frame is drawn.
func SetTheme(id string) Mutation { return leaf("design.themeId", id) }

// SetFontFamily sets design.fontFamily.
func SetFontFamily(v string) Mutation { return leaf("design.fontFamily", v) }

// SetLayoutMode sets design.layoutMode.
func SetLayoutMode(v LayoutMode) Mutation { return leaf("design.layoutMode", v) }

// SetShowWatermark sets design.showWatermark.
func SetShowWatermark(v bool) Mutation { return leaf("design.showWatermark", v) }

// SetCanvasScale sets config.canvasScale.
func SetCanvasScale(v float64) Mutation { return leaf("config.canvasScale", v) }

// SetWidth sets config.width.
func SetWidth(v int) Mutation { return leaf("config.width", v) }

// SetHeight sets config.height.
func SetHeight(v int) Mutation { return leaf("config.height", v) }

// SetSize sets config.width and config.height in one step.
func SetSize(w, h int) Mutation { return Batch(SetWidth(w), SetHeight(h)) }

// SetExportQuality sets config.exportQuality.
func SetExportQuality(v float64) Mutation { return leaf("config.exportQuality", v) }

// ParsePath resolves a dotted path against the state schema and returns the
// mutation that assigns value there. A path naming a mapping ("content")
// takes a map[string]any and assigns each of its keys.
func ParsePath(path string, value any) (Mutation, error) {
	if f, ok := fields[path]; ok {
		if f.readOnly {
			return nil, &PathError{Path: path, Segment: path, Err: ErrReadOnly}
		}
		if _, err := f.coerce(value); err != nil {
			return nil, err
		}
		return set{f: f, value: value}, nil
	}

	if err := checkPath(path); err != nil {
		return nil, err
	}

	// path names a mapping.
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &TypeError{Path: path, Want: "mapping", Got: value}
	}
	var out batch
	for _, k := range slices.Sorted(maps.Keys(m)) {
		sub, err := ParsePath(path+"."+k, m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

// checkPath returns nil if path names a mapping node, or the reason it does
// not resolve.
func checkPath(path string) error {
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		if seg == "" {
			return &PathError{Path: path, Segment: seg, Err: ErrEmptyPath}
		}
		prefix := strings.Join(segs[:i+1], ".")
		if _, isLeaf := fields[prefix]; isLeaf && i < len(segs)-1 {
			return &PathError{Path: path, Segment: seg, Err: ErrNotMapping}
		}
		if !mappings[prefix] {
			if _, isLeaf := fields[prefix]; !isLeaf {
				return &PathError{Path: path, Segment: seg, Err: ErrUnknownField}
			}
		}
	}
	return nil
}

// Lookup returns the value stored at path.
func Lookup(s AppState, path string) (any, error) {
	if f, ok := fields[path]; ok {
		return f.get(&s), nil
	}
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return nil, &PathError{Path: path, Segment: path, Err: fmt.Errorf("%w: %s is a mapping", ErrUnknownField, path)}
}
