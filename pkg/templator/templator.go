package templator

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/natefinch/atomic"
)

const (
	// DefaultTemplateExt is the filename extension template files must
	// carry to be loaded from registered directories.
	DefaultTemplateExt = ".tmpl"

	// DefaultOutputDir is where RenderTemplate writes rendered files
	// unless WithOutputDir overrides it.
	DefaultOutputDir = "."
)

// Templator is the central entry point of the package. It owns the filter
// function map, the set of templates loaded from registered directories,
// and the output directory for rendered files. All methods are
// concurrent-safe.
type Templator struct {
	logger        *slog.Logger
	outputDir     string
	ext           string
	templateDirs  []string
	templates     *template.Template
	clean         *template.Template
	templateNames []string
	funcMap       template.FuncMap
	mu            sync.RWMutex
}

// Option is a function that configures a Templator.
type Option func(*Templator)

// WithOutputDir sets the directory RenderTemplate writes rendered files
// under. The directory is created on first write if it does not exist.
// Default: "."
func WithOutputDir(dir string) Option {
	return func(t *Templator) {
		t.outputDir = dir
	}
}

// WithLogger sets the logger used for load and render events.
// Default: a logger that discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Templator) {
		t.logger = logger
	}
}

// WithTemplateExt sets the filename extension template files must carry
// to be loaded from registered directories.
// Default: ".tmpl"
func WithTemplateExt(ext string) Option {
	return func(t *Templator) {
		t.ext = ext
	}
}

// NewTemplator creates a Templator with default settings, which can be
// overridden by providing one or more Option functions. The returned
// Templator has an empty template set; register directories with
// AddTemplateDir.
func NewTemplator(opts ...Option) (*Templator, error) {
	t := &Templator{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		outputDir: DefaultOutputDir,
		ext:       DefaultTemplateExt,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.funcMap = makeFuncMap()

	if err := t.Refresh(); err != nil {
		return nil, err
	}
	return t, nil
}

// makeFuncMap assembles the filter namespace installed on every template
// set the Templator parses, keyed by the names templates call them with.
func makeFuncMap() template.FuncMap {
	return template.FuncMap{
		"regex_replace": regexReplace,
		"regex_findall": regexFindAll,
	}
}

// AddTemplateDir registers dir as a template source and reloads the
// template set, so the directory's files are immediately renderable by
// name. If any file fails to parse, the registration is undone and the
// previous template set keeps serving.
func (t *Templator) AddTemplateDir(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.templateDirs = append(t.templateDirs, dir)
	if err := t.refreshLocked(); err != nil {
		t.templateDirs = t.templateDirs[:len(t.templateDirs)-1]
		return err
	}
	t.logger.Info("Registered template directory", "dir", dir)
	return nil
}

// Refresh reloads all template files from the registered directories,
// picking up new and changed files without restarting the application.
// The live template set is only replaced when every file parses.
func (t *Templator) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refreshLocked()
}

func (t *Templator) refreshLocked() error {
	parsed := template.New("").Funcs(t.funcMap)

	for _, dir := range t.templateDirs {
		pattern := filepath.Join(dir, "*"+t.ext)
		if _, err := parsed.ParseGlob(pattern); err != nil {
			// A directory with no matching files yet is not an error.
			if strings.Contains(err.Error(), "pattern matches no files") {
				continue
			}
			t.logger.Error("Failed to parse template files", "dir", dir, "error", err)
			return fmt.Errorf("failed to parse templates in %q: %w", dir, err)
		}
	}

	var names []string
	for _, tpl := range parsed.Templates() {
		// The root template has no name and is never rendered directly.
		if strings.HasSuffix(tpl.Name(), t.ext) {
			names = append(names, tpl.Name())
		}
	}
	sort.Strings(names)

	if len(t.templateDirs) > 0 && len(names) == 0 {
		t.logger.Warn("No template files found in registered directories", "ext", t.ext)
	}

	// Keep a clean, never-executed clone for string renders; an executed
	// template set cannot be cloned or reparsed.
	clean, err := parsed.Clone()
	if err != nil {
		t.logger.Error("Failed to clone template set", "error", err)
		return fmt.Errorf("failed to clone template set: %w", err)
	}

	t.templates = parsed
	t.clean = clean
	t.templateNames = names
	t.logger.Info("Loaded template files", "count", len(names))
	return nil
}

// Execute renders the named loaded template, writing the output to w.
// The data argument is exposed to the template as its dot value.
func (t *Templator) Execute(w io.Writer, name string, data any) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.templates.ExecuteTemplate(w, name, data)
}

// RenderString parses src as a template and renders it with data,
// returning the rendered text. The source is parsed into a clone of the
// clean template set, so it can reference loaded templates and the filter
// functions without mutating the live set.
func (t *Templator) RenderString(src string, data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set, err := t.clean.Clone()
	if err != nil {
		return "", fmt.Errorf("failed to clone template set: %w", err)
	}

	tpl, err := set.Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse string template: %w", err)
	}

	var buf bytes.Buffer
	if err = tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render string template: %w", err)
	}
	return buf.String(), nil
}

// RenderTemplate executes the named loaded template with data and writes
// the result to a file under the output directory, returning the written
// path. When outputName is empty, the template extension is stripped from
// name instead. The output is buffered in full and written atomically, so
// a render error never produces a file.
func (t *Templator) RenderTemplate(name, outputName string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	if outputName == "" {
		outputName = strings.TrimSuffix(name, t.ext)
	}

	if err := os.MkdirAll(t.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir %q: %w", t.outputDir, err)
	}

	path := filepath.Join(t.outputDir, outputName)
	if err := atomic.WriteFile(path, bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("failed to write rendered output: %w", err)
	}

	t.logger.Info("Rendered template", "template", name, "path", path)
	return path, nil
}

// TemplateNames returns the sorted names of the loaded template files.
func (t *Templator) TemplateNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.templateNames))
	copy(names, t.templateNames)
	return names
}

// OutputDir returns the directory rendered files are written under.
func (t *Templator) OutputDir() string {
	return t.outputDir
}
