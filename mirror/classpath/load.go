package classpath

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"
)

//go:embed jdk.txtar
var bootstrapArchive []byte

// source is one raw declaration unit waiting to be decoded.
type source struct {
	name string
	data []byte
}

// Loader collects declaration units and links them into a Classpath.
type Loader struct {
	sources []source
	logger  *slog.Logger
}

// NewLoader returns a loader with no units. Use WithBootstrap to add the built-in
// java.lang/java.util/java.io library.
func NewLoader() *Loader {
	return &Loader{}
}

// WithLogger sets the logger used while loading and by the resulting classpath.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

// WithBootstrap adds the embedded bootstrap library.
func (l *Loader) WithBootstrap() *Loader {
	// The embedded archive is known to be well formed.
	_ = l.AddArchive("jdk.txtar", bootstrapArchive)
	return l
}

// AddUnit adds a single TOML declaration unit.
func (l *Loader) AddUnit(name string, data []byte) *Loader {
	l.sources = append(l.sources, source{name: name, data: data})
	return l
}

// AddArchive adds every .toml member of a txtar archive as a declaration unit.
func (l *Loader) AddArchive(name string, data []byte) error {
	ar := txtar.Parse(data)
	n := 0
	for _, f := range ar.Files {
		if !strings.HasSuffix(f.Name, ".toml") {
			continue
		}
		l.AddUnit(name+"!"+f.Name, f.Data)
		n++
	}
	if n == 0 {
		return fmt.Errorf("%s: archive has no .toml members", name)
	}
	return nil
}

// AddFile adds a .toml unit or a .txtar archive from disk.
func (l *Loader) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch filepath.Ext(path) {
	case ".toml":
		l.AddUnit(path, data)
		return nil
	case ".txtar", ".jar":
		return l.AddArchive(path, data)
	default:
		return fmt.Errorf("%s: unsupported declaration file (want .toml or .txtar)", path)
	}
}

// Load decodes all units concurrently and links them in the order they were added.
func (l *Loader) Load(ctx context.Context) (*Classpath, error) {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	units := make([]*unitFile, len(l.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range l.sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := decodeUnit(src.name, src.data)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cp := newClasspath(logger)
	lk := &linker{cp: cp}
	for i, u := range units {
		lk.units = append(lk.units, linkUnit{name: l.sources[i].name, file: u})
	}
	if err := lk.link(); err != nil {
		return nil, err
	}
	logger.Debug("classpath loaded",
		slog.Int("units", len(units)),
		slog.Int("classes", len(cp.order)))
	return cp, nil
}

// Bootstrap loads the embedded bootstrap library on its own.
func Bootstrap(ctx context.Context) (*Classpath, error) {
	return NewLoader().WithBootstrap().Load(ctx)
}
