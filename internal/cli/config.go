package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/profile"
)

// ManifestName is the project manifest discovered from the working directory.
const ManifestName = "blockc.toml"

// Built-in defaults, overridden by the manifest and then by flags.
const (
	DefaultTarget = profile.TargetArduino
	DefaultDevice = profile.DeviceGeneric
	DefaultDB     = "blockc.db"
)

// Manifest is a parsed blockc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config ManifestConfig
}

// ManifestConfig mirrors the TOML layout.
type ManifestConfig struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
}

// ProjectConfig is the [project] table.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// BuildConfig is the [build] table.
type BuildConfig struct {
	Target      string `toml:"target"`
	Device      string `toml:"device"`
	BlocksDir   string `toml:"blocks_dir"`
	IdleDelayMS *int   `toml:"idle_delay_ms"`
}

// BuildFlags are the per-command build overrides.
type BuildFlags struct {
	Target      string
	Device      string
	BlocksDir   string
	IdleDelayMS int
}

// Settings are the effective build settings of one command.
type Settings struct {
	Target      string `json:"target"`
	Device      string `json:"device"`
	BlocksDir   string `json:"blocks_dir,omitempty"`
	IdleDelayMS int    `json:"idle_delay_ms,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Manifest    string `json:"manifest,omitempty"`
}

func addBuildFlags(cmd *cobra.Command, f *BuildFlags) {
	cmd.Flags().StringVarP(&f.Target, "target", "t", "", "target language (arduino|micropython)")
	cmd.Flags().StringVarP(&f.Device, "device", "d", "", "device profile")
	cmd.Flags().StringVar(&f.BlocksDir, "blocks-dir", "", "directory of custom CUE block definitions")
	cmd.Flags().IntVar(&f.IdleDelayMS, "idle-delay-ms", 0, "scheduling loop idle delay in milliseconds")
}

// FindManifest walks up from startDir looking for blockc.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var cfg ManifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("project", "name") && strings.TrimSpace(cfg.Project.Name) == "" {
		return nil, fmt.Errorf("%s: [project].name is empty", path)
	}
	if cfg.Build.IdleDelayMS != nil && *cfg.Build.IdleDelayMS < 0 {
		return nil, fmt.Errorf("%s: [build].idle_delay_ms must be non-negative", path)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// discoverManifest loads an explicit manifest path, or the nearest one above
// the working directory. No manifest is not an error.
func discoverManifest(explicit string) (*Manifest, error) {
	if explicit != "" {
		return LoadManifest(explicit)
	}
	path, ok, err := FindManifest(".")
	if err != nil || !ok {
		return nil, err
	}
	return LoadManifest(path)
}

// resolveSettings layers flags over the manifest over the defaults. Only
// flags the user set take part.
func resolveSettings(cmd *cobra.Command, root *RootOptions, f *BuildFlags) (*Settings, error) {
	m, err := discoverManifest(root.Manifest)
	if err != nil {
		return nil, err
	}

	s := &Settings{Target: DefaultTarget, Device: DefaultDevice}
	if m != nil {
		s.Manifest = m.Path
		s.ProjectName = m.Config.Project.Name
		b := m.Config.Build
		if b.Target != "" {
			s.Target = b.Target
		}
		if b.Device != "" {
			s.Device = b.Device
		}
		if b.BlocksDir != "" {
			s.BlocksDir = b.BlocksDir
			if !filepath.IsAbs(s.BlocksDir) {
				s.BlocksDir = filepath.Join(m.Root, s.BlocksDir)
			}
		}
		if b.IdleDelayMS != nil {
			s.IdleDelayMS = *b.IdleDelayMS
		}
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		s.Target = f.Target
	}
	if flags.Changed("device") {
		s.Device = f.Device
	}
	if flags.Changed("blocks-dir") {
		s.BlocksDir = f.BlocksDir
	}
	if flags.Changed("idle-delay-ms") {
		if f.IdleDelayMS < 0 {
			return nil, fmt.Errorf("--idle-delay-ms must be non-negative")
		}
		s.IdleDelayMS = f.IdleDelayMS
	}
	return s, nil
}
