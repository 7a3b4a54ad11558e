// Package config parses archivist.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "archivist.toml"

// DefaultAccentColor is the default TUI accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level archivist.toml configuration.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Report  ReportConfig  `toml:"report"`
	Paths   PathsConfig   `toml:"paths"`
	Version VersionConfig `toml:"version"`
	Index   IndexConfig   `toml:"index"`
	Trigger TriggerConfig `toml:"trigger"`
	Log     LogConfig     `toml:"log"`
	TUI     TUIConfig     `toml:"tui"`

	// Root is the project root every relative path resolves against. It is
	// the directory holding archivist.toml, never the process cwd.
	Root string `toml:"-"`
}

// ProjectConfig identifies the project.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// ReportConfig names the watched artifact.
type ReportConfig struct {
	BaseName       string `toml:"base_name"`
	Extension      string `toml:"extension"`
	ResourceSuffix string `toml:"resource_suffix"`
	LatestSuffix   string `toml:"latest_suffix"`
	SourceFile     string `toml:"source_file"`
}

// PathsConfig locates the publish tree, the archive store and the index.
type PathsConfig struct {
	PublishDir       string   `toml:"publish_dir"`
	ArchiveDir       string   `toml:"archive_dir"`
	PublishArchive   string   `toml:"publish_archive"` // subtree of publish_dir
	SharedAssets     []string `toml:"shared_assets"`   // dirs under publish_dir
	IndexFile        string   `toml:"index_file"`
	SourceArchiveDir string   `toml:"source_archive_dir"`
}

// VersionConfig controls the Version Identifier.
type VersionConfig struct {
	HashSuffix bool   `toml:"hash_suffix"`
	HashSource string `toml:"hash_source"` // "git" or "content"
	HashLength int    `toml:"hash_length"`
	Date       string `toml:"date"` // fixed date override, YYYY-MM-DD
}

// IndexConfig controls the generated archive listing.
type IndexConfig struct {
	Title       string            `toml:"title"`
	Heading     string            `toml:"heading"`
	Placeholder string            `toml:"placeholder"`
	HTML        bool              `toml:"html"`
	FrontMatter map[string]string `toml:"front_matter"`
}

// TriggerConfig names the environment variable holding the rendered outputs.
type TriggerConfig struct {
	Env string `toml:"env"`
}

// LogConfig controls the JSONL run journal.
type LogConfig struct {
	Dir       string `toml:"dir"`
	Retention int    `toml:"retention"` // number of run logs to keep; 0 = unlimited
}

// TUIConfig controls the archive browser appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// Hash sources accepted by version.hash_source.
const (
	HashSourceGit     = "git"
	HashSourceContent = "content"
)

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Report.BaseName == "" || strings.ContainsAny(c.Report.BaseName, `/\`) {
		errs = append(errs, fmt.Errorf("report.base_name must be a plain file name"))
	}
	if !strings.HasPrefix(c.Report.Extension, ".") || len(c.Report.Extension) < 2 {
		errs = append(errs, fmt.Errorf("report.extension must start with a dot (e.g. \".html\")"))
	}
	if c.Report.ResourceSuffix == "" {
		errs = append(errs, fmt.Errorf("report.resource_suffix must not be empty"))
	}
	if c.Report.LatestSuffix == "" {
		errs = append(errs, fmt.Errorf("report.latest_suffix must not be empty"))
	}
	if c.Report.LatestSuffix != "" && c.Report.LatestSuffix == c.Report.ResourceSuffix {
		errs = append(errs, fmt.Errorf("report.latest_suffix must differ from report.resource_suffix"))
	}

	if c.Paths.PublishDir == "" {
		errs = append(errs, fmt.Errorf("paths.publish_dir must not be empty"))
	}
	if c.Paths.ArchiveDir == "" {
		errs = append(errs, fmt.Errorf("paths.archive_dir must not be empty"))
	}
	if c.Paths.PublishDir != "" && c.Paths.ArchiveDir != "" && within(c.PublishDir(), c.ArchiveDir()) {
		errs = append(errs, fmt.Errorf("paths.archive_dir must be outside paths.publish_dir"))
	}
	if c.Paths.PublishArchive == "" {
		errs = append(errs, fmt.Errorf("paths.publish_archive must not be empty"))
	}
	if c.Paths.IndexFile == "" {
		errs = append(errs, fmt.Errorf("paths.index_file must not be empty"))
	}

	if c.Version.HashSuffix {
		if c.Version.HashSource != HashSourceGit && c.Version.HashSource != HashSourceContent {
			errs = append(errs, fmt.Errorf("version.hash_source must be %q or %q", HashSourceGit, HashSourceContent))
		}
		if c.Version.HashLength < 4 || c.Version.HashLength > 40 {
			errs = append(errs, fmt.Errorf("version.hash_length must be between 4 and 40"))
		}
	}
	if c.Version.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Version.Date); err != nil {
			errs = append(errs, fmt.Errorf("version.date must be YYYY-MM-DD"))
		}
	}

	if c.Index.Title == "" {
		errs = append(errs, fmt.Errorf("index.title must not be empty"))
	}
	if c.Index.Heading == "" {
		errs = append(errs, fmt.Errorf("index.heading must not be empty"))
	}

	if c.Trigger.Env == "" {
		errs = append(errs, fmt.Errorf("trigger.env must not be empty"))
	}
	if c.Log.Retention < 0 {
		errs = append(errs, fmt.Errorf("log.retention must be >= 0 (0 = unlimited)"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#7D56F4\")"))
	}

	return errors.Join(errs...)
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Defaults returns a Config matching a Quarto website rendered into docs/.
func Defaults() Config {
	return Config{
		Report: ReportConfig{
			BaseName:       "report",
			Extension:      ".html",
			ResourceSuffix: "_files",
			LatestSuffix:   "-latest",
			SourceFile:     "report.qmd",
		},
		Paths: PathsConfig{
			PublishDir:       "docs",
			ArchiveDir:       "archived_reports",
			PublishArchive:   "archive",
			SharedAssets:     []string{"site_libs", "charts"},
			IndexFile:        "archive/index.qmd",
			SourceArchiveDir: "archive_qmd",
		},
		Version: VersionConfig{
			HashSuffix: false,
			HashSource: HashSourceGit,
			HashLength: 7,
		},
		Index: IndexConfig{
			Title:       "Archive",
			Heading:     "Past Reports",
			Placeholder: "No archived reports yet.",
		},
		Trigger: TriggerConfig{Env: "QUARTO_PROJECT_OUTPUT_FILES"},
		Log: LogConfig{
			Dir:       ".archivist/logs",
			Retention: 20,
		},
		TUI: TUIConfig{AccentColor: DefaultAccentColor},
	}
}

// Load reads archivist.toml from the given path. If path is empty, it walks
// up from the current working directory looking for archivist.toml. Returns
// an error if the file contains unknown keys (likely typos). A .env file next
// to the config and ARCHIVIST_* environment variables are applied on top.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, joinKeys(keys))
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("config: resolve root: %w", err)
	}
	cfg.Root = root

	if err := LoadDotEnv(root); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = DetectProjectName(root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s:\n%w", path, err)
	}
	return &cfg, nil
}

// joinKeys formats a slice of key names for display.
func joinKeys(keys []string) string {
	return strings.Join(keys, ", ")
}

// findConfig walks up from the current directory looking for archivist.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: %s not found (searched up from %s)", FileName, dir)
		}
		dir = parent
	}
}

// Abs resolves p against the project root unless it is already absolute.
func (c *Config) Abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// PublishDir is the absolute publish directory.
func (c *Config) PublishDir() string { return c.Abs(c.Paths.PublishDir) }

// ArchiveDir is the absolute Persistent Archive Store root.
func (c *Config) ArchiveDir() string { return c.Abs(c.Paths.ArchiveDir) }

// PublishArchiveDir is the archive subtree inside the publish directory.
func (c *Config) PublishArchiveDir() string {
	return filepath.Join(c.PublishDir(), c.Paths.PublishArchive)
}

// SharedAssetDirs are the shared asset directories inside the publish tree.
func (c *Config) SharedAssetDirs() []string {
	dirs := make([]string, len(c.Paths.SharedAssets))
	for i, d := range c.Paths.SharedAssets {
		dirs[i] = filepath.Join(c.PublishDir(), d)
	}
	return dirs
}

// IndexFile is the absolute path of the archive index source document.
func (c *Config) IndexFile() string { return c.Abs(c.Paths.IndexFile) }

// SourceFile is the absolute path of the report definition.
func (c *Config) SourceFile() string { return c.Abs(c.Report.SourceFile) }

// SourceArchiveDir is the absolute directory for archived report definitions.
func (c *Config) SourceArchiveDir() string { return c.Abs(c.Paths.SourceArchiveDir) }

// LogDir is the absolute directory for run journals.
func (c *Config) LogDir() string { return c.Abs(c.Log.Dir) }

// InitFile writes a default archivist.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists at %s", FileName, path)
	}

	content := `# archivist.toml: report archive configuration
# Place this file in the root of your Quarto project and register
#   project:
#     post-render: archivist run
# in _quarto.yml.

[project]
name = ""  # detected from _quarto.yml when empty

[report]
base_name = "report"
extension = ".html"
resource_suffix = "_files"
latest_suffix = "-latest"
source_file = "report.qmd"

[paths]
publish_dir = "docs"
archive_dir = "archived_reports"  # persistent store, outside publish_dir
publish_archive = "archive"       # mirror of the store under publish_dir
shared_assets = ["site_libs", "charts"]
index_file = "archive/index.qmd"
source_archive_dir = "archive_qmd"

[version]
hash_suffix = false  # append a short hash after the date
hash_source = "git"  # "git" (HEAD commit) or "content" (sha256 of the report)
hash_length = 7
date = ""            # fixed YYYY-MM-DD instead of today

[index]
title = "Archive"
heading = "Past Reports"
placeholder = "No archived reports yet."
html = false  # also write <publish_dir>/<publish_archive>/index.html

[trigger]
env = "QUARTO_PROJECT_OUTPUT_FILES"

[log]
dir = ".archivist/logs"
retention = 20  # number of run logs to keep; 0 = unlimited

[tui]
accent_color = "#7D56F4"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
