package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/placeholder"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "contestgen.json"

	// LanguagesFileName lists default languages, one per line.
	LanguagesFileName = "default_lang.txt"

	// DefaultCacheDir holds per-problem metadata relative to the contest
	// directory.
	DefaultCacheDir = "cache"

	// DefaultContestURL is the contest page pattern.
	DefaultContestURL = "https://atcoder.jp/contests/{{contest.id}}"

	// DefaultTaskURL is the problem page pattern.
	DefaultTaskURL = "https://atcoder.jp/contests/{{contest.id}}/tasks/{{contest.id}}_{{problem.id | lower}}"
)

// DefaultProblems are the problem IDs of a regular contest.
var DefaultProblems = []string{"A", "B", "C", "D", "E", "F"}

// DefaultLanguages are generated when nothing else selects languages.
var DefaultLanguages = []string{"java", "python"}

// Config represents contestgen.json.
type Config struct {
	// Languages selects the template sets to generate.
	Languages []string `json:"languages,omitempty"`

	// Problems lists problem IDs in contest order.
	Problems []string `json:"problems,omitempty"`

	// TemplatesDir overrides built-in template sets with files on disk.
	// Each language is a subdirectory.
	TemplatesDir string `json:"templatesDir,omitempty"`

	// CacheDir holds <problem>.json metadata files.
	CacheDir string `json:"cacheDir,omitempty"`

	// ContestURL and TaskURL are placeholder templates over contest.id and
	// problem.id.
	ContestURL string `json:"contestURL,omitempty"`
	TaskURL    string `json:"taskURL,omitempty"`

	// Force overwrites existing files instead of skipping them.
	Force bool `json:"force,omitempty"`

	// MetricsFile, when set, receives render metrics in Prometheus text
	// format after each run.
	MetricsFile string `json:"metricsFile,omitempty"`

	configPath string
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Languages:  append([]string(nil), DefaultLanguages...),
		Problems:   append([]string(nil), DefaultProblems...),
		CacheDir:   DefaultCacheDir,
		ContestURL: DefaultContestURL,
		TaskURL:    DefaultTaskURL,
	}
}

// Load reads contestgen.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'contestgen init' to create one")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads contestgen.json from dir, falling back to defaults
// when the file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath sets the file Save writes to and Dir resolves against.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if len(c.Languages) == 0 {
		c.Languages = append([]string(nil), DefaultLanguages...)
	}
	if len(c.Problems) == 0 {
		c.Problems = append([]string(nil), DefaultProblems...)
	}
	for i, p := range c.Problems {
		c.Problems[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	for i, l := range c.Languages {
		c.Languages[i] = strings.ToLower(strings.TrimSpace(l))
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.ContestURL == "" {
		c.ContestURL = DefaultContestURL
	}
	if c.TaskURL == "" {
		c.TaskURL = DefaultTaskURL
	}
}

// Validate checks the configuration for values that would fail later.
func (c *Config) Validate() error {
	for _, p := range c.Problems {
		if p == "" {
			return errors.New("E122").WithDetail("problem IDs must not be empty")
		}
	}
	for _, l := range c.Languages {
		if l == "" {
			return errors.New("E122").WithDetail("languages must not be empty")
		}
	}
	for field, pattern := range map[string]string{"contestURL": c.ContestURL, "taskURL": c.TaskURL} {
		if _, err := placeholder.Parse(field, pattern); err != nil {
			return errors.New("E122").
				WithDetail(field + " is not a valid template").
				Wrap(err)
		}
	}
	return nil
}

// TemplatesPath returns TemplatesDir resolved against the config directory.
func (c *Config) TemplatesPath() string {
	if c.TemplatesDir == "" || filepath.IsAbs(c.TemplatesDir) {
		return c.TemplatesDir
	}
	return filepath.Join(c.Dir(), c.TemplatesDir)
}

// Exists reports whether contestgen.json exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory containing
// contestgen.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'contestgen init' to create one")
		}
		dir = parent
	}
}

// LoadLanguagesFile reads one language per line from path. Blank lines and
// lines starting with '#' are ignored. A missing file, or one listing no
// languages, yields nil.
func LoadLanguagesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New("E120").Wrap(err)
	}
	defer f.Close()

	var langs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		langs = append(langs, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New("E120").Wrap(err)
	}
	return langs, nil
}

// ResolveLanguages picks the languages to generate: explicit flags first,
// then the languages file, then the config, restricted to supported. When
// nothing survives, every supported language is returned.
func ResolveLanguages(flags, fromFile, fromConfig, supported []string) []string {
	allowed := make(map[string]bool, len(supported))
	for _, s := range supported {
		allowed[s] = true
	}
	filter := func(in []string) []string {
		var out []string
		seen := make(map[string]bool)
		for _, l := range in {
			l = strings.ToLower(strings.TrimSpace(l))
			if allowed[l] && !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
		return out
	}

	if len(flags) > 0 {
		return filter(flags)
	}
	if langs := filter(fromFile); len(langs) > 0 {
		return langs
	}
	if langs := filter(fromConfig); len(langs) > 0 {
		return langs
	}
	return append([]string(nil), supported...)
}
