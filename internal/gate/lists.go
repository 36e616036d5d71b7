package gate

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/summarizer-api/internal/config"
	"gopkg.in/yaml.v3"
)

//go:embed default_lists.yaml
var defaultListsYAML []byte

// ErrInvalidLists indicates a keyword list file that cannot be used.
var ErrInvalidLists = errors.New("invalid keyword lists")

// Lists holds the keyword lists the gate matches against.
type Lists struct {
	// Filters maps a filter name (inappropriate, spam, ...) to its keywords.
	Filters map[string][]string `yaml:"filters"`

	// Categories are scored in order; earlier entries win ties.
	Categories []Category `yaml:"categories"`
}

// Category is a named topic and the words that signal it.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultLists returns the built-in keyword lists.
func DefaultLists() Lists {
	lists, err := ParseLists(defaultListsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword lists are invalid: %v", err))
	}
	return lists
}

// LoadLists reads keyword lists from a YAML file.
func LoadLists(path string) (Lists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lists{}, fmt.Errorf("failed to read keyword lists %s: %w", path, err)
	}
	return ParseLists(data)
}

// ParseLists decodes keyword lists from YAML.
func ParseLists(data []byte) (Lists, error) {
	var lists Lists
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return Lists{}, fmt.Errorf("%w: %v", ErrInvalidLists, err)
	}
	if lists.Filters == nil {
		lists.Filters = map[string][]string{}
	}
	for _, c := range lists.Categories {
		if c.Name == "" {
			return Lists{}, fmt.Errorf("%w: category without a name", ErrInvalidLists)
		}
	}
	return lists, nil
}

// NewFromConfig builds a Gate from application config, loading keyword
// lists from cfg.ListsPath when set and the built-in lists otherwise.
func NewFromConfig(cfg config.GateConfig, logger *slog.Logger) (*Gate, error) {
	lists := DefaultLists()
	if cfg.ListsPath != "" {
		var err error
		if lists, err = LoadLists(cfg.ListsPath); err != nil {
			return nil, fmt.Errorf("failed to load keyword lists: %w", err)
		}
	}

	g, err := New(Config{
		Lists:         lists,
		Threshold:     cfg.InappropriateThreshold,
		StrictDefault: cfg.StrictDefault,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create content gate: %w", err)
	}
	return g, nil
}
