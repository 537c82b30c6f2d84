package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/config/file"
	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/logger"
)

// Index file names, in lookup order.
var indexFiles = []string{"index.json", "index.yaml", "index.yml"}

// Ensure Corpus implements the interfaces.
var (
	_ driven.KnowledgeCorpus = (*Corpus)(nil)
	_ driven.CorpusWatcher   = (*Corpus)(nil)
)

// Corpus is a directory-backed knowledge corpus.
type Corpus struct {
	dir string
}

// NewCorpus creates a corpus rooted at dir.
// If dir is empty, defaults to <home>/knowledge.
func NewCorpus(dir string) (*Corpus, error) {
	if dir == "" {
		home, err := file.HomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, "knowledge")
	}
	return &Corpus{dir: dir}, nil
}

// Dir returns the corpus directory.
func (c *Corpus) Dir() string {
	return c.dir
}

// Load reads the index and every referenced example file. A missing index
// yields an empty corpus.
func (c *Corpus) Load(ctx context.Context) (*domain.KnowledgeIndex, error) {
	index, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	examples := make([]domain.KnowledgeItem, 0, len(index.Examples))
	for _, item := range index.Examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item.Path == "" {
			continue
		}

		content, err := os.ReadFile(c.resolve(item.Path))
		if err != nil {
			logger.Debug("knowledge: skipping %s: %v", item.Path, err)
			continue
		}
		item.Content = string(content)
		if item.ID == "" {
			item.ID = ItemID(item.Path)
		}
		examples = append(examples, item)
	}
	index.Examples = examples

	rules := index.Rules[:0]
	for _, rule := range index.Rules {
		if strings.TrimSpace(rule.Content) != "" {
			rules = append(rules, rule)
		}
	}
	index.Rules = rules

	return index, nil
}

// ItemID derives a stable identifier from an example path.
func ItemID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.ToSlash(path))).String()
}

func (c *Corpus) readIndex() (*domain.KnowledgeIndex, error) {
	for _, name := range indexFiles {
		path := filepath.Join(c.dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var index domain.KnowledgeIndex
		if strings.HasSuffix(name, ".json") {
			err = json.Unmarshal(data, &index)
		} else {
			err = yaml.Unmarshal(data, &index)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, name, err)
		}
		return &index, nil
	}

	logger.Debug("knowledge: no index in %s", c.dir)
	return &domain.KnowledgeIndex{}, nil
}

// resolve maps an index path to a file inside the corpus directory.
func (c *Corpus) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, filepath.FromSlash(path))
}
