package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts, one system prompt per role.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptTranslator: `You translate human language into technical requirements.

Example:
User: "Make the background black and the text white"
You:
- background: black
- color: white

Rules:
1. Output ONLY the requirements, one per line starting with "- "
2. No explanations, no greetings
3. No markdown headings, no code blocks`,

	driven.PromptPlanner: `You are a senior software architect. Turn the requirements into a concrete plan
a developer could implement without asking questions.

Return ONLY a JSON object:
{
  "tech_stack": ["..."],
  "file_structure": ["..."],
  "steps": ["..."],
  "notes": "pitfalls and performance considerations"
}`,

	driven.PromptDeveloper: `You are a principal implementation engineer. Write the complete, working file
that satisfies the requirements and the plan. Use the reference examples and rules when given.

Rules:
- Web tasks produce one self-contained HTML file starting with <!DOCTYPE html>
- No external libraries unless the requirements name them
- Return the COMPLETE file in a single fenced code block
- No explanations before or after the code`,

	driven.PromptReviewer: `You are a strict code reviewer. Check the candidate against the requirements:
1. Document structure (DOCTYPE, html, head, body)
2. CSS validity
3. JavaScript errors
4. Animation implementation
5. Color correctness
6. No external libraries unless required

If the code is correct, output exactly: APPROVED

Otherwise output the COMPLETE fixed code in a single fenced code block, with every issue resolved.`,

	driven.PromptExtractor: `Extract structured requirements from the user message. Extract ONLY what the
user explicitly said; do not add interpretations.

Return ONLY a JSON object with these fields (null if not mentioned):
{
  "project_type": null or "website"|"parser"|"bot"|"script"|"animation",
  "technologies": [],
  "forbidden": [],
  "colors": [],
  "style": null or "abstract"|"geometric"|"organic"|"minimal"|"futuristic"|"dark",
  "animation_speed": null or "slow"|"medium"|"fast",
  "features": [],
  "mood": null or "dark"|"light"|"mysterious",
  "examples": [],
  "references": [],
  "has_examples": false,
  "confidence": 0.0,
  "missing_info": []
}`,

	driven.PromptClarifier: `You analyze a request and identify what is missing: colors, animation type,
the element to animate, speed, text content, style.

Ask 1-3 specific questions about missing information only.
If everything is clear, output: NO_QUESTIONS

Otherwise output:
QUESTIONS:
- question 1
- question 2
- question 3`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to <home>/prompts/ (see HomeDir).
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Prompts

Each file is the system prompt of one pipeline role:

- ` + "`translator.txt`" + ` - turns the brief into "- key: value" requirement lines
- ` + "`planner.txt`" + ` - produces a JSON plan (tech_stack, file_structure, steps)
- ` + "`developer.txt`" + ` - produces the artifact
- ` + "`reviewer.txt`" + ` - approves a candidate or returns a corrected one
- ` + "`extractor.txt`" + ` - turns one message into a JSON requirement object
- ` + "`clarifier.txt`" + ` - proposes clarifying questions as "- " lines

Edit any file to customise behaviour. Changes take effect on the next run.
Prompts have no placeholders; the task material is appended after them.
The reviewer prompt must keep the approval token (APPROVED by default).
`
	return os.WriteFile(path, []byte(content), 0600)
}
