// Package prompts holds the LLM prompt templates, embedded at compile time.
// Each JSON file maps a key to a template with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

//go:embed *.json
var promptFiles embed.FS

// TranslationFile holds the hadith translation prompts.
const TranslationFile = "translation.json"

// Keys in TranslationFile
const (
	KeyHadithSystem    = "hadith-system"
	KeyHadithUser      = "hadith-user"
	KeyHadithGrounding = "hadith-grounding"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Template is a prompt text with {{.Name}} placeholders.
type Template string

// Placeholders lists the distinct placeholder names in order of first use.
func (t Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(string(t), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Fill substitutes every placeholder. A placeholder without a value in data
// is an error, so a half-rendered prompt never reaches the model.
func (t Template) Fill(data map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(string(t), func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := data[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: no value for placeholder(s) %s", types.ErrValidation, strings.Join(missing, ", "))
	}
	return out, nil
}

// Set is one parsed prompt file.
type Set struct {
	name      string
	templates map[string]Template
}

var (
	loaded   = make(map[string]*Set)
	loadedMu sync.Mutex
)

// Load returns the parsed prompt file name. Files are parsed once.
func Load(name string) (*Set, error) {
	loadedMu.Lock()
	defer loadedMu.Unlock()

	if set, ok := loaded[name]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
	}
	var templates map[string]Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}

	set := &Set{name: name, templates: templates}
	loaded[name] = set
	return set, nil
}

// Template returns the template stored under key.
func (s *Set) Template(key string) (Template, error) {
	t, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("%w: prompt key %q not found in %s", types.ErrNotFound, key, s.name)
	}
	return t, nil
}

// Keys returns the template keys, sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HadithTranslation builds the system and user prompts for translating an
// Arabic hadith. A non-empty grounding (usually the Urdu translation) is
// appended to the user prompt as reference material.
func HadithTranslation(arabic, grounding string) (system, user string, err error) {
	set, err := Load(TranslationFile)
	if err != nil {
		return "", "", err
	}

	systemTmpl, err := set.Template(KeyHadithSystem)
	if err != nil {
		return "", "", err
	}
	userTmpl, err := set.Template(KeyHadithUser)
	if err != nil {
		return "", "", err
	}
	if user, err = userTmpl.Fill(map[string]string{"Arabic": arabic}); err != nil {
		return "", "", err
	}

	if grounding = strings.TrimSpace(grounding); grounding != "" {
		groundingTmpl, err := set.Template(KeyHadithGrounding)
		if err != nil {
			return "", "", err
		}
		extra, err := groundingTmpl.Fill(map[string]string{"Urdu": grounding})
		if err != nil {
			return "", "", err
		}
		user += extra
	}
	return string(systemTmpl), user, nil
}
