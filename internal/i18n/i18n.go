// Package i18n serves the dashboard's UI strings from YAML locale files
// embedded in the binary.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var defaultLocalesFS embed.FS

// ErrUnknownLanguage is returned for a language without a locale file.
var ErrUnknownLanguage = errors.New("unknown language")

// Translator resolves dotted message keys ("detail.not_rated") to localized
// strings. It is read-only after construction.
type Translator struct {
	translations map[string]map[string]string // lang -> key -> value
	defaultLang  string
}

// NewTranslator loads the embedded locales.
func NewTranslator(defaultLang string) (*Translator, error) {
	subFS, err := fs.Sub(defaultLocalesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded locales: %w", err)
	}
	return NewTranslatorFromFS(subFS, defaultLang)
}

// NewTranslatorFromFS loads every *.yaml / *.yml file at the root of
// localesFS; the file name without extension is the language code.
// defaultLang must be one of the loaded languages.
func NewTranslatorFromFS(localesFS fs.FS, defaultLang string) (*Translator, error) {
	entries, err := fs.ReadDir(localesFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales directory: %w", err)
	}

	t := &Translator{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ext)

		messages, err := loadLocale(localesFS, entry.Name())
		if err != nil {
			return nil, err
		}
		t.translations[lang] = messages
	}

	if !t.Has(defaultLang) {
		return nil, fmt.Errorf("default language %q: %w (available: %s)",
			defaultLang, ErrUnknownLanguage, strings.Join(t.Languages(), ", "))
	}
	return t, nil
}

func loadLocale(localesFS fs.FS, name string) (map[string]string, error) {
	content, err := fs.ReadFile(localesFS, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", name, err)
	}

	// Locale files are nested by page; keys are flattened to "page.key".
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse locale file %s: %w", name, err)
	}

	messages := make(map[string]string)
	flatten("", data, messages)
	return messages, nil
}

func flatten(prefix string, src map[string]interface{}, dest map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]interface{}:
			flatten(key, child, dest)
		case string:
			dest[key] = child
		default:
			dest[key] = fmt.Sprintf("%v", v)
		}
	}
}

// Get returns the message for key in lang, falling back to the default
// language and then to the key itself. args are applied with fmt.Sprintf.
func (t *Translator) Get(lang, key string, args ...interface{}) string {
	msg, ok := t.translations[lang][key]
	if !ok {
		msg, ok = t.translations[t.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Default returns the fallback language.
func (t *Translator) Default() string {
	return t.defaultLang
}

// Has reports whether lang has a locale file.
func (t *Translator) Has(lang string) bool {
	_, ok := t.translations[lang]
	return ok
}

// Languages lists the loaded languages in sorted order.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.translations))
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Localizer binds a Translator to one language.
type Localizer func(key string, args ...interface{}) string

// For returns a Localizer for lang.
func (t *Translator) For(lang string) Localizer {
	return func(key string, args ...interface{}) string {
		return t.Get(lang, key, args...)
	}
}
