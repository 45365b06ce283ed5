// Package prefs is the file-backed key-value preferences store. Every value
// is kept in a single JSON file and written through on each mutation, so a
// crash never loses more than the in-flight change.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Well-known preference keys.
const (
	KeyUILanguage         = "ui_language"
	KeyAudioLanguages     = "audio_languages"
	KeyTheme              = "theme"
	KeyBatterySaver       = "battery_saver"
	KeyOnboardingComplete = "onboarding_complete"
	KeyFavorites          = "favorites"
	KeyDownloads          = "downloads"
	KeyMeditationGoals    = "meditation_goal_overrides"
	KeyFocusOverrides     = "focus_overrides"
)

// Prefs provides mutex-guarded access to the preferences file. A single
// instance is shared by every component that needs it (the audio cache
// index, favorites, onboarding state).
type Prefs struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads the preferences file at path, creating parent directories as
// needed. A missing file is not an error; it is created on first write.
func Open(path string) (*Prefs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating preferences directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading preferences %s: %w", path, err)
			}
		}
	}

	return &Prefs{v: v, path: path}, nil
}

// save writes the current state back to disk. Callers must hold p.mu.
func (p *Prefs) save() error {
	if err := p.v.WriteConfigAs(p.path); err != nil {
		return fmt.Errorf("writing preferences %s: %w", p.path, err)
	}
	return nil
}

// GetString returns the string value for key, or "" when unset.
func (p *Prefs) GetString(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v.GetString(key)
}

// SetString stores a string value and persists it.
func (p *Prefs) SetString(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(key, value)
	return p.save()
}

// GetBool returns the boolean value for key, or false when unset.
func (p *Prefs) GetBool(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v.GetBool(key)
}

// SetBool stores a boolean value and persists it.
func (p *Prefs) SetBool(key string, value bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(key, value)
	return p.save()
}

// GetStringSlice returns the string-slice value for key.
func (p *Prefs) GetStringSlice(key string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v.GetStringSlice(key)
}

// SetStringSlice stores a string slice and persists it.
func (p *Prefs) SetStringSlice(key string, values []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(key, values)
	return p.save()
}

// GetStringMap returns the string-map value for key. The returned map is a
// copy; mutating it does not affect stored state.
func (p *Prefs) GetStringMap(key string) map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stringMapLocked(key)
}

func (p *Prefs) stringMapLocked(key string) map[string]string {
	stored := p.v.GetStringMapString(key)
	out := make(map[string]string, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out
}

// SetStringMapEntry sets a single entry inside the map stored at key.
func (p *Prefs) SetStringMapEntry(key, entryKey, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.stringMapLocked(key)
	m[entryKey] = value
	p.v.Set(key, m)
	return p.save()
}

// DeleteStringMapEntry removes a single entry from the map stored at key.
// Removing an absent entry is a no-op.
func (p *Prefs) DeleteStringMapEntry(key, entryKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.stringMapLocked(key)
	if _, ok := m[entryKey]; !ok {
		return nil
	}
	delete(m, entryKey)
	p.v.Set(key, m)
	return p.save()
}
