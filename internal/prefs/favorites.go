package prefs

import "strings"

// Favorites returns the stored favorite content ids.
func (p *Prefs) Favorites() []string {
	return p.GetStringSlice(KeyFavorites)
}

// IsFavorite reports whether id is in the favorites list.
func (p *Prefs) IsFavorite(id string) bool {
	for _, f := range p.Favorites() {
		if f == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id from the favorites list and reports
// whether the id is a favorite afterwards.
func (p *Prefs) ToggleFavorite(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.v.GetStringSlice(KeyFavorites)
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, f := range current {
		if f == id {
			removed = true
			continue
		}
		next = append(next, f)
	}
	if !removed {
		next = append(next, id)
	}

	p.v.Set(KeyFavorites, next)
	if err := p.save(); err != nil {
		return !removed, err
	}
	return !removed, nil
}

// DownloadIndex returns the persisted audio download index (id -> path).
// Keys are always lowercase.
func (p *Prefs) DownloadIndex() map[string]string {
	return p.GetStringMap(KeyDownloads)
}

// SetDownloadPath records a downloaded audio file in the index. Ids are
// stored lowercase because viper lowercases map keys when the file is
// re-read, so a mixed-case id would otherwise stop matching after a
// restart.
func (p *Prefs) SetDownloadPath(audioID, path string) error {
	return p.SetStringMapEntry(KeyDownloads, strings.ToLower(audioID), path)
}

// RemoveDownloadPath drops an audio id from the index.
func (p *Prefs) RemoveDownloadPath(audioID string) error {
	return p.DeleteStringMapEntry(KeyDownloads, strings.ToLower(audioID))
}
