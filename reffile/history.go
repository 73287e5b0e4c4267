package reffile

import "time"

// Software identifies the tool that produced a file.
type Software struct {
	Name     string `yaml:"name"`
	Author   string `yaml:"author"`
	Homepage string `yaml:"homepage"`
	Version  string `yaml:"version"`
}

// HistoryEntry is one provenance record.
type HistoryEntry struct {
	Description string    `yaml:"description"`
	Time        time.Time `yaml:"time"`
	Software    Software  `yaml:"software"`
}

// NewHistoryEntry stamps description with t in UTC.
func NewHistoryEntry(description string, t time.Time, sw Software) HistoryEntry {
	return HistoryEntry{
		Description: description,
		Time:        t.UTC(),
		Software:    sw,
	}
}
