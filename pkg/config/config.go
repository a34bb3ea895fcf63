// Package config reads the repository's local configuration file, laid out
// the same section/key way git's own config format is: "[user]\n\tname =
// ...". It never writes global or system scopes, only the repository-local
// file under the control directory.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// Entry is a single resolved "section.key" config value.
type Entry struct {
	Key   string
	Value string
}

// Manager reads and writes the repository-local config file.
type Manager struct {
	path    scpath.AbsolutePath
	values  map[string]string
	loaded  bool
}

// NewManager creates a Manager for the config file under workingDir's
// control directory.
func NewManager(workingDir scpath.AbsolutePath) *Manager {
	path := workingDir.Join(scpath.SourceDir, "config")
	return &Manager{path: path, values: make(map[string]string)}
}

func (m *Manager) ensureLoaded() {
	if m.loaded {
		return
	}
	m.loaded = true

	f, err := os.Open(m.path.String())
	if err != nil {
		return // absent config file just means no values are set
	}
	defer f.Close()

	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if section != "" {
			key = section + "." + key
		}
		m.values[key] = value
	}
}

// Get looks up a "section.key" value, returning nil if unset.
func (m *Manager) Get(key string) *Entry {
	m.ensureLoaded()
	value, ok := m.values[key]
	if !ok {
		return nil
	}
	return &Entry{Key: key, Value: value}
}

// Set writes a "section.key" value and persists the config file immediately.
func (m *Manager) Set(key, value string) error {
	m.ensureLoaded()
	m.values[key] = value
	return m.save()
}

func (m *Manager) save() error {
	sections := make(map[string]map[string]string)
	var order []string

	for key, value := range m.values {
		section, sub := splitKey(key)
		if _, ok := sections[section]; !ok {
			sections[section] = make(map[string]string)
			order = append(order, section)
		}
		sections[section][sub] = value
	}

	var buf strings.Builder
	for _, section := range order {
		fmt.Fprintf(&buf, "[%s]\n", section)
		for sub, value := range sections[section] {
			fmt.Fprintf(&buf, "\t%s = %s\n", sub, value)
		}
	}

	if err := os.MkdirAll(parentDir(m.path.String()), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(m.path.String(), []byte(buf.String()), 0644)
}

func splitKey(key string) (section, sub string) {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
