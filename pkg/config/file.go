package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/ini.v1"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// loadOptions keeps '#' and ';' inside values so comment stripping happens
// in one place (stripComment), and lower-cases keys like configparser does.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
	InsensitiveKeys:     true,
}

// File is a parsed share configuration file
type File struct {
	path     string
	sections []Section
}

// Load reads and parses the config file at path.
//
// A missing file is logged as critical and reported as ErrConfigNotFound; the
// returned File is always non-nil and usable (it simply has no sections), so
// callers can keep running and surface "not configured".
func Load(logger klog.Logger, path string) (*File, error) {
	logger = klog.LoggerWithName(logger, "config")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error(err, "CRITICAL: config file does not exist", "path", path)
			return &File{path: path}, fmt.Errorf("%w: %s", utils.ErrConfigNotFound, path)
		}
		logger.Error(err, "Failed to read config file", "path", path)
		return &File{path: path}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f, err := Parse(logger, data)
	f.path = path
	if err != nil {
		return f, err
	}

	logger.V(2).Info("Loaded config", "path", path, "sections", len(f.sections))
	return f, nil
}

// Parse parses INI content into a File with no path.
func Parse(logger klog.Logger, data []byte) (*File, error) {
	cfg, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		logger.Error(err, "Failed to parse config")
		return &File{}, fmt.Errorf("failed to parse config: %w", err)
	}

	defaults := cfg.Section(ini.DefaultSection).KeysHash()

	f := &File{}
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		values := make(map[string]string, len(defaults))
		for k, v := range defaults {
			values[k] = v
		}
		for k, v := range sec.KeysHash() {
			values[k] = v
		}

		section, unused, err := decodeSection(sec.Name(), values)
		if err != nil {
			return &File{}, err
		}

		for _, key := range unused {
			logger.Info("Ignoring unknown key", "section", section.Name, "key", key)
		}
		for _, problem := range section.problems {
			logger.Info("Invalid value in section", "section", section.Name, "problem", problem)
		}
		logger.V(4).Info("Parsed section", "section", section.Name,
			"ready", section.IsMountReady(), "missing", section.missing, "shares", len(section.Shares))

		f.sections = append(f.sections, section)
	}

	return f, nil
}

// Path returns the file the configuration was loaded from.
func (f *File) Path() string {
	return f.path
}

// SectionNames returns section names in file order.
func (f *File) SectionNames() []string {
	names := make([]string, 0, len(f.sections))
	for _, s := range f.sections {
		names = append(names, s.Name)
	}
	return names
}

// Sections returns all sections in file order.
func (f *File) Sections() []Section {
	return append([]Section(nil), f.sections...)
}

// Section returns the named section or ErrSectionNotFound.
func (f *File) Section(name string) (Section, error) {
	for _, s := range f.sections {
		if s.Name == name {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %s", utils.ErrSectionNotFound, name)
}

// HostIPs returns the distinct, non-empty host IPs of all sections in file order.
func (f *File) HostIPs() []string {
	seen := make(map[string]bool)
	var ips []string
	for _, s := range f.sections {
		if s.IP == "" || seen[s.IP] {
			continue
		}
		seen[s.IP] = true
		ips = append(ips, s.IP)
	}
	return ips
}

// AnyReady reports whether at least one section is mount-ready.
func (f *File) AnyReady() bool {
	for _, s := range f.sections {
		if s.IsMountReady() {
			return true
		}
	}
	return false
}
