package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Transfer protocols a medium can be reached with.
const (
	ProtocolLocal = "local"
	ProtocolSSH   = "ssh"
	ProtocolFTP   = "ftp"
)

// Medium describes one storage medium holding part of the archive.
type Medium struct {
	Host     string `toml:"host"`
	Protocol string `toml:"protocol"`
	User     string `toml:"user"`
	Port     int    `toml:"port"`
	// Root overrides the MERAROOT marker of the medium's manifest.
	Root string `toml:"root"`
	// KnownHosts is the SSH known_hosts file; defaults to ~/.ssh/known_hosts.
	KnownHosts string `toml:"known_hosts"`
}

// Media is the catalogue of storage media, keyed by medium name.
type Media struct {
	ManifestDir string            `toml:"manifest_dir"`
	Media       map[string]Medium `toml:"media"`
}

// LoadMedia decodes a TOML media catalogue such as
//
//	manifest_dir = "filesystems"
//
//	[media.reaext03]
//	host = "realin15"
//	protocol = "ssh"
//	user = "archive"
//
// A relative manifest_dir is taken relative to the catalogue file.
func LoadMedia(path string) (*Media, error) {
	var m Media
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("decode media catalogue %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("media catalogue %s: unknown key %q", path, undecoded[0].String())
	}

	if m.ManifestDir != "" && !filepath.IsAbs(m.ManifestDir) {
		m.ManifestDir = filepath.Join(filepath.Dir(path), m.ManifestDir)
	}
	for name, medium := range m.Media {
		if medium.Protocol == "" {
			medium.Protocol = ProtocolLocal
		}
		switch medium.Protocol {
		case ProtocolLocal:
		case ProtocolSSH, ProtocolFTP:
			if medium.Host == "" {
				return nil, fmt.Errorf("medium %q: protocol %s requires a host", name, medium.Protocol)
			}
		default:
			return nil, fmt.Errorf("medium %q: unknown protocol %q", name, medium.Protocol)
		}
		m.Media[name] = medium
	}
	return &m, nil
}

// Lookup returns a medium by name.
func (m *Media) Lookup(name string) (Medium, bool) {
	if m == nil {
		return Medium{}, false
	}
	medium, ok := m.Media[name]
	return medium, ok
}

// Names returns the medium names, sorted.
func (m *Media) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Media))
	for name := range m.Media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
