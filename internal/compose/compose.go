// Package compose turns a network topology into a docker-compose
// document. Build is pure: it returns the document and never touches
// disk, so callers decide when the generated file is written. Equal
// networks always produce byte-identical output, which keeps
// re-application idempotent and diffs meaningful.
package compose

import (
	"bytes"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"
)

// FileName is the document's name inside a network's working directory.
const FileName = "docker-compose.yml"

// FilePath returns where the document for a network rooted at path lives.
func FilePath(networkPath string) string {
	return filepath.Join(networkPath, FileName)
}

// File is the generated compose document.
type File struct {
	Name     string             `yaml:"name"`
	Services map[string]Service `yaml:"services"`
}

// Service is one container definition. Command is a single string;
// compose splits it shell-style inside the container image.
type Service struct {
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name"`
	Hostname      string            `yaml:"hostname"`
	Command       string            `yaml:"command"`
	Environment   map[string]string `yaml:"environment,omitempty"`
	Volumes       []string          `yaml:"volumes"`
	Ports         []string          `yaml:"ports"`
	Restart       string            `yaml:"restart"`
}

// Bytes serializes the document. Map keys are emitted sorted, so the
// output is stable for a given File value.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
