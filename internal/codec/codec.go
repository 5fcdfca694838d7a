// Package codec reads and writes brain map documents.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"brainmap/internal/model"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = 1

// Document is a self-contained brain map with its nodes and connections.
type Document struct {
	Version     int                `json:"version" yaml:"version"`
	Map         model.BrainMap     `json:"map" yaml:"map"`
	Nodes       []model.Node       `json:"nodes" yaml:"nodes"`
	Connections []model.Connection `json:"connections" yaml:"connections"`
}

// NewDocument bundles a brain map for export.
func NewDocument(m model.BrainMap, nodes []model.Node, conns []model.Connection) *Document {
	if nodes == nil {
		nodes = []model.Node{}
	}
	if conns == nil {
		conns = []model.Connection{}
	}
	return &Document{Version: DocumentVersion, Map: m, Nodes: nodes, Connections: conns}
}

// Importer parses documents in one format.
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter writes documents in one format.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// Codec both reads and writes one format.
type Codec interface {
	Importer
	Exporter
}

// ForPath picks a codec from the file extension.
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONCodec(), nil
	case ".yaml", ".yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", filepath.Ext(path))
	}
}

func validate(doc *Document) error {
	if doc.Version > DocumentVersion {
		return fmt.Errorf("document version %d is newer than supported version %d", doc.Version, DocumentVersion)
	}
	if strings.TrimSpace(doc.Map.Title) == "" {
		return fmt.Errorf("document has no map title")
	}
	seen := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			continue
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}
