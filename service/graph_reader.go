package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/dexstruct/domain"
)

// DocumentFormat is the serialization of a graph document
type DocumentFormat string

const (
	DocumentJSON    DocumentFormat = "json"
	DocumentYAML    DocumentFormat = "yaml"
	DocumentMsgpack DocumentFormat = "msgpack"
)

// DocumentFormatOf picks the serialization from a file extension
func DocumentFormatOf(path string) (DocumentFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DocumentJSON, true
	case ".yaml", ".yml":
		return DocumentYAML, true
	case ".msgpack", ".mpk":
		return DocumentMsgpack, true
	default:
		return "", false
	}
}

// GraphReaderImpl implements the GraphReader interface
type GraphReaderImpl struct{}

// NewGraphReader creates a new graph document reader
func NewGraphReader() *GraphReaderImpl {
	return &GraphReaderImpl{}
}

// CollectGraphFiles finds graph documents in the given paths. Files named
// explicitly are kept when their extension is known; directories are walked
// and filtered by the include and exclude globs.
func (r *GraphReaderImpl) CollectGraphFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if r.IsGraphFile(path) && !r.isExcluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		dirFiles, err := r.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}

	return files, nil
}

func (r *GraphReaderImpl) collectFromDirectory(root string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !recursive || strings.HasPrefix(d.Name(), ".") || r.isExcluded(rel, excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !r.IsGraphFile(path) {
			return nil
		}
		if r.isExcluded(rel, excludePatterns) || !r.isIncluded(rel, includePatterns) {
			return nil
		}
		files = append(files, path)
		return nil
	}

	if err := filepath.WalkDir(root, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return files, nil
}

func (r *GraphReaderImpl) isIncluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if r.matchesPattern(pattern, path) {
			return true
		}
	}
	return false
}

func (r *GraphReaderImpl) isExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if r.matchesPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchesPattern matches a glob against the slash path, each of its
// trailing sub-paths and its base name.
func (r *GraphReaderImpl) matchesPattern(pattern, path string) bool {
	p := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
		i := strings.IndexByte(p, '/')
		if i < 0 {
			break
		}
		p = p[i+1:]
	}
	return false
}

// ReadDocument decodes the graph document at path
func (r *GraphReaderImpl) ReadDocument(path string) (*domain.GraphDocument, error) {
	format, ok := DocumentFormatOf(path)
	if !ok {
		return nil, domain.NewUnsupportedFormatError(filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	return doc, nil
}

// DecodeDocument decodes a graph document from raw bytes
func DecodeDocument(data []byte, format DocumentFormat) (*domain.GraphDocument, error) {
	var doc domain.GraphDocument
	var err error

	switch format {
	case DocumentJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case DocumentYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	case DocumentMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeDocument serializes a graph document
func EncodeDocument(doc *domain.GraphDocument, format DocumentFormat) ([]byte, error) {
	switch format {
	case DocumentJSON:
		return json.MarshalIndent(doc, "", "  ")
	case DocumentYAML:
		return yaml.Marshal(doc)
	case DocumentMsgpack:
		return msgpack.Marshal(doc)
	default:
		return nil, domain.NewUnsupportedFormatError(string(format))
	}
}

// IsGraphFile checks if a file has a graph document extension
func (r *GraphReaderImpl) IsGraphFile(path string) bool {
	_, ok := DocumentFormatOf(path)
	return ok
}

// FileExists checks if a regular file exists
func (r *GraphReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
