package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/mifan-labs/mifan/internal/prompt"
)

// Files are the descriptor names looked up in a template root, in order.
var Files = []string{"meta.yaml", "meta.yml", "meta.json"}

// Find returns the descriptor path inside dir, or "" when there is none.
func Find(dir string) (string, error) {
	for _, name := range Files {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
	}
	return "", nil
}

// Load finds, validates and parses the descriptor in dir. A template
// without a descriptor yields an empty one.
func Load(dir string) (*Descriptor, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Descriptor{}, nil
	}
	return ParseFile(path)
}

// ParseFile validates and parses a single descriptor file.
func ParseFile(path string) (*Descriptor, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	d.Path = path
	return d, nil
}

// Parse validates data against the descriptor schema and decodes it. The
// format is chosen from name's extension: .json is JSON, anything else YAML.
func Parse(data []byte, name string) (*Descriptor, error) {
	node, err := decodeNode(data, name)
	if err != nil {
		return nil, err
	}

	var raw any
	if node != nil {
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing descriptor %s: %w", name, err)
		}
	}
	result, err := validateValue(raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Path: name, Issues: result.Issues}
	}

	d := &Descriptor{}
	if node != nil {
		if err := node.Decode(d); err != nil {
			return nil, fmt.Errorf("parsing descriptor %s: %w", name, err)
		}
	}
	for _, e := range d.Prompts.Entries() {
		p := e.Value
		if p == nil {
			p = &Prompt{}
			d.Prompts.Set(e.Key, p)
		}
		if p.Type == "" {
			p.Type = prompt.TypeInput
		}
	}

	if err := d.Check(); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", name, err)
	}
	return d, nil
}

// decodeNode parses data into a document node. Empty input yields nil.
func decodeNode(data []byte, name string) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if filepath.Ext(name) == ".json" {
		node, err := jsonNode(json.NewDecoder(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing descriptor %s: %w", name, err)
		}
		return node, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", name, err)
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// jsonNode converts a JSON stream into a yaml node tree so both formats
// decode through the same ordered unmarshalers.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	dec.UseNumber()
	node, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return node, nil
}

func readJSONValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				value, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				value, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case json.Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
