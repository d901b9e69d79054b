package forms

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// TableFormat identifies how a translation table is stored.
type TableFormat string

const (
	FormatCSV  TableFormat = "csv"
	FormatJSON TableFormat = "json"
	FormatYAML TableFormat = "yaml"
)

// FormatFor maps a file name onto its table format. The second result is
// false for files that are not translation tables.
func FormatFor(name string) (TableFormat, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// ParseTable decodes a flat key to value table.
func ParseTable(format TableFormat, data []byte) (Table, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatJSON:
		table := Table{}
		if len(bytes.TrimSpace(data)) == 0 {
			return table, nil
		}
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, err
		}
		return table, nil
	case FormatYAML:
		table := Table{}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, err
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}
}

func parseCSV(data []byte) (Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 2
	table := Table{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		if err != nil {
			return nil, err
		}
		table[record[0]] = record[1]
	}
}

// EncodeTable writes rows in the given order. Keys missing from table are skipped.
func EncodeTable(format TableFormat, table Table, order []string) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		for _, key := range order {
			value, ok := table[key]
			if !ok {
				continue
			}
			if err := writer.Write([]string{key, value}); err != nil {
				return nil, err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]string(table)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range order {
			value, ok := table[key]
			if !ok {
				continue
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
			)
		}
		return yaml.Marshal(node)
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}
}
