// Package authors builds pandoc author metadata. It extracts author and
// affiliation data from LaTeX sources and normalizes user-supplied author
// descriptions, producing the canonical author/institute lists pandoc
// expects in a metadata file.
package authors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zxkjack123/latex2word/internal/types"
)

// Author is one entry of the author metadata list.
type Author struct {
	Name      string   `yaml:"name" json:"name"`
	Institute []string `yaml:"institute,omitempty" json:"institute,omitempty"`
	Note      string   `yaml:"note,omitempty" json:"note,omitempty"`
}

// Institute is one entry of the institute metadata list, referenced from
// Author.Institute by ID.
type Institute struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Metadata is the canonical author block written to the pandoc metadata
// file.
type Metadata struct {
	Authors    []Author    `yaml:"author" json:"author"`
	Institutes []Institute `yaml:"institute" json:"institute"`
}

// record is the intermediate form shared by the LaTeX extractor and the
// user-supplied entry parsers. Institutes are affiliation names, resolved
// to stable IDs during canonicalization.
type record struct {
	name       string
	institutes []string
	notes      []string
}

// Collect combines a JSON metadata file and inline author entries into
// canonical metadata. The file is applied first, then the inline entries
// in order. A nil result with a nil error means no metadata was supplied.
func Collect(entries []string, metadataFile string) (*Metadata, error) {
	var records []record
	var seed []Institute

	if metadataFile != "" {
		data, err := os.ReadFile(metadataFile)
		if err != nil {
			return nil, types.NewAppError(types.ErrInvalidInput, "failed to read author metadata file", err)
		}
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, types.NewAppError(types.ErrInvalidInput, "author metadata file must contain valid JSON", err)
		}
		fileRecords, fileSeed := recordsFromValue(payload)
		records = append(records, fileRecords...)
		seed = append(seed, fileSeed...)
	}

	for _, entry := range entries {
		records = append(records, parseEntry(entry)...)
	}

	if len(records) == 0 {
		return nil, nil
	}
	return canonicalize(records, seed), nil
}

// parseEntry interprets one author flag value: a JSON object, array or
// string, semicolon-delimited key=value pairs, or a plain name.
func parseEntry(raw string) []record {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		records, _ := recordsFromValue(payload)
		return records
	}

	if mapping := parseKVEntry(cleaned); mapping != nil {
		if rec, ok := recordFromMap(mapping); ok {
			return []record{rec}
		}
		return nil
	}

	return []record{{name: cleaned}}
}

// parseKVEntry parses "key=value;key=value" pairs. Returns nil when no
// pair is present.
func parseKVEntry(entry string) map[string]any {
	mapping := map[string]any{}
	for _, part := range strings.Split(entry, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		mapping[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(mapping) == 0 {
		return nil
	}
	return mapping
}

// recordsFromValue converts decoded JSON into author records plus any
// pre-declared institutes. A top-level object with "author" or
// "institute" keys is treated as a full metadata document.
func recordsFromValue(value any) ([]record, []Institute) {
	if mapping, ok := value.(map[string]any); ok {
		_, hasAuthor := mapping["author"]
		_, hasInstitute := mapping["institute"]
		if hasAuthor || hasInstitute {
			var records []record
			for _, item := range asList(mapping["author"]) {
				if rec, ok := recordFromItem(item); ok {
					records = append(records, rec)
				}
			}
			var seed []Institute
			for _, item := range asList(mapping["institute"]) {
				if inst, ok := instituteFromItem(item); ok {
					seed = append(seed, inst)
				}
			}
			return records, seed
		}
	}

	var records []record
	for _, item := range asList(value) {
		if rec, ok := recordFromItem(item); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func asList(value any) []any {
	if value == nil {
		return nil
	}
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}

func recordFromItem(item any) (record, bool) {
	switch v := item.(type) {
	case nil:
		return record{}, false
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return record{}, false
		}
		return record{name: name}, true
	case map[string]any:
		return recordFromMap(v)
	default:
		name := strings.TrimSpace(fmt.Sprint(v))
		if name == "" {
			return record{}, false
		}
		return record{name: name}, true
	}
}

func recordFromMap(mapping map[string]any) (record, bool) {
	working := make(map[string]any, len(mapping))
	for key, value := range mapping {
		working[key] = value
	}

	var name string
	if candidate, ok := working["name"]; ok {
		name = strings.TrimSpace(fmt.Sprint(candidate))
		delete(working, "name")
	} else if len(working) == 1 {
		// Single-key shorthand: {"Alice": "University X"}.
		var key string
		var value any
		for k, v := range working {
			key, value = k, v
		}
		name = strings.TrimSpace(key)
		delete(working, key)
		if nested, ok := value.(map[string]any); ok {
			working = nested
		} else if value != nil {
			working["affiliation"] = value
		}
	}
	if name == "" {
		return record{}, false
	}

	rec := record{name: name}
	for _, key := range []string{"institute", "affiliation", "affiliations"} {
		if value, ok := working[key]; ok {
			rec.institutes = append(rec.institutes, flattenInstitutes(value)...)
			delete(working, key)
		}
	}
	if value, ok := working["note"]; ok {
		if note := stringifyNote(value); note != "" {
			rec.notes = append(rec.notes, note)
		}
	}
	return rec, true
}

func instituteFromItem(item any) (Institute, bool) {
	switch v := item.(type) {
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return Institute{}, false
		}
		return Institute{Name: name}, true
	case map[string]any:
		inst := Institute{}
		if id, ok := v["id"]; ok {
			inst.ID = strings.TrimSpace(fmt.Sprint(id))
		}
		if name, ok := v["name"]; ok {
			inst.Name = strings.TrimSpace(fmt.Sprint(name))
		}
		if inst.ID == "" && inst.Name == "" && len(v) == 1 {
			// Single-key shorthand: {"uni-x": "University X"}.
			for key, value := range v {
				inst.ID = strings.TrimSpace(key)
				inst.Name = strings.TrimSpace(fmt.Sprint(value))
			}
		}
		if inst.Name == "" {
			inst.Name = inst.ID
		}
		if inst.Name == "" {
			return Institute{}, false
		}
		return inst, true
	default:
		return Institute{}, false
	}
}

// flattenInstitutes turns a string (optionally semicolon-delimited) or a
// nested list into a flat list of affiliation names.
func flattenInstitutes(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		var parts []string
		for _, part := range strings.Split(v, ";") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		return parts
	case []any:
		var flattened []string
		for _, item := range v {
			flattened = append(flattened, flattenInstitutes(item)...)
		}
		return flattened
	default:
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			return nil
		}
		return []string{text}
	}
}

func stringifyNote(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		var parts []string
		for _, item := range v {
			if segment := stringifyNote(item); segment != "" {
				parts = append(parts, segment)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// canonicalize resolves affiliation names to stable IDs and assembles the
// final metadata. Seed institutes keep their declared IDs; extracted
// affiliations get sequential affiliation-N IDs, deduplicated by name.
func canonicalize(records []record, seed []Institute) *Metadata {
	institutes := []Institute{}
	byName := map[string]string{}
	usedIDs := map[string]bool{}

	registerSeed := func(inst Institute) {
		if inst.ID == "" {
			inst.ID = fmt.Sprintf("affiliation-%d", len(institutes)+1)
		}
		if usedIDs[inst.ID] {
			return
		}
		usedIDs[inst.ID] = true
		institutes = append(institutes, inst)
		if _, ok := byName[inst.Name]; !ok {
			byName[inst.Name] = inst.ID
		}
	}
	for _, inst := range seed {
		registerSeed(inst)
	}

	register := func(name string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return ""
		}
		if id, ok := byName[name]; ok {
			return id
		}
		if usedIDs[name] {
			// A seed declared this ID explicitly.
			return name
		}
		id := fmt.Sprintf("affiliation-%d", len(institutes)+1)
		for usedIDs[id] {
			id = id + "x"
		}
		usedIDs[id] = true
		byName[name] = id
		institutes = append(institutes, Institute{ID: id, Name: name})
		return id
	}

	var out []Author
	for _, rec := range records {
		if rec.name == "" {
			continue
		}
		author := Author{Name: rec.name}
		for _, inst := range rec.institutes {
			id := register(inst)
			if id != "" && !containsString(author.Institute, id) {
				author.Institute = append(author.Institute, id)
			}
		}
		if len(rec.notes) > 0 {
			author.Note = strings.Join(rec.notes, "; ")
		}
		out = append(out, author)
	}
	if len(out) == 0 {
		return nil
	}
	return &Metadata{Authors: out, Institutes: institutes}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	if containsString(list, value) {
		return list
	}
	return append(list, value)
}
