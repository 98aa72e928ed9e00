package authors

import (
	"regexp"
	"strings"
)

const thanksCommand = `\thanks`

// markerTokens splits an optional-argument marker list into individual
// markers: numbers, letters, symbol commands and starred notes.
var markerTokens = regexp.MustCompile(`\\thanks|\$[^$]+\$|\\[a-zA-Z]+|\w+|\*`)

// latexCommand is one \name[optional]{argument} invocation.
type latexCommand struct {
	optional string
	argument string
}

// Extract parses \author and \affil commands out of LaTeX content and
// assembles canonical author metadata. Affiliations are matched to authors
// through the optional-argument markers; markers containing a non
// alphanumeric character are treated as note indicators. Affiliations
// without markers apply to every author that has none of its own.
func Extract(content string) (*Metadata, bool) {
	if content == "" {
		return nil, false
	}

	authorCommands := findCommands(content, "author")
	if len(authorCommands) == 0 {
		return nil, false
	}

	type namedAuthor struct {
		name    string
		markers string
	}
	var named []namedAuthor
	for _, cmd := range authorCommands {
		for _, name := range splitAuthorNames(cmd.argument) {
			named = append(named, namedAuthor{name: name, markers: cmd.optional})
		}
	}
	if len(named) == 0 {
		return nil, false
	}

	affiliationMap := map[string][]string{}
	noteMap := map[string][]string{}
	var defaults []string

	for _, affil := range findCommands(content, "affil") {
		text := normalizeText(affil.argument)
		if text == "" {
			continue
		}
		markers := splitMarkers(affil.optional)
		if len(markers) == 0 {
			defaults = appendUnique(defaults, text)
			continue
		}
		for _, marker := range markers {
			if isNoteMarker(marker) {
				noteMap[marker] = appendUnique(noteMap[marker], text)
			} else {
				affiliationMap[marker] = appendUnique(affiliationMap[marker], text)
			}
		}
	}

	var records []record
	for _, author := range named {
		clean, thanksNotes := extractThanks(author.name)
		name := normalizeText(clean)
		if name == "" {
			continue
		}
		rec := record{name: name, notes: thanksNotes}
		for _, marker := range splitMarkers(author.markers) {
			for _, inst := range affiliationMap[marker] {
				rec.institutes = appendUnique(rec.institutes, inst)
			}
			for _, note := range noteMap[marker] {
				rec.notes = appendUnique(rec.notes, note)
			}
		}
		if len(rec.institutes) == 0 {
			rec.institutes = append(rec.institutes, defaults...)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, false
	}

	meta := canonicalize(records, nil)
	return meta, meta != nil
}

// findCommands yields every \name[optional]{argument} invocation. A bare
// \name without a following brace group (such as a longer command sharing
// the prefix) is skipped.
func findCommands(content, name string) []latexCommand {
	command := `\` + name
	var found []latexCommand

	position := 0
	for {
		index := strings.Index(content[position:], command)
		if index < 0 {
			break
		}
		cursor := position + index + len(command)

		cursor = skipWhitespace(content, cursor)
		var optional string
		if cursor < len(content) && content[cursor] == '[' {
			inner, next, ok := extractEnclosed(content, cursor, '[', ']')
			if !ok {
				break
			}
			optional = inner
			cursor = skipWhitespace(content, next)
		}

		if cursor >= len(content) || content[cursor] != '{' {
			position = cursor
			continue
		}
		argument, next, ok := extractEnclosed(content, cursor, '{', '}')
		if !ok {
			break
		}
		found = append(found, latexCommand{optional: optional, argument: argument})
		position = next
	}
	return found
}

func skipWhitespace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// extractEnclosed returns the content of the balanced delimiter pair
// starting at s[start], honoring backslash escapes.
func extractEnclosed(s string, start int, opening, closing byte) (content string, next int, ok bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		case '\\':
			i++
		}
	}
	return "", start, false
}

// splitAuthorNames splits an \author body on \and and \\ separators.
func splitAuthorNames(argument string) []string {
	var names []string
	for _, part := range strings.Split(argument, `\and`) {
		for _, segment := range strings.Split(part, `\\`) {
			if clean := strings.TrimSpace(segment); clean != "" {
				names = append(names, clean)
			}
		}
	}
	return names
}

// splitMarkers splits an optional argument listing affiliation markers.
func splitMarkers(optional string) []string {
	if optional == "" {
		return nil
	}
	cleaned := strings.NewReplacer(" ", "", "\n", "").Replace(optional)

	var markers []string
	for _, token := range markerTokens.FindAllString(cleaned, -1) {
		if token == thanksCommand {
			continue
		}
		if token = strings.TrimSpace(token); token != "" {
			markers = append(markers, token)
		}
	}
	return markers
}

// isNoteMarker reports whether a marker indicates a note rather than an
// affiliation. Purely alphanumeric markers name affiliations.
func isNoteMarker(marker string) bool {
	if marker == "" {
		return false
	}
	for _, r := range marker {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return true
		}
	}
	return false
}

// extractThanks removes \thanks{...} blocks from an author name and
// collects their normalized contents as notes.
func extractThanks(name string) (string, []string) {
	var notes []string
	var sb strings.Builder

	i := 0
	for i < len(name) {
		if strings.HasPrefix(name[i:], thanksCommand) {
			j := i + len(thanksCommand)
			if j < len(name) && name[j] == '{' {
				inner, next, ok := extractEnclosed(name, j, '{', '}')
				if ok {
					if normalized := normalizeText(inner); normalized != "" {
						notes = append(notes, normalized)
					}
					i = next
					continue
				}
			}
		}
		sb.WriteByte(name[i])
		i++
	}
	return sb.String(), notes
}

// normalizeText reduces a LaTeX text fragment to plain text: line breaks
// and ties become spaces, commands and braces are stripped, whitespace is
// collapsed.
func normalizeText(value string) string {
	if value == "" {
		return ""
	}
	text := strings.NewReplacer(`\\`, " ", "~", " ", "\n", " ").Replace(value)
	text = strings.Map(func(r rune) rune {
		if r == '\\' || r == '{' || r == '}' {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}
