package skills

import (
	"encoding/json"
	"regexp"
	"strings"
)

// metadataField is the declaration key whose value holds the JSON-encoded
// capability payload.
const metadataField = "metadata"

// declarationPattern matches one "key: value" line inside the declaration
// block.
var declarationPattern = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_-]*)\s*:\s*(.*)$`)

var installKinds = map[string]bool{
	"brew": true,
	"node": true,
	"go":   true,
	"uv":   true,
}

// ParseDeclaration extracts the frontmatter declaration block from raw skill
// source text: a block opened by a line of exactly "---" at the start of the
// text and closed by the next line beginning with "---". Lines inside are
// "key: value" pairs; a single layer of surrounding quotes is stripped from
// values. A malformed or absent block yields an empty map, never an error.
func ParseDeclaration(src string) map[string]string {
	decl := make(map[string]string)

	normalized := strings.ReplaceAll(src, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return decl
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "---") {
			end = i
			break
		}
	}
	if end == -1 {
		return decl
	}

	for _, line := range lines[1:end] {
		match := declarationPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		decl[match[1]] = unquote(strings.TrimSpace(match[2]))
	}

	return decl
}

// unquote strips a single layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// DecodeCapability decodes the capability metadata embedded in a declaration
// mapping. An absent field, a non-object payload, or a JSON syntax error all
// yield nil: malformed metadata degrades the skill to "no capability
// metadata" rather than failing resolution. Fields of the wrong JSON type
// are treated as absent and unrecognized fields are ignored.
func DecodeCapability(decl map[string]string) *Capability {
	payload, ok := decl[metadataField]
	if !ok || payload == "" {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil || raw == nil {
		return nil
	}

	cap := &Capability{
		Always:     boolField(raw, "always"),
		SkillKey:   stringField(raw, "skillKey"),
		PrimaryEnv: stringField(raw, "primaryEnv"),
	}

	if requires, ok := raw["requires"].(map[string]any); ok {
		cap.Requires = Requirements{
			Bins:   stringList(requires, "bins"),
			Env:    stringList(requires, "env"),
			Config: stringList(requires, "config"),
		}
	}

	if install, ok := raw["install"].([]any); ok {
		for _, item := range install {
			if spec, ok := decodeInstallSpec(item); ok {
				cap.Install = append(cap.Install, spec)
			}
		}
	}

	return cap
}

// decodeInstallSpec validates one install entry. Entries without a
// recognized kind are dropped silently.
func decodeInstallSpec(item any) (InstallSpec, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return InstallSpec{}, false
	}

	kind := stringField(obj, "kind")
	if kind == "" {
		kind = stringField(obj, "type")
	}
	if !installKinds[kind] {
		return InstallSpec{}, false
	}

	return InstallSpec{
		ID:      stringField(obj, "id"),
		Kind:    kind,
		Label:   stringField(obj, "label"),
		Bins:    stringList(obj, "bins"),
		Formula: stringField(obj, "formula"),
		Package: stringField(obj, "package"),
		Module:  stringField(obj, "module"),
	}, true
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

func stringList(obj map[string]any, key string) []string {
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
