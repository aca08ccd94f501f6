package skills

import (
	"fmt"
	"strings"
)

// FormatForPrompt renders the given skill set as the prompt section the
// agent sees: one block per skill with its description and directory, in
// stable name order.
func FormatForPrompt(entries map[string]*Entry) string {
	var sb strings.Builder

	sb.WriteString("# Available Skills\n\n")

	if len(entries) == 0 {
		sb.WriteString("No skills are currently available.\n")
		return sb.String()
	}

	for _, name := range SortedNames(entries) {
		entry := entries[name]
		sb.WriteString(fmt.Sprintf("## %s\n", entry.Name))
		sb.WriteString(fmt.Sprintf("- **Description**: %s\n", entry.Description))
		sb.WriteString(fmt.Sprintf("- **Directory**: `%s`\n\n", entry.Directory))
	}

	return sb.String()
}
