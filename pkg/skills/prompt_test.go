package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForPrompt(t *testing.T) {
	entries := map[string]*Entry{
		"weather": {Record: Record{
			Name:        "weather",
			Description: "Fetches forecasts",
			Directory:   "/skills/weather",
		}},
		"video-edit": {Record: Record{
			Name:        "video-edit",
			Description: "Edits video files",
			Directory:   "/skills/video-edit",
		}},
	}

	out := FormatForPrompt(entries)

	assert.Contains(t, out, "# Available Skills")
	assert.Contains(t, out, "## weather\n- **Description**: Fetches forecasts\n- **Directory**: `/skills/weather`")
	assert.Contains(t, out, "## video-edit")
	assert.Less(t, // stable name order
		strings.Index(out, "## video-edit"), strings.Index(out, "## weather"))
}

func TestFormatForPrompt_Empty(t *testing.T) {
	out := FormatForPrompt(nil)
	assert.Contains(t, out, "No skills are currently available.")
}
