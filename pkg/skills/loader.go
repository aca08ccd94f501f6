package skills

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/skillrig/skillrig/pkg/logger"
)

const skillFileName = "SKILL.md"

// LoadDir loads all skill records found directly under dir, tagging each
// with source. A missing or unreadable directory yields an empty result;
// individual skills that fail to load are skipped so one bad skill never
// hides its siblings.
func LoadDir(ctx context.Context, dir, source string) []Record {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var records []Record
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// os.Stat follows symlinked skill directories.
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, skillFileName)
		record, err := loadRecord(skillPath)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", skillPath).Debug("Skipping unloadable skill")
			continue
		}

		record.Directory = entryPath
		record.Path = skillPath
		record.Source = source
		records = append(records, record)
	}

	return records
}

// loadRecord reads a single SKILL.md file and extracts its frontmatter
// identity.
func loadRecord(path string) (Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Record{}, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return Record{}, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return Record{}, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return Record{}, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return Record{}, errors.New("skill description is required in frontmatter")
	}

	return Record{Name: name, Description: description}, nil
}
