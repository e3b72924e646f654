// Package docs holds the user documentation, embedded in the trade binary.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Topic is one documentation page.
type Topic struct {
	Name  string // file name without extension
	Title string // first heading of the page
}

// GetTopic returns the content of a documentation topic. "*" returns every
// topic concatenated.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		topics, err := Topics()
		if err != nil {
			return "", err
		}
		var b bytes.Buffer
		for _, t := range topics {
			content, err := GetTopic(t.Name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// Topics returns all available documentation topics sorted by name, except
// the readme which is the index.
func Topics() ([]Topic, error) {
	var topics []Topic
	err := fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if name == "readme" {
			return nil
		}
		content, err := docs.ReadFile(p)
		if err != nil {
			return err
		}
		topics = append(topics, Topic{Name: name, Title: title(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// title returns the text of the first "# " line.
func title(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if t, ok := strings.CutPrefix(scanner.Text(), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}
