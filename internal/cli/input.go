package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/editor"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// readContent reads template content from path, or stdin for "-". Both bare
// content and a stored template (with a "content" field) are accepted.
func readContent(path string) (template.Content, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return template.Content{}, fmt.Errorf("read %s: %w", path, err)
	}
	return parseContentFile(data)
}

func parseContentFile(data []byte) (template.Content, error) {
	var wrapped struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Content) > 0 {
		data = wrapped.Content
	}
	return template.ParseContent(data)
}

// openSession loads content from the file named in args, or from the editor
// snapshot when args is empty, into a validated editing session.
func (c *CLI) openSession(ctx context.Context, args []string) (*editor.Session, string, error) {
	var (
		content template.Content
		source  string
		err     error
	)
	if len(args) > 0 {
		source = args[0]
		content, err = readContent(source)
	} else {
		source = "snapshot"
		content, err = c.loadSnapshot(ctx)
	}
	if err != nil {
		return nil, "", err
	}

	s := editor.NewEmpty(editor.Options{Logger: loggerFromContext(ctx)})
	if err := s.Load(content); err != nil {
		return nil, "", fmt.Errorf("%s: %w", source, err)
	}
	return s, source, nil
}

func (c *CLI) loadSnapshot(ctx context.Context) (template.Content, error) {
	st, err := c.newSnapshotStore()
	if err != nil {
		return template.Content{}, err
	}
	defer st.Close()
	return st.Load(ctx)
}

// writeOutput writes data to path, or to the command output when path is
// empty or "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// friendly turns coded errors into their user-facing message.
func friendly(err error) error {
	if errors.GetCode(err) == "" {
		return err
	}
	return fmt.Errorf("%s", errors.UserMessage(err))
}
