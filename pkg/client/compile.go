package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

const previewPath = "api/templates/preview"

// Compiler is the document compilation service API.
type Compiler struct {
	c *Client
}

// CompileRequest is the body of a compile request.
type CompileRequest struct {
	TypstCode string            `json:"typstCode"`
	Variables map[string]string `json:"variables"`
}

// Compile sends markup and the variable map to the compile service and
// returns the rendered document.
func (p *Compiler) Compile(ctx context.Context, markup string, vars map[string]string) ([]byte, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	data, err := p.c.do(ctx, http.MethodPost, previewPath, CompileRequest{TypstCode: markup, Variables: vars}, compileFailed, "error")
	if err != nil {
		// Client errors from the compile endpoint describe the markup.
		if errors.Is(err, errors.ErrCodeInvalidInput) || errors.Is(err, errors.ErrCodeServiceFailure) {
			return nil, errors.Wrap(errors.ErrCodeCompileFailed, err, "%s", errors.UserMessage(err))
		}
		return nil, err
	}
	return data, nil
}

func compileFailed(code int) string {
	return fmt.Sprintf("Compilation failed: %d %s", code, http.StatusText(code))
}
