// Package extract turns source documents into raw UTF-8 text. Extraction is
// a boundary around external formats and services; everything downstream
// works on plain text.
package extract

import (
	"context"
	"fmt"
	"strings"
)

// Extractor produces the raw text of one source document, identified by a
// file path or URL. Failures mean the source is unreadable: an I/O error, a
// malformed document, or an HTTP error.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// Dispatcher routes a source identifier to the extractor for its kind:
// http(s) URLs go to Web, everything else is treated as a PDF file path.
type Dispatcher struct {
	Web Extractor
	PDF Extractor
}

func (d *Dispatcher) Extract(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if d.Web == nil {
			return "", fmt.Errorf("extract: no web extractor configured for %s", source)
		}
		return d.Web.Extract(ctx, source)
	}
	if d.PDF == nil {
		return "", fmt.Errorf("extract: no pdf extractor configured for %s", source)
	}
	return d.PDF.Extract(ctx, source)
}
