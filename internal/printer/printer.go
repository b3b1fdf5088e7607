package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pipe01/xmltok/internal/workspace"
	"github.com/vmihailenco/msgpack/v5"
)

type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

var Formats = []string{string(FormatText), string(FormatJSON), string(FormatMsgpack)}

type Options struct {
	Format Format

	// Only used by FormatText
	Color bool
	Width int
}

// Print writes every token of doc to w.
func Print(w io.Writer, doc *workspace.Document, opts Options) error {
	recs := Records(doc)

	switch opts.Format {
	case FormatText, "":
		tw := newTextWriter(w, opts)
		tw.WriteHeader(doc.Name, len(recs))

		for i := range recs {
			tw.WriteRecord(&recs[i])
		}
		return tw.err

	case FormatJSON:
		enc := json.NewEncoder(w)
		for i := range recs {
			if err := enc.Encode(&recs[i]); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
		}
		return nil

	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		for i := range recs {
			if err := enc.Encode(&recs[i]); err != nil {
				return fmt.Errorf("encode msgpack: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("unknown format %q", opts.Format)
}
