// Package dumpsource is the collaborator spec.md externalizes from the
// ingestion core: it owns bzip2 decompression and streaming XML tokenization
// over a Wikipedia multi-stream dump file. The ingestion driver consumes only
// the small Event interface below and never touches compress/bzip2 or
// encoding/xml directly, matching the original wiki-search-rs's split between
// its index_engine (owns MultiBzDecoder + xml::reader::EventReader) and the
// rest of the pipeline.
package dumpsource

import (
	"compress/bzip2"
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// EventKind identifies which of the three XML event shapes an Event carries.
type EventKind int

const (
	// StartElement marks the opening of an XML element.
	StartElement EventKind = iota
	// EndElement marks the closing of an XML element.
	EndElement
	// Characters carries a run of character data within the currently open
	// element. A single element's character data may arrive split across
	// several consecutive Characters events.
	Characters
)

// Event is one XML parsing event: a start tag, an end tag, or character data.
type Event struct {
	Kind EventKind
	Name string // local element name, for StartElement/EndElement
	Text string // character data, for Characters
}

// EventReader is the stream of XML events the Ingestion Driver consumes.
type EventReader interface {
	// Next returns the next event, or io.EOF when the stream is exhausted.
	Next() (Event, error)
}

// Source wraps a bzip2-compressed Wikipedia dump file, exposing its contents
// as a stream of XML events.
type Source struct {
	file    *os.File
	decoder *xml.Decoder
}

// Open opens path, wraps it in a bzip2 decompressor (transparently handling
// the concatenated bzip2 streams a multi-stream dump is made of), and
// prepares a streaming XML decoder over the decompressed bytes.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump %s: %w", path, err)
	}

	bz := bzip2.NewReader(f)
	dec := xml.NewDecoder(bz)

	return &Source{file: f, decoder: dec}, nil
}

// fromReader builds a Source directly over uncompressed XML, bypassing
// bzip2. Unexported: used only by this package's tests, which exercise the
// XML-tokenization half of Source without needing a bzip2-encoded fixture
// (the standard library only implements a bzip2 reader, not a writer).
func fromReader(r io.Reader) *Source {
	return &Source{decoder: xml.NewDecoder(r)}
}

// Close releases the underlying dump file.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Next returns the next XML event from the dump, or io.EOF at end of stream.
func (s *Source) Next() (Event, error) {
	tok, err := s.decoder.Token()
	if err != nil {
		if err == io.EOF {
			return Event{}, io.EOF
		}
		return Event{}, fmt.Errorf("parse dump xml: %w", err)
	}

	switch t := tok.(type) {
	case xml.StartElement:
		return Event{Kind: StartElement, Name: t.Name.Local}, nil
	case xml.EndElement:
		return Event{Kind: EndElement, Name: t.Name.Local}, nil
	case xml.CharData:
		return Event{Kind: Characters, Text: string(t)}, nil
	default:
		// Comments, directives, processing instructions: skip by recursing.
		return s.Next()
	}
}
