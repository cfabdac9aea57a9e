package state

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the on-disk form of a board.
type Document struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Background string   `json:"background"`
	Objects    []Object `json:"objects"`
}

// Document captures the session as a Document. Image objects carry their PNG bytes.
func (s *Session) Document() (Document, error) {
	objects := s.Objects()
	for i := range objects {
		if objects[i].Kind == KindImage && len(objects[i].ImageData) == 0 {
			if err := objects[i].EncodeImage(); err != nil {
				return Document{}, err
			}
		}
	}
	v := s.Viewport()
	return Document{
		Width:      v.Width,
		Height:     v.Height,
		Background: s.Background(),
		Objects:    objects,
	}, nil
}

// Load replaces the session contents with the document's objects, keeping their
// ids. Every object is decoded and checked before anything changes, so a bad
// document leaves the session as it was. Peers receive a clear carrying the
// document background followed by one put per object.
func (s *Session) Load(doc Document) error {
	objects := make([]*Object, 0, len(doc.Objects))
	seen := make(map[string]bool, len(doc.Objects))
	s.mu.RLock()
	hook, tool := s.beforeAdd, s.tool
	s.mu.RUnlock()
	for _, o := range doc.Objects {
		obj := o.Clone()
		if obj.Kind == KindImage && obj.Image == nil {
			if err := obj.DecodeImage(); err != nil {
				return fmt.Errorf("load document: %w", err)
			}
		}
		if hook != nil {
			hook(&obj)
		}
		AssignID(&obj)
		if seen[obj.ID] {
			return fmt.Errorf("load document: %s: %w", obj.ID, ErrDuplicateID)
		}
		seen[obj.ID] = true
		obj.Selectable = tool == ToolSelect
		objects = append(objects, &obj)
	}

	s.mu.Lock()
	s.objects = objects
	s.selected = ""
	if doc.Background != "" {
		s.background = doc.Background
	}
	background := s.background
	s.mu.Unlock()

	s.publish(Op{Type: OpClear, Background: background})
	for i, o := range objects {
		obj := o.Clone()
		s.publish(Op{Type: OpPut, Object: &obj, Index: i})
	}
	s.changed()
	return nil
}

// WriteDocument writes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ReadDocument parses a document written by WriteDocument.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
