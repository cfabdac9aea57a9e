package state

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Apply merges an op received from a peer. Ops that originated here are ignored.
// It returns true when the session changed and the UI should be refreshed.
// Remote ops are never re-published.
func (s *Session) Apply(op Op) (bool, error) {
	if op.Site == s.site {
		return false, nil
	}
	s.clock.Witness(op.Lamport)

	s.mu.Lock()
	changed, err := s.applyLocked(op)
	s.mu.Unlock()
	if changed {
		s.changed()
	}
	return changed, err
}

func (s *Session) applyLocked(op Op) (bool, error) {
	switch op.Type {
	case OpPut:
		if op.Object == nil || op.Object.ID == "" {
			return false, fmt.Errorf("put op without object id")
		}
		obj := op.Object.Clone()
		if obj.Kind == KindImage && obj.Image == nil {
			if err := obj.DecodeImage(); err != nil {
				return false, err
			}
		}
		if i := s.indexOf(obj.ID); i >= 0 {
			obj.Selectable = s.tool == ToolSelect
			*s.objects[i] = obj
			return true, nil
		}
		if _, err := s.insertLocked(op.Index, obj); err != nil {
			return false, err
		}
		return true, nil
	case OpDelete:
		_, ok := s.removeLocked(op.Target)
		return ok, nil
	case OpClear:
		s.clearLocked()
		if op.Background != "" {
			s.background = op.Background
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown op type %q", op.Type)
}

// Snapshot returns put ops recreating the current objects, for a peer that just joined.
func (s *Session) Snapshot() []Op {
	objects := s.Objects()
	ops := make([]Op, 0, len(objects))
	now := s.clock.Now()
	for i := range objects {
		obj := objects[i]
		ops = append(ops, Op{Type: OpPut, Object: &obj, Index: -1, Lamport: now, Site: s.site})
	}
	return ops
}

// EncodeImage fills ImageData from Image.
func (o *Object) EncodeImage() error {
	if o.Image == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, o.Image); err != nil {
		return fmt.Errorf("encode image %s: %w", o.ID, err)
	}
	o.ImageData = buf.Bytes()
	return nil
}

// DecodeImage fills Image from ImageData.
func (o *Object) DecodeImage() error {
	if len(o.ImageData) == 0 {
		return fmt.Errorf("image %s has no data", o.ID)
	}
	img, _, err := image.Decode(bytes.NewReader(o.ImageData))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", o.ID, err)
	}
	o.Image = img
	return nil
}
