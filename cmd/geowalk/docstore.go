package main

import (
	"encoding/json"
	"fmt"
	"os"

	"GeoDB/geo"
)

// fileDocStore is a whole-file JSON map from DocRef string to raw document
// bytes. It is rewritten in full on every Put, which is fine at the scale
// geowalk is meant to exercise.
type fileDocStore struct {
	path string
	docs map[string]json.RawMessage
}

func openFileDocStore(path string) (*fileDocStore, error) {
	s := &fileDocStore{path: path, docs: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func (s *fileDocStore) Put(ref geo.DocRef, doc json.RawMessage) error {
	s.docs[ref.String()] = doc
	raw, err := json.MarshalIndent(s.docs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0644)
}

func (s *fileDocStore) Load(ref geo.DocRef) ([]byte, error) {
	doc, ok := s.docs[ref.String()]
	if !ok {
		return nil, fmt.Errorf("no document for %s", ref)
	}
	return doc, nil
}
