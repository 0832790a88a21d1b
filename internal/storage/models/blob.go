package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// blobSchemaVersion is the serialization format version for stored snapshot
// and diff blobs. It is independent of deck version numbers so the format
// can evolve without corrupting historical records.
const blobSchemaVersion = 1

// ErrCorruptBlob indicates a stored snapshot or diff blob could not be
// deserialized. Callers should degrade (treat the snapshot as empty) rather
// than fail the whole operation.
var ErrCorruptBlob = errors.New("corrupt blob")

type snapshotBlob struct {
	Schema int            `json:"schema"`
	Cards  []SnapshotCard `json:"cards"`
}

type diffBlob struct {
	Schema  int          `json:"schema"`
	Changes []DeckChange `json:"changes"`
}

// EncodeSnapshot serializes a snapshot for storage. The input must already
// be in canonical (board, name) order; encoding preserves it.
func EncodeSnapshot(cards []SnapshotCard) (string, error) {
	if cards == nil {
		cards = []SnapshotCard{}
	}
	data, err := json.Marshal(snapshotBlob{Schema: blobSchemaVersion, Cards: cards})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot deserializes a stored snapshot blob.
func DecodeSnapshot(data string) ([]SnapshotCard, error) {
	var blob snapshotBlob
	if err := json.Unmarshal([]byte(data), &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if blob.Schema != blobSchemaVersion {
		return nil, fmt.Errorf("%w: unknown snapshot schema %d", ErrCorruptBlob, blob.Schema)
	}
	return blob.Cards, nil
}

// EncodeDiff serializes a diff for storage.
func EncodeDiff(changes []DeckChange) (string, error) {
	if changes == nil {
		changes = []DeckChange{}
	}
	data, err := json.Marshal(diffBlob{Schema: blobSchemaVersion, Changes: changes})
	if err != nil {
		return "", fmt.Errorf("failed to encode diff: %w", err)
	}
	return string(data), nil
}

// DecodeDiff deserializes a stored diff blob.
func DecodeDiff(data string) ([]DeckChange, error) {
	var blob diffBlob
	if err := json.Unmarshal([]byte(data), &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if blob.Schema != blobSchemaVersion {
		return nil, fmt.Errorf("%w: unknown diff schema %d", ErrCorruptBlob, blob.Schema)
	}
	return blob.Changes, nil
}
