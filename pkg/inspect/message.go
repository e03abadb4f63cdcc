package inspect

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// MessageSnapshot carries the full state. It is the first message
	// every client receives.
	MessageSnapshot MessageType = "snapshot"

	// MessageChange carries a merge patch from the previous state.
	MessageChange MessageType = "change"
)

// Message is sent to websocket clients.
type Message struct {
	Type  MessageType     `json:"type"`
	Seq   uint64          `json:"seq"`
	State json.RawMessage `json:"state,omitempty"`
	Patch json.RawMessage `json:"patch,omitempty"`
}

// mergePatch returns the merge patch turning prev into next. A merge patch
// that is not an object replaces the target, so array roots get the whole
// new document.
func mergePatch(prev, next []byte) ([]byte, error) {
	if !isObject(prev) || !isObject(next) {
		return next, nil
	}
	return jsonpatch.CreateMergePatch(prev, next)
}

func isObject(doc []byte) bool {
	for _, c := range doc {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
