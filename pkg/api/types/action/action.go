// Package action defines payloads of the action API.
//
// Every response is an envelope:
//
//	{"help": "...", "success": true, "result": ...}
//
// or, on failure:
//
//	{"help": "...", "success": false, "error": {"__type": "Not Found Error", "message": "..."}}
package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Root is the path prefix of actions. An action is at Root + "/" + name.
const Root = "/api/3/action"

type Response[T any] struct {
	Help    string `json:"help"`
	Success bool   `json:"success"`
	Result  T      `json:"result"`
	Error   *Error `json:"error,omitempty"`
}

// types of errors.
const (
	NotFoundError      = "Not Found Error"
	ValidationError    = "Validation Error"
	AuthorizationError = "Authorization Error"
	BadRequestError    = "Bad Request Error"
	InternalError      = "Internal Server Error"
)

// AlreadyInUse is the tail of messages of Validation Errors telling the name is taken.
const AlreadyInUse = "is already in use."

type Error struct {
	Type    string
	Message string

	// Fields maps field names to problems in them.
	Fields map[string][]string
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Type)
	if e.Message != "" {
		fmt.Fprintf(b, ": %s", e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " (%s: %s)", k, strings.Join(e.Fields[k], " "))
	}
	return b.String()
}

// Conflicted tells the error is a Validation Error by a name in use.
func (e *Error) Conflicted() bool {
	if e.Type != ValidationError {
		return false
	}
	for _, msgs := range e.Fields {
		for _, m := range msgs {
			if strings.HasSuffix(m, AlreadyInUse) {
				return true
			}
		}
	}
	return false
}

func (e *Error) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	for k, v := range e.Fields {
		m[k] = v
	}
	m["__type"] = e.Type
	if e.Message != "" {
		m["message"] = e.Message
	}
	return json.Marshal(m)
}

func (e *Error) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	typ, ok := raw["__type"]
	if !ok {
		return fmt.Errorf(`required field missing: "__type"`)
	}
	if err := json.Unmarshal(typ, &e.Type); err != nil {
		return err
	}
	if msg, ok := raw["message"]; ok {
		if err := json.Unmarshal(msg, &e.Message); err != nil {
			return err
		}
	}

	for k, v := range raw {
		if k == "__type" || k == "message" {
			continue
		}
		msgs := []string{}
		if err := json.Unmarshal(v, &msgs); err != nil {
			// other fields are not problems of fields.
			continue
		}
		if e.Fields == nil {
			e.Fields = map[string][]string{}
		}
		e.Fields[k] = msgs
	}
	return nil
}

type Tag struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	VocabularyId string `json:"vocabulary_id"`
	DisplayName  string `json:"display_name"`
}

type Vocabulary struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

type User struct {
	Name     string `json:"name"`
	Sysadmin bool   `json:"sysadmin"`
}

// requests

type VocabularyCreate struct {
	Name string `json:"name"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags,omitempty"`
}

type TagCreate struct {
	Name         string `json:"name"`
	VocabularyId string `json:"vocabulary_id"`
}

type TagDelete struct {
	Id           string `json:"id"`
	VocabularyId string `json:"vocabulary_id"`
}

type Id struct {
	Id string `json:"id"`
}

type TagList struct {
	VocabularyId string `json:"vocabulary_id"`

	// AllFields tells the result should be Tags, not names.
	AllFields bool `json:"all_fields,omitempty"`
}
