package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// StubNote is a note stored by the stub server
type StubNote struct {
	ID     int64
	Deck   string
	Model  string
	Fields map[string]string
	Tags   []string
}

// AnkiStub is an in-memory AnkiConnect endpoint for tests. It implements the
// subset of actions the uploader uses and records every action name it saw.
type AnkiStub struct {
	Server *httptest.Server

	mu     sync.Mutex
	Calls  []string
	Notes  []*StubNote
	Media  map[string][]byte
	nextID int64

	// FailActions maps an action name to an error string the stub returns
	FailActions map[string]string
}

// NewAnkiStub starts a stub AnkiConnect server. It is shut down via t.Cleanup.
func NewAnkiStub(t *testing.T) *AnkiStub {
	t.Helper()

	stub := &AnkiStub{
		Media:       make(map[string][]byte),
		nextID:      1000,
		FailActions: make(map[string]string),
	}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.handle))
	t.Cleanup(stub.Server.Close)
	return stub
}

// URL returns the stub endpoint address
func (s *AnkiStub) URL() string {
	return s.Server.URL
}

// CallCount returns how many times the given action was invoked
func (s *AnkiStub) CallCount(action string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, call := range s.Calls {
		if call == action {
			count++
		}
	}
	return count
}

// NoteByID returns the stored note whose ID field matches, or nil
func (s *AnkiStub) NoteByID(id string) *StubNote {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, note := range s.Notes {
		if note.Fields["ID"] == id {
			return note
		}
	}
	return nil
}

type stubRequest struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

func (s *AnkiStub) handle(w http.ResponseWriter, r *http.Request) {
	var req stubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, req.Action)

	if msg, ok := s.FailActions[req.Action]; ok {
		writeStubResponse(w, nil, &msg)
		return
	}

	switch req.Action {
	case "version":
		writeStubResponse(w, 6, nil)

	case "storeMediaFile":
		var params struct {
			Filename string `json:"filename"`
			Data     string `json:"data"`
		}
		json.Unmarshal(req.Params, &params)
		data, _ := base64.StdEncoding.DecodeString(params.Data)
		s.Media[params.Filename] = data
		writeStubResponse(w, params.Filename, nil)

	case "findNotes":
		var params struct {
			Query string `json:"query"`
		}
		json.Unmarshal(req.Params, &params)
		ids := []int64{}
		if id, ok := parseIDQuery(params.Query); ok {
			for _, note := range s.Notes {
				if note.Fields["ID"] == id {
					ids = append(ids, note.ID)
				}
			}
		}
		writeStubResponse(w, ids, nil)

	case "addNote":
		var params struct {
			Note struct {
				DeckName  string            `json:"deckName"`
				ModelName string            `json:"modelName"`
				Fields    map[string]string `json:"fields"`
				Tags      []string          `json:"tags"`
			} `json:"note"`
		}
		json.Unmarshal(req.Params, &params)
		s.nextID++
		s.Notes = append(s.Notes, &StubNote{
			ID:     s.nextID,
			Deck:   params.Note.DeckName,
			Model:  params.Note.ModelName,
			Fields: params.Note.Fields,
			Tags:   params.Note.Tags,
		})
		writeStubResponse(w, s.nextID, nil)

	case "updateNote":
		var params struct {
			Note struct {
				ID     int64             `json:"id"`
				Fields map[string]string `json:"fields"`
				Tags   []string          `json:"tags"`
			} `json:"note"`
		}
		json.Unmarshal(req.Params, &params)
		for _, note := range s.Notes {
			if note.ID == params.Note.ID {
				for k, v := range params.Note.Fields {
					note.Fields[k] = v
				}
				if params.Note.Tags != nil {
					note.Tags = params.Note.Tags
				}
				writeStubResponse(w, nil, nil)
				return
			}
		}
		msg := fmt.Sprintf("note not found: %d", params.Note.ID)
		writeStubResponse(w, nil, &msg)

	default:
		msg := fmt.Sprintf("unsupported action: %s", req.Action)
		writeStubResponse(w, nil, &msg)
	}
}

// parseIDQuery extracts the value from a "ID:<value>" search query
func parseIDQuery(query string) (string, bool) {
	query = strings.Trim(query, "\"")
	parts := strings.SplitN(query, ":", 2)
	if len(parts) != 2 || parts[0] != "ID" {
		return "", false
	}
	return parts[1], true
}

func writeStubResponse(w http.ResponseWriter, result any, errMsg *string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"result": result,
		"error":  errMsg,
	})
}
