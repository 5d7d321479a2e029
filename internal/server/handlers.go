package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lox/discardbot/sdk"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// decodeRequest parses a harness request body. Anything that is not a single
// JSON object is rejected.
func decodeRequest(r io.Reader) (sdk.Request, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return sdk.Request{}, errors.New("empty request body")
		}
		return sdk.Request{}, fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return sdk.Request{}, errors.New("invalid request body: trailing data")
	}
	return parseRequest(raw)
}

func parseRequest(raw json.RawMessage) (sdk.Request, error) {
	var req sdk.Request
	if len(raw) == 0 || raw[0] != '{' {
		return req, errors.New("request must be a JSON object")
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

func (s *Server) handleGetAction(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	d := s.act(r.Context(), req)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.observe(r.Context(), req)
	writeJSON(w, http.StatusOK, ack{OK: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Hands: s.agent.Stats().HandsPlayed})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Stats())
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Rejected request", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client went away
}
