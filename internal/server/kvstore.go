// Package server implements the key-value store service the board
// persists to: one JSON document under one key, plus timestamped backup
// keys for corrupted documents.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/valter-silva-au/bounty-board/internal/storage"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// maxDocumentBytes caps accepted documents; larger writes fail like a
// quota error rather than consuming unbounded memory.
const maxDocumentBytes = 4 << 20

// Service holds the stored board document in memory, optionally mirrored
// to a file so the store survives restarts.
type Service struct {
	mu       sync.Mutex
	document []byte
	backups  map[string][]byte
	dataFile string
}

// New creates a store service. If dataFile is non-empty and exists, the
// stored document is loaded from it.
func New(dataFile string) (*Service, error) {
	s := &Service{
		backups:  make(map[string][]byte),
		dataFile: dataFile,
	}
	if dataFile != "" {
		data, err := os.ReadFile(dataFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading store data file: %w", err)
		}
		if err == nil {
			s.document = data
		}
	}
	return s, nil
}

// Handler returns the HTTP surface of the store.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/data", s.handleData)
	mux.HandleFunc("/api/backups", s.handleBackups)
	return mux
}

// Run serves the store on addr until the context is cancelled, then
// shuts down gracefully.
func (s *Service) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Service) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGet(w)
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) handleGet(w http.ResponseWriter) {
	s.mu.Lock()
	doc := s.document
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if doc == nil {
		_ = json.NewEncoder(w).Encode(models.EmptyState().Document())
		return
	}
	_, _ = w.Write(doc)
}

func (s *Service) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		writeAck(w, http.StatusBadRequest, fmt.Sprintf("reading request body: %s", err))
		return
	}
	if len(body) > maxDocumentBytes {
		writeAck(w, http.StatusRequestEntityTooLarge, "document exceeds storage limit")
		return
	}

	if _, err := storage.ImportSnapshot(body); err != nil {
		writeAck(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.document = body
	persistErr := s.persistLocked()
	s.mu.Unlock()

	if persistErr != nil {
		writeAck(w, http.StatusInternalServerError, persistErr.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}

func (s *Service) handleDelete(w http.ResponseWriter) {
	s.mu.Lock()
	s.document = nil
	persistErr := s.persistLocked()
	s.mu.Unlock()

	if persistErr != nil {
		writeAck(w, http.StatusInternalServerError, persistErr.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}

func (s *Service) handleBackups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
		if err != nil {
			writeAck(w, http.StatusBadRequest, fmt.Sprintf("reading request body: %s", err))
			return
		}
		key := "backup-" + time.Now().UTC().Format(time.RFC3339Nano)
		s.mu.Lock()
		s.backups[key] = body
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "key": key})
	case http.MethodGet:
		s.mu.Lock()
		keys := make([]string, 0, len(s.backups))
		for k := range s.backups {
			keys = append(keys, k)
		}
		s.mu.Unlock()
		sort.Strings(keys)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": keys})
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// persistLocked mirrors the current document to the data file. Caller
// holds s.mu.
func (s *Service) persistLocked() error {
	if s.dataFile == "" {
		return nil
	}
	if s.document == nil {
		if err := os.Remove(s.dataFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clearing store data file: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(s.dataFile, s.document, 0o600); err != nil {
		return fmt.Errorf("writing store data file: %w", err)
	}
	return nil
}

func writeAck(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if errMsg == "" {
		_ = json.NewEncoder(w).Encode(saveAck{Success: true})
		return
	}
	_ = json.NewEncoder(w).Encode(saveAck{Success: false, Error: errMsg})
}

type saveAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
