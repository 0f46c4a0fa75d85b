package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/models"
)

// maxUploadBytes bounds the in-memory portion of a multipart chat request.
const maxUploadBytes = 64 << 20

const processedNotice = "Your document has been processed! Ask me anything about it."

// handleChat serves the multipart chat endpoint. A request with files is an
// ingestion request and gets a JSON notice; a request with only a query gets
// a streamed NDJSON answer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		s.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["files"]) > 0 {
		files, err := readUploads(r)
		if err != nil {
			s.logger.Error("reading uploads failed", zap.Error(err))
			s.respondError(w, http.StatusBadRequest, "could not read uploaded files")
			return
		}
		s.logger.Debug("ingest request",
			zap.String("session_id", sessionID), zap.Int("files", len(files)))
		if !s.pipeline.Ingest(r.Context(), sessionID, files) {
			s.respondError(w, http.StatusBadRequest, "failed to process files")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"message": processedNotice})
		return
	}

	query := r.FormValue("query")
	if strings.TrimSpace(query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("chat request",
		zap.String("session_id", sessionID), zap.Int("query_len", len(query)))
	s.streamAnswer(w, r, sessionID, query)
}

// streamAnswer writes one JSON-encoded chunk per line, flushing after each so
// the client sees model output as it is generated.
func (s *Server) streamAnswer(w http.ResponseWriter, r *http.Request, sessionID, query string) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for chunk := range s.router.Answer(r.Context(), sessionID, query) {
		if err := enc.Encode(chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func readUploads(r *http.Request) ([]models.UploadedFile, error) {
	headers := r.MultipartForm.File["files"]
	files := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, models.UploadedFile{
			Filename:    fh.Filename,
			ContentKind: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.Sessions()
	resp := map[string]interface{}{
		"sessions":      len(sessions),
		"session_list":  sessions,
		"llm_provider":  s.config.LLM.Provider,
		"llm_model":     s.config.LLM.Model,
		"session_ttl_m": s.config.Sessions.TTLMinutes,
		"config": map[string]interface{}{
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"chunk_size":           s.config.Retrieval.ChunkSize,
			"chunk_overlap":        s.config.Retrieval.ChunkOverlap,
			"top_k":                s.config.Retrieval.TopK,
			"keyword_weight":       s.config.Retrieval.KeywordWeight,
			"semantic_weight":      s.config.Retrieval.SemanticWeight,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvictSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("evict session request", zap.String("session_id", id))
	s.registry.Evict(id)
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "evicted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
