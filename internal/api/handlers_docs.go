package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkgest/inkgest/internal/archive"
)

// handleListDocuments lists archived notebooks for a user.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	ac := s.orchestrator.ArchiveClient()
	if !ac.Enabled() {
		jsonError(w, "archive is not configured", http.StatusServiceUnavailable)
		return
	}

	prefix := fmt.Sprintf("notebooks/users/%s/documents", userID)
	entries, err := ac.ListRecords(r.Context(), prefix, 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Only the meta records describe notebooks.
	var docs []map[string]any
	for _, entry := range entries {
		if strings.HasSuffix(entry.Key, "/meta") {
			docs = append(docs, map[string]any{
				"key":   entry.Key,
				"value": entry.Value,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleDeleteDocument deletes an archived notebook and its records.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	ac := s.orchestrator.ArchiveClient()
	if !ac.Enabled() {
		jsonError(w, "archive is not configured", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	docPrefix := fmt.Sprintf("notebooks/users/%s/documents/%s", userID, docID)

	deleteHashIndex(ctx, ac, userID, docID, docPrefix)

	deleted := 0
	if err := ac.DeleteRecord(ctx, docPrefix, true); err == nil {
		deleted = 1
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_deleted": deleted,
	})
}

func deleteHashIndex(ctx context.Context, ac *archive.Client, userID, docID, docPrefix string) {
	// Read the meta record to learn the content hash.
	meta, err := ac.GetRecord(ctx, docPrefix+"/meta")
	if err != nil || meta == nil {
		return
	}
	metaMap, ok := meta.Value.(map[string]any)
	if !ok {
		return
	}
	hash, _ := metaMap["content_hash"].(string)
	if hash == "" {
		return
	}
	hashPath := fmt.Sprintf("notebooks/users/%s/documents/by_hash/%s/%s", userID, hash, docID)
	ac.DeleteRecord(ctx, hashPath, false)
}
