package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Upload (rate limited)
	mux.HandleFunc("/api/upload", s.withUploadRateLimit(s.app.BookHandler.UploadHandler))

	// API routes - Processing
	mux.HandleFunc("/api/process/", s.handleProcessRoutes) // POST /{bookId}

	// API routes - Books
	mux.HandleFunc("/api/books", s.app.BookHandler.ListHandler)
	mux.HandleFunc("/api/books/", s.handleBookRoutes) // GET/DELETE /{id}, GET /{id}/status

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleProcessRoutes routes processing requests
func (s *Server) handleProcessRoutes(w http.ResponseWriter, r *http.Request) {
	// POST /api/process/{bookId}
	bookID := strings.TrimPrefix(r.URL.Path, "/api/process/")
	if bookID == "" || strings.Contains(bookID, "/") {
		http.Error(w, "Book ID is required", http.StatusBadRequest)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.app.ProcessHandler.TriggerHandler(w, r, bookID)
}

// handleBookRoutes routes book requests to the appropriate handler
func (s *Server) handleBookRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/books/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Book ID is required", http.StatusBadRequest)
		return
	}
	bookID := parts[0]

	// GET /api/books/{id}/status
	if len(parts) == 2 && parts[1] == "status" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.BookHandler.StatusHandler(w, r, bookID)
		return
	}

	if len(parts) != 1 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.BookHandler.GetHandler(w, r, bookID)
	case http.MethodDelete:
		s.app.BookHandler.DeleteHandler(w, r, bookID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
