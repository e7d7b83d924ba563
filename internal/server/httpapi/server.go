// Package httpapi exposes the backend over plain HTTP with JSON bodies.
// Errors travel as {"detail": "..."} envelopes; authenticated routes expect
// a bearer token in the Authorization header.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/vizzyhq/vizzy/internal/common"
	"github.com/vizzyhq/vizzy/internal/logging"
	"github.com/vizzyhq/vizzy/internal/server/models"
	"github.com/vizzyhq/vizzy/internal/server/services"
	"github.com/vizzyhq/vizzy/internal/server/storage"
)

// maxUploadBytes caps image uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type Server struct {
	users         *services.UserService
	conversations *services.ConversationService
	chat          *services.ChatService
	memory        *services.MemoryService
	store         storage.Store
	logger        logging.Logger
}

// NewServer builds the route table. localDir, when non-empty, is served
// under /storage/ so locally stored assets are reachable by URL.
func NewServer(users *services.UserService, conversations *services.ConversationService,
	chat *services.ChatService, memory *services.MemoryService,
	store storage.Store, localDir string, logger logging.Logger) http.Handler {

	s := &Server{
		users:         users,
		conversations: conversations,
		chat:          chat,
		memory:        memory,
		store:         store,
		logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signup", s.handleSignup)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/conversations", s.requireAuth(s.handleConversations))
	mux.HandleFunc("/conversations/", s.requireAuth(s.handleConversationByID))
	mux.HandleFunc("/chat/send", s.requireAuth(s.handleChatSend))
	mux.HandleFunc("/memory/reset", s.requireAuth(s.handleMemoryReset))
	mux.HandleFunc("/upload/image", s.requireAuth(s.handleUploadImage))

	if localDir != "" {
		mux.Handle("/storage/", http.StripPrefix("/storage/", http.FileServer(http.Dir(localDir))))
	}

	return chainMiddlewares(mux, withCORS, s.withLogging)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type signupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type conversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type assetResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Text      string          `json:"text,omitempty"`
	Assets    []assetResponse `json:"assets"`
	CreatedAt time.Time       `json:"created_at"`
}

type conversationDetailResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []messageResponse `json:"messages"`
}

type sendRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	ImageURL       string `json:"image_url"`
	UsePreferences bool   `json:"use_preferences"`
}

type sendResponse struct {
	ConversationID   string          `json:"conversation_id"`
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
}

type uploadResponse struct {
	ImageURL string `json:"image_url"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	user, err := s.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeDetail(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	list, err := s.conversations.List(r.Context(), userID)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	out := make([]conversationResponse, 0, len(list))
	for _, c := range list {
		out = append(out, conversationResponse{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, userID string) {
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		detail, err := s.conversations.GetDetail(r.Context(), userID, id)
		if err != nil {
			s.writeError(r, w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	case http.MethodDelete:
		if err := s.conversations.Delete(r.Context(), userID, id); err != nil {
			s.writeError(r, w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := s.chat.Send(r.Context(), &services.SendInput{
		UserID:         userID,
		ConversationID: req.ConversationID,
		Text:           req.Text,
		ImageURL:       req.ImageURL,
		UsePreferences: req.UsePreferences,
	})
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{
		ConversationID:   res.Conversation.ID,
		UserMessage:      toMessageResponse(res.UserMessage),
		AssistantMessage: toMessageResponse(res.AssistantMessage),
	})
}

func (s *Server) handleMemoryReset(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := s.memory.Reset(r.Context(), userID); err != nil {
		s.writeError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "A 'file' form field is required.")
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	if !allowedImageExts[ext] {
		writeDetail(w, http.StatusBadRequest, "Only png, jpg, jpeg and webp images are accepted.")
		return
	}

	url, err := s.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		s.writeError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{ImageURL: url})
}

func toMessageResponse(m services.MessageWithAssets) messageResponse {
	out := messageResponse{
		ID:        m.Message.ID,
		Role:      m.Message.Role,
		Text:      m.Message.Text,
		Assets:    []assetResponse{},
		CreatedAt: m.Message.CreatedAt,
	}
	for _, a := range m.Assets {
		out.Assets = append(out.Assets, toAssetResponse(a))
	}
	return out
}

func toAssetResponse(a models.Asset) assetResponse {
	return assetResponse{ID: a.ID, Type: a.Type, URL: a.URL, CreatedAt: a.CreatedAt}
}

func toDetailResponse(d *services.ConversationDetail) conversationDetailResponse {
	out := conversationDetailResponse{
		ID:        d.Conversation.ID,
		Title:     d.Conversation.Title,
		CreatedAt: d.Conversation.CreatedAt,
		Messages:  []messageResponse{},
	}
	for _, m := range d.Messages {
		out.Messages = append(out.Messages, toMessageResponse(m))
	}
	return out
}

// writeError translates the service error taxonomy to HTTP statuses.
func (s *Server) writeError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case common.IsValidation(err):
		writeDetail(w, http.StatusBadRequest, common.ValidationReason(err))
	case errors.Is(err, common.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "Not authenticated.")
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
