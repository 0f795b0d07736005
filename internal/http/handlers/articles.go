package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/andriyanb/artikel-be/internal/http/respond"
	"github.com/andriyanb/artikel-be/internal/middleware"
	"github.com/andriyanb/artikel-be/internal/models"
	"github.com/andriyanb/artikel-be/internal/models/dto"
	"github.com/andriyanb/artikel-be/internal/storage"
	"github.com/andriyanb/artikel-be/internal/upload"
)

// multipartFormMemory caps the in-memory portion of a parsed multipart
// body; larger parts spill to temp files.
const multipartFormMemory = 4 << 20

// ArticleHandler owns the submit/review/read endpoints for the article
// lifecycle: pending on submit, then approved or rejected exactly once.
type ArticleHandler struct {
	store   storage.ArticleStore
	uploads *upload.Store
	logger  *zap.SugaredLogger
}

// NewArticleHandler constructs the handler.
func NewArticleHandler(store storage.ArticleStore, uploads *upload.Store, logger *zap.SugaredLogger) *ArticleHandler {
	return &ArticleHandler{store: store, uploads: uploads, logger: logger}
}

// Submit accepts a multipart form with title, description, and an image,
// and creates a pending article owned by the authenticated principal.
func (h *ArticleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(multipartFormMemory); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respond.Error(w, http.StatusBadRequest, "title and description are required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	stored, err := h.uploads.Save(header.Filename, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedMediaType):
			respond.Error(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, upload.ErrPayloadTooLarge):
			respond.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			h.logger.Errorw("store upload", "filename", header.Filename, "err", err)
			respond.Error(w, http.StatusInternalServerError, "failed to store image")
		}
		return
	}

	article := models.Article{
		UserID:      principal.UserID,
		Title:       title,
		Slug:        slug.Make(title),
		Description: description,
		ImageURL:    stored,
		Status:      models.StatusPending,
	}
	if _, err := h.store.CreateArticle(r.Context(), article); err != nil {
		// The file landed before the insert failed; clean it up so no
		// orphan remains on disk.
		if rmErr := h.uploads.Remove(stored); rmErr != nil {
			h.logger.Errorw("remove orphaned upload", "name", stored, "err", rmErr)
		}
		h.logger.Errorw("create article", "user_id", principal.UserID, "err", err)
		respond.Error(w, http.StatusInternalServerError, "failed to submit article")
		return
	}

	respond.JSON(w, http.StatusCreated, "Article submitted successfully", nil)
}

// ListPending returns every article awaiting review. Admin only.
func (h *ArticleHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusPending)
}

// ListApproved returns every approved article. Public.
func (h *ArticleHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusApproved)
}

// ListRejected returns every rejected article. Admin only, matching the
// visibility of the pending queue.
func (h *ArticleHandler) ListRejected(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusRejected)
}

func (h *ArticleHandler) listByStatus(w http.ResponseWriter, r *http.Request, status string) {
	articles, err := h.store.ListByStatus(r.Context(), status)
	if err != nil {
		h.logger.Errorw("list articles", "status", status, "err", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch articles")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.NewArticleViewList(articles, h.uploads.PublicURL))
}

// Review applies an admin decision to a pending article. Repeating the same
// decision is a no-op; reversing a decision is rejected.
func (h *ArticleHandler) Review(w http.ResponseWriter, r *http.Request) {
	articleID, err := strconv.ParseInt(chi.URLParam(r, "articleId"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid article id")
		return
	}
	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !models.ValidDecision(req.Status) {
		respond.Error(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	if err := h.store.SetStatus(r.Context(), articleID, req.Status); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "article not found")
		case errors.Is(err, storage.ErrAlreadyReviewed):
			respond.Error(w, http.StatusConflict, "article has already been reviewed")
		default:
			h.logger.Errorw("review article", "article_id", articleID, "err", err)
			respond.Error(w, http.StatusInternalServerError, "failed to update article status")
		}
		return
	}

	respond.JSON(w, http.StatusOK, fmt.Sprintf("Article has been %s successfully", req.Status), nil)
}

// GetBySlug returns the approved article matching the slug. Public.
func (h *ArticleHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	article, err := h.store.FindApprovedBySlug(r.Context(), s)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "article not found")
			return
		}
		h.logger.Errorw("fetch article by slug", "slug", s, "err", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch article")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.NewArticleView(article, h.uploads.PublicURL))
}
