package dto

import "github.com/andriyanb/artikel-be/internal/models"

// ArticleView is the public shape of an article. The stored image reference
// is rewritten to an absolute URL and the creation timestamp is rendered as
// a calendar date.
type ArticleView struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Status       string `json:"status"`
	DateUploaded string `json:"date_uploaded"`
}

// NewArticleView builds a view with the image reference resolved through
// resolveURL.
func NewArticleView(a models.Article, resolveURL func(string) string) ArticleView {
	return ArticleView{
		ID:           a.ID,
		Title:        a.Title,
		Slug:         a.Slug,
		Description:  a.Description,
		ImageURL:     resolveURL(a.ImageURL),
		Status:       a.Status,
		DateUploaded: a.CreatedAt.Format("2006-01-02"),
	}
}

// NewArticleViewList maps a slice of articles to views.
func NewArticleViewList(articles []models.Article, resolveURL func(string) string) []ArticleView {
	views := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, NewArticleView(a, resolveURL))
	}
	return views
}

type ReviewRequest struct {
	Status string `json:"status"`
}
