package service

import (
	"fmt"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
)

// PaginationController is the read-only browse specialization of the session
// engine: two clamped transitions and no terminal effect.
type PaginationController struct{}

// Navigate applies tok and reports whether the index moved. A clamped press
// returns the view unchanged.
func (PaginationController) Navigate(v model.PaginationView, tok model.PageToken) (model.PaginationView, bool) {
	return v.Move(tok.Delta())
}

// Paginate splits items into pages of at most size entries each, titled
// "<title> (i/n)". It always returns at least one page.
func Paginate(title string, fields []model.PageField, size int) []model.Page {
	if size <= 0 {
		size = 1
	}
	var chunks [][]model.PageField
	for start := 0; start < len(fields); start += size {
		chunks = append(chunks, fields[start:min(start+size, len(fields))])
	}
	if len(chunks) == 0 {
		chunks = append(chunks, nil)
	}

	pages := make([]model.Page, 0, len(chunks))
	for i, chunk := range chunks {
		pages = append(pages, model.Page{
			Title:  pageTitle(title, i, len(chunks)),
			Fields: chunk,
		})
	}
	return pages
}

func pageTitle(title string, i, n int) string {
	if n == 1 {
		return title
	}
	return fmt.Sprintf("%s (%d/%d)", title, i+1, n)
}
