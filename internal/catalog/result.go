package catalog

import (
	"errors"

	"randomkiwi/internal/domain"
)

const (
	msgInitialize    = "Failed to initialize article catalog."
	msgPoolExhausted = "No more articles in the pool."
	msgReplenish     = "Failed to replenish the article pool."
	msgNoPrevious    = "No previous article in the catalog."
	msgDisposed      = "Article catalog is disposed."
)

var (
	ErrInitialize    = errors.New("catalog initialization failed")
	ErrPoolExhausted = errors.New("article pool exhausted")
	ErrReplenish     = errors.New("article pool replenishment failed")
	ErrNoPrevious    = errors.New("no previous article")
	ErrDisposed      = errors.New("catalog disposed")
)

// Result is the outcome of a catalog operation. Article is the current article
// after the operation and may be set even when Success is false: a Next that
// moved forward but could not refill the pool reports failure yet still has a
// valid current article.
type Result struct {
	Success bool
	Message string
	Err     error
	Article *domain.ArticleMetadata
}

// Failed is the negation of Success.
func (r Result) Failed() bool {
	return !r.Success
}

func succeeded(article *domain.ArticleMetadata) Result {
	return Result{Success: true, Article: article}
}

func failed(message string, err error, article *domain.ArticleMetadata) Result {
	return Result{Message: message, Err: err, Article: article}
}
