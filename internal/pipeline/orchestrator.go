package pipeline

import (
	"context"
	"fmt"
	"sync"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/internal/logging"
	"starlift/internal/workers"
)

// SourceResult records how one source pipeline ended: completed, gate
// abort, or captured failure.
type SourceResult struct {
	Source string
	Err    error
}

// Orchestrator runs the three source pipelines as independent
// concurrent tasks and merges only successful outputs into the run
// store. One source's failure, including a tripped skip-rate gate or a
// panic, never blocks the others.
type Orchestrator struct {
	runProducts func(ctx context.Context) (*ProductsOutput, error)
	runBooks    func(ctx context.Context) (*BooksOutput, error)
	runFilms    func(ctx context.Context) (*FilmsOutput, error)
	logger      logging.Logger
}

// NewOrchestrator wires the default source pipelines
func NewOrchestrator(cfg *config.Config, fetcher fetch.Fetcher, pool *workers.WorkerPool, service Extractor) *Orchestrator {
	selector := NewStrategySelector(service)

	products := NewProductsSource(cfg, fetcher, pool, selector)
	books := NewBooksSource(cfg, fetcher, pool, selector)
	films := NewFilmsSource(cfg, fetcher, selector)

	return &Orchestrator{
		runProducts: products.Run,
		runBooks:    books.Run,
		runFilms:    films.Run,
		logger:      logging.GetGlobalLogger(),
	}
}

// Run executes all three sources concurrently and returns the merged
// store plus one result per source. The store is valid regardless of
// how many sources failed.
func (o *Orchestrator) Run(ctx context.Context) (*RunStore, []SourceResult) {
	store := NewRunStore()

	var (
		wg          sync.WaitGroup
		productsOut *ProductsOutput
		booksOut    *BooksOutput
		filmsOut    *FilmsOutput
		productsErr error
		booksErr    error
		filmsErr    error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer o.capture("products", &productsErr)
		productsOut, productsErr = o.runProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		defer o.capture("books", &booksErr)
		booksOut, booksErr = o.runBooks(ctx)
	}()
	go func() {
		defer wg.Done()
		defer o.capture("films", &filmsErr)
		filmsOut, filmsErr = o.runFilms(ctx)
	}()
	wg.Wait()

	if productsErr == nil {
		store.MergeProducts(productsOut)
	}
	if booksErr == nil {
		store.MergeBooks(booksOut)
	}
	if filmsErr == nil {
		store.MergeFilms(filmsOut)
	}

	results := []SourceResult{
		{Source: "products", Err: productsErr},
		{Source: "books", Err: booksErr},
		{Source: "films", Err: filmsErr},
	}

	for _, result := range results {
		if result.Err != nil {
			o.logger.Error("Source pipeline failed", map[string]interface{}{
				"source": result.Source,
				"error":  result.Err.Error(),
			})
		} else {
			o.logger.Info("Source pipeline completed", map[string]interface{}{
				"source": result.Source,
			})
		}
	}

	return store, results
}

// capture converts a panicking source pipeline into a captured error
func (o *Orchestrator) capture(source string, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("source %s panicked: %v", source, r)
	}
}
