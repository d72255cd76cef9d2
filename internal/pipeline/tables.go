package pipeline

import (
	"time"

	"starlift/pkg/models"
)

const capturedAtLayout = time.RFC3339

// Assemble flattens the run's entity store into one table per logical
// table name, rows in first-seen order. Empty collections produce no
// table at all.
func Assemble(store *RunStore) models.TableSet {
	tables := models.TableSet{}

	addDimensionTable(tables, models.TableCategory, store.Products.Categories, false)
	addDimensionTable(tables, models.TableBookCategory, store.Books.Categories, false)
	addDimensionTable(tables, models.TableAuthor, store.Books.Authors, false)
	addDimensionTable(tables, models.TableDirector, store.Films.Directors, false)
	addDimensionTable(tables, models.TableActor, store.Films.Actors, false)
	addDimensionTable(tables, models.TableAwardCategory, store.Films.Awards, true)

	if len(store.Products.Products) > 0 {
		table := &models.Table{
			Name:    models.TableProduct,
			Columns: []string{"id", "name", "price", "category_code", "description", "link_id", "captured_at"},
		}
		for _, p := range store.Products.Products {
			table.Rows = append(table.Rows, models.Row{
				"id":            p.ID,
				"name":          p.Name,
				"price":         p.Price,
				"category_code": p.CategoryCode,
				"description":   p.Description,
				"link_id":       p.LinkID,
				"captured_at":   p.CapturedAt.Format(capturedAtLayout),
			})
		}
		tables[table.Name] = table
	}

	if len(store.Books.Books) > 0 {
		table := &models.Table{
			Name:    models.TableBook,
			Columns: []string{"id", "title", "price", "author_code", "availability", "rating", "description", "link_id", "captured_at"},
		}
		for _, b := range store.Books.Books {
			table.Rows = append(table.Rows, models.Row{
				"id":           b.ID,
				"title":        b.Title,
				"price":        b.Price,
				"author_code":  b.AuthorCode,
				"availability": b.Availability,
				"rating":       b.Rating,
				"description":  b.Description,
				"link_id":      b.LinkID,
				"captured_at":  b.CapturedAt.Format(capturedAtLayout),
			})
		}
		tables[table.Name] = table
	}

	if len(store.Films.Films) > 0 {
		table := &models.Table{
			Name:    models.TableFilm,
			Columns: []string{"id", "title", "year", "award_code", "director_code", "captured_at"},
		}
		for _, f := range store.Films.Films {
			table.Rows = append(table.Rows, models.Row{
				"id":            f.ID,
				"title":         f.Title,
				"year":          f.Year,
				"award_code":    f.AwardCode,
				"director_code": f.DirectorCode,
				"captured_at":   f.CapturedAt.Format(capturedAtLayout),
			})
		}
		tables[table.Name] = table
	}

	if len(store.Books.CategoryBridges) > 0 {
		table := &models.Table{
			Name:    models.TableBookCategoryBridge,
			Columns: []string{"book_id", "category_code"},
		}
		for _, b := range store.Books.CategoryBridges {
			table.Rows = append(table.Rows, models.Row{
				"book_id":       b.BookID,
				"category_code": b.CategoryCode,
			})
		}
		tables[table.Name] = table
	}

	if len(store.Films.ActorBridges) > 0 {
		table := &models.Table{
			Name:    models.TableFilmActorBridge,
			Columns: []string{"film_id", "actor_code", "role"},
		}
		for _, b := range store.Films.ActorBridges {
			row := models.Row{
				"film_id":    b.FilmID,
				"actor_code": b.ActorCode,
				"role":       "",
			}
			if b.Role != nil {
				row["role"] = *b.Role
			}
			table.Rows = append(table.Rows, row)
		}
		tables[table.Name] = table
	}

	if len(store.Films.AwardBridges) > 0 {
		table := &models.Table{
			Name:    models.TableFilmAwardBridge,
			Columns: []string{"film_id", "award_code", "award_year"},
		}
		for _, b := range store.Films.AwardBridges {
			table.Rows = append(table.Rows, models.Row{
				"film_id":    b.FilmID,
				"award_code": b.AwardCode,
				"award_year": b.AwardYear,
			})
		}
		tables[table.Name] = table
	}

	if len(store.Products.Variants) > 0 {
		table := &models.Table{
			Name:    models.TableProductVariant,
			Columns: []string{"id", "product_id", "size", "flavor", "price_modifier"},
		}
		for _, v := range store.Products.Variants {
			table.Rows = append(table.Rows, models.Row{
				"id":             v.ID,
				"product_id":     v.ProductID,
				"size":           v.Size,
				"flavor":         v.Flavor,
				"price_modifier": v.PriceModifier,
			})
		}
		tables[table.Name] = table
	}

	if len(store.Products.Reviews) > 0 {
		table := &models.Table{
			Name:    models.TableProductReview,
			Columns: []string{"id", "product_id", "rating", "text", "reviewer", "reviewed_at"},
		}
		for _, r := range store.Products.Reviews {
			row := models.Row{
				"id":          r.ID,
				"product_id":  r.ProductID,
				"rating":      r.Rating,
				"text":        r.Text,
				"reviewer":    r.Reviewer,
				"reviewed_at": "",
			}
			if r.ReviewedAt != nil {
				row["reviewed_at"] = r.ReviewedAt.Format(capturedAtLayout)
			}
			table.Rows = append(table.Rows, row)
		}
		tables[table.Name] = table
	}

	if len(store.Products.Similar) > 0 {
		table := &models.Table{
			Name:    models.TableSimilarProduct,
			Columns: []string{"id", "product_id", "similar_product_id", "score"},
		}
		for _, sp := range store.Products.Similar {
			row := models.Row{
				"id":                 sp.ID,
				"product_id":         sp.ProductID,
				"similar_product_id": sp.SimilarProductID,
				"score":              "",
			}
			if sp.Score != nil {
				row["score"] = *sp.Score
			}
			table.Rows = append(table.Rows, row)
		}
		tables[table.Name] = table
	}

	return tables
}

func addDimensionTable(tables models.TableSet, name string, dim *Dimension, withType bool) {
	if dim == nil || dim.Len() == 0 {
		return
	}

	columns := []string{"code", "name"}
	if withType {
		columns = append(columns, "type")
	}

	table := &models.Table{Name: name, Columns: columns}
	for _, entry := range dim.Entries() {
		row := models.Row{
			"code": entry.Code,
			"name": entry.Name,
		}
		if withType {
			row["type"] = ""
			if entry.Type != nil {
				row["type"] = *entry.Type
			}
		}
		table.Rows = append(table.Rows, row)
	}
	tables[name] = table
}
