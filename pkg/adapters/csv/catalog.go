// Package csv implements ports.MovieCatalog over the three CSV files of the
// film dataset (movies_metadata.csv, keywords.csv and credits.csv).
//
// The files are joined by row position, not by their id column: row N of the
// keywords and credits tables belongs to row N of the metadata table.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
)

// File names inside a dataset directory.
const (
	MetadataFile = "movies_metadata.csv"
	KeywordsFile = "keywords.csv"
	CreditsFile  = "credits.csv"
)

// Record is one dataset row with its joined columns.
type Record struct {
	Row      domain.MovieRow
	Keywords string
	Cast     string
}

// Catalog is an in-memory, read-only view of the dataset. It is safe for
// concurrent readers once loaded.
type Catalog struct {
	rows     []domain.MovieRow
	keywords []string
	cast     []string
}

// Load reads the dataset from dir.
func Load(dir string) (*Catalog, error) {
	open := func(name string) (*os.File, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		return f, nil
	}

	meta, err := open(MetadataFile)
	if err != nil {
		return nil, err
	}
	defer meta.Close()
	kw, err := open(KeywordsFile)
	if err != nil {
		return nil, err
	}
	defer kw.Close()
	cr, err := open(CreditsFile)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	return Read(meta, kw, cr)
}

// Read builds a Catalog from the three tables.
func Read(metadata, keywords, credits io.Reader) (*Catalog, error) {
	cols, err := readColumns(metadata, "title", "genres")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetadataFile, err)
	}
	kwCols, err := readColumns(keywords, "keywords")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeywordsFile, err)
	}
	castCols, err := readColumns(credits, "cast")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CreditsFile, err)
	}

	c := &Catalog{
		rows:     make([]domain.MovieRow, len(cols)),
		keywords: make([]string, len(kwCols)),
		cast:     make([]string, len(castCols)),
	}
	for i, rec := range cols {
		c.rows[i] = domain.MovieRow{
			ID:              i,
			Title:           rec[0],
			NormalizedTitle: domain.NormalizeText(rec[0]),
			Genres:          rec[1],
		}
	}
	for i, rec := range kwCols {
		c.keywords[i] = rec[0]
	}
	for i, rec := range castCols {
		c.cast[i] = rec[0]
	}
	return c, nil
}

// readColumns returns, for every data row, the values of the named columns.
func readColumns(r io.Reader, names ...string) ([][]string, error) {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = -1
		for j, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(out)+1, err)
		}
		vals := make([]string, len(idx))
		for i, j := range idx {
			if j < len(rec) {
				vals[i] = rec[j]
			}
		}
		out = append(out, vals)
	}
}

// Len is the number of metadata rows.
func (c *Catalog) Len() int { return len(c.rows) }

// Records returns every row with its joined columns, in dataset order.
// Missing joined values are empty strings.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.rows))
	for i, row := range c.rows {
		out[i].Row = row
		if i < len(c.keywords) {
			out[i].Keywords = c.keywords[i]
		}
		if i < len(c.cast) {
			out[i].Cast = c.cast[i]
		}
	}
	return out
}

// FindTitles scans the metadata table in order.
func (c *Catalog) FindTitles(ctx context.Context, q domain.TitleQuery) ([]domain.MovieRow, error) {
	var out []domain.MovieRow
	for i, row := range c.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if q.Matches(row.NormalizedTitle) {
			out = append(out, row)
		}
	}
	return out, nil
}

// Keywords returns the raw keywords field of a row.
func (c *Catalog) Keywords(_ context.Context, rowID int) (string, error) {
	return lookup(c.keywords, rowID)
}

// Cast returns the raw cast field of a row.
func (c *Catalog) Cast(_ context.Context, rowID int) (string, error) {
	return lookup(c.cast, rowID)
}

func lookup(col []string, rowID int) (string, error) {
	if rowID < 0 || rowID >= len(col) {
		return "", fmt.Errorf("row %d: %w", rowID, ports.ErrRowNotFound)
	}
	return col[rowID], nil
}

var _ ports.MovieCatalog = (*Catalog)(nil)
