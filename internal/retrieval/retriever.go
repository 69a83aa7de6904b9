package retrieval

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve"
	readability "github.com/go-shiori/go-readability"
)

// chunkTarget is the soft size cap for one indexed chunk, in bytes.
// Paragraphs are merged up to this size before indexing.
const chunkTarget = 1200

// Chunk is one indexable slice of a reference document.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Index is a BM25 index over a directory of reference documents. It is
// built once at startup and read-only afterwards, so lookups need no lock.
type Index struct {
	bleve        bleve.Index
	chunks       map[string]Chunk
	topK         int
	snippetLimit int
	logger       *log.Logger
}

// BuildIndex walks dir, chunks every .txt, .md and .html file and indexes
// the chunks into an in-memory bleve index.
func BuildIndex(dir string, topK, snippetLimit int, logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[RETRIEVAL] ", log.LstdFlags)
	}
	if topK <= 0 {
		topK = 4
	}
	if snippetLimit <= 0 {
		snippetLimit = 300
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	idx := &Index{
		bleve:        index,
		chunks:       make(map[string]Chunk),
		topK:         topK,
		snippetLimit: snippetLimit,
		logger:       logger,
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		text, err := extractText(path)
		if err != nil {
			logger.Printf("skipping %s: %v", path, err)
			return nil
		}
		if text == "" {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		for i, chunkText := range chunkParagraphs(text) {
			chunk := Chunk{
				ID:     fmt.Sprintf("%s#%d", rel, i),
				Source: rel,
				Text:   chunkText,
			}
			idx.chunks[chunk.ID] = chunk
			if err := index.Index(chunk.ID, chunk); err != nil {
				return fmt.Errorf("failed to index %s: %w", chunk.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs dir %s: %w", dir, err)
	}
	return idx, nil
}

// Len reports how many chunks are indexed.
func (x *Index) Len() int { return len(x.chunks) }

// Retrieve returns the top-K matching snippets joined by blank lines, or an
// empty string when nothing matches.
func (x *Index) Retrieve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(x.chunks) == 0 {
		return "", nil
	}

	q := bleve.NewQueryStringQuery(queryEscape(query))
	req := bleve.NewSearchRequestOptions(q, x.topK, 0, false)
	res, err := x.bleve.SearchInContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	var parts []string
	for _, hit := range res.Hits {
		chunk, ok := x.chunks[hit.ID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", chunk.Source, x.snippet(chunk.Text)))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (x *Index) snippet(s string) string {
	if len(s) <= x.snippetLimit {
		return s
	}
	return s[:x.snippetLimit] + "..."
}

// extractText reads one reference file. HTML goes through readability to
// strip boilerplate; markdown and plain text are used as-is.
func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		article, err := readability.FromReader(f, &url.URL{Scheme: "file", Path: path})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(article.TextContent), nil
	default:
		return "", nil
	}
}

// chunkParagraphs splits text on blank lines and merges consecutive
// paragraphs until the target size is reached.
func chunkParagraphs(text string) []string {
	paras := strings.Split(text, "\n\n")
	var chunks []string
	var cur strings.Builder
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(p) > chunkTarget {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// queryEscape neutralizes bleve query-string syntax so raw user input
// cannot produce a parse error.
func queryEscape(q string) string {
	replacer := strings.NewReplacer(
		"+", " ", "-", " ", "=", " ", "&", " ", "|", " ", ">", " ", "<", " ",
		"!", " ", "(", " ", ")", " ", "{", " ", "}", " ", "[", " ", "]", " ",
		"^", " ", "\"", " ", "~", " ", "*", " ", "?", " ", ":", " ", "\\", " ", "/", " ",
	)
	return strings.TrimSpace(replacer.Replace(q))
}
