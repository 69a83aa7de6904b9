package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBuildIndexAndRetrieve(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "pedagogy.txt", "Flipped classroom pedagogy moves lectures out of class.\n\nPeer instruction improves engagement in large lectures.")
	writeDoc(t, dir, "funding.md", "Funding proposals must include an evaluation plan with measurable success criteria.")

	idx, err := BuildIndex(dir, 4, 300, nil)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	if idx.Len() == 0 {
		t.Fatalf("no chunks indexed")
	}

	out, err := idx.Retrieve(context.Background(), "flipped classroom")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !strings.Contains(out, "Flipped classroom") {
		t.Fatalf("relevant snippet not returned: %q", out)
	}
	if !strings.Contains(out, "[pedagogy.txt") {
		t.Fatalf("source attribution missing: %q", out)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "some content")
	idx, err := BuildIndex(dir, 4, 300, nil)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	out, err := idx.Retrieve(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty context for blank query, got %q", out)
	}
}

func TestRetrieveSpecialCharacters(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "budget planning for pilot rollout")
	idx, err := BuildIndex(dir, 4, 300, nil)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	if _, err := idx.Retrieve(context.Background(), `budget +& (rollout?) "pilot"`); err != nil {
		t.Fatalf("special characters must not break the query: %v", err)
	}
}

func TestChunkParagraphsMergesToTarget(t *testing.T) {
	short := "one paragraph"
	chunks := chunkParagraphs(short)
	if len(chunks) != 1 || chunks[0] != short {
		t.Fatalf("single paragraph mishandled: %v", chunks)
	}

	long := strings.Repeat("word ", 400) // well past the chunk target
	chunks = chunkParagraphs(long + "\n\n" + long)
	if len(chunks) != 2 {
		t.Fatalf("oversized paragraphs should not merge, got %d chunks", len(chunks))
	}
}
