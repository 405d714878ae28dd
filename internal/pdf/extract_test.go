package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractFile(t *testing.T) {
	texts, err := ExtractFile(filepath.Join("testdata", "manuscript.pdf"))
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}

	if texts.DOI != "10.5555/revrec.2024.001" {
		t.Errorf("DOI = %q", texts.DOI)
	}

	if !texts.HasBest() {
		t.Fatal("expected abstract and introduction to be found")
	}
	if !strings.HasPrefix(texts.Best, "Abstract") {
		t.Errorf("best text should start at the abstract, got %q", texts.Best[:20])
	}
	if !strings.Contains(texts.Best, "\nIntroduction") {
		t.Error("best text should contain the introduction")
	}
	if strings.Contains(texts.Best, "Every paper is converted") {
		t.Error("best text should stop before the methods section")
	}

	if !strings.Contains(texts.Full, "Every paper is converted to plain text") {
		t.Error("full text should keep the body")
	}
	if strings.Contains(texts.Full, "Prior work on matching") {
		t.Error("full text should drop the references")
	}
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
