package extract

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/itsjustRohitch/ResourceScout/models"
)

type fakeVision struct {
	text string
	err  error
	mime string
}

func (f *fakeVision) Analyze(ctx context.Context, query, docContext string) (*models.IntentDecision, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeVision) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeVision) Transcribe(ctx context.Context, mime string, data []byte) (string, error) {
	f.mime = mime
	return f.text, f.err
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name string
		doc  models.Document
		want string
	}{
		{"pdf magic", models.Document{Name: "x.bin", Data: []byte("%PDF-1.4")}, "application/pdf"},
		{"png magic", models.Document{Name: "x.bin", Data: []byte{0x89, 'P', 'N', 'G', 0x0D}}, "image/png"},
		{"jpeg magic", models.Document{Name: "x.bin", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}, "image/jpeg"},
		{"pdf extension", models.Document{Name: "notes.PDF", Data: []byte("no magic")}, "application/pdf"},
		{"jpg extension", models.Document{Name: "scan.jpg", Data: []byte("no magic")}, "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffMIME(tt.doc)
			if err != nil {
				t.Fatalf("SniffMIME: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffMIMEUnsupported(t *testing.T) {
	_, err := SniffMIME(models.Document{Name: "notes.txt", Data: []byte("plain text")})
	if !errors.Is(err, models.ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractTranscribes(t *testing.T) {
	llm := &fakeVision{text: "  Lecture 3: Graph traversal.  "}
	e := New(llm, 1<<20, nil, log.New(io.Discard, "", 0))

	content, err := e.Extract(context.Background(), models.Document{Name: "lec3.pdf", Data: []byte("%PDF-1.7")})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if llm.mime != "application/pdf" {
		t.Fatalf("transcribed with mime %q", llm.mime)
	}
	if content.Name != "lec3.pdf" || content.Text != "Lecture 3: Graph traversal." {
		t.Fatalf("unexpected content: %+v", content)
	}
	if content.ExtractedAt.IsZero() {
		t.Fatal("ExtractedAt not set")
	}
}

func TestExtractRejectsOversized(t *testing.T) {
	e := New(&fakeVision{}, 8, nil, log.New(io.Discard, "", 0))
	_, err := e.Extract(context.Background(), models.Document{Name: "big.pdf", Data: []byte("%PDF-1.7 too large")})
	if err == nil || !strings.Contains(err.Error(), "upload limit") {
		t.Fatalf("err = %v, want upload limit error", err)
	}
}

func TestExtractWrapsProviderError(t *testing.T) {
	e := New(&fakeVision{err: errors.New("vision quota exhausted")}, 0, nil, log.New(io.Discard, "", 0))
	_, err := e.Extract(context.Background(), models.Document{Name: "lec.pdf", Data: []byte("%PDF-1.7")})
	if err == nil || !strings.Contains(err.Error(), "lec.pdf") {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}
