// Package extract locates an input document and turns it into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the document format, decided by file extension.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
)

var (
	ErrNoInput         = errors.New("no input file found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyContent    = errors.New("no text content")
)

// NotFoundError lists every candidate that was tried.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s, tried: %s", ErrNoInput, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNoInput }

// Document is the text extracted from one input file.
type Document struct {
	Path     string
	Kind     Kind
	Text     string
	Strategy string
}

// Locate returns the first candidate that exists on disk.
func Locate(candidates []string) (string, error) {
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	tried := make([]string, len(candidates))
	copy(tried, candidates)
	return "", &NotFoundError{Tried: tried}
}

// KindOf maps a file extension to a Kind.
func KindOf(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return KindText, nil
	case ".pdf":
		return KindPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// Extractor reads documents, using an ordered list of strategies for PDFs.
type Extractor struct {
	log        *slog.Logger
	strategies []Strategy
	pageCount  func(path string) (int, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the default PDF strategies.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = strategies
	}
}

// New builds an Extractor with tabula first and ledongthuc/pdf as fallback.
func New(log *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		log:        log,
		strategies: DefaultStrategies(log),
		pageCount:  pdfPageCount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract dispatches on the file extension and returns trimmed text.
func (e *Extractor) Extract(ctx context.Context, path string) (Document, error) {
	kind, err := KindOf(path)
	if err != nil {
		return Document{}, err
	}
	log := e.log.With("path", path, "kind", kind)
	log.Debug("extracting document")

	switch kind {
	case KindText:
		text, err := readText(path)
		if err != nil {
			return Document{}, err
		}
		log.Info("text file read", "chars", len([]rune(text)))
		return Document{Path: path, Kind: kind, Text: text, Strategy: "text"}, nil
	case KindPDF:
		return e.extractPDF(ctx, log, path)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
}
