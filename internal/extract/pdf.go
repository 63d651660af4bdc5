package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/tsawler/tabula"
)

// pdfcpu otherwise installs a config directory under the user's config home
// on first use and exits the process if it cannot.
func init() {
	model.ConfigPath = "disable"
}

// Strategy converts a PDF file into plain text.
type Strategy struct {
	Name    string
	Extract func(path string) (string, error)
}

// DefaultStrategies returns the PDF strategies in the order they are tried.
func DefaultStrategies(log *slog.Logger) []Strategy {
	return []Strategy{
		{Name: "tabula", Extract: func(path string) (string, error) {
			return extractTabula(log, path)
		}},
		{Name: "ledongthuc", Extract: extractPages},
	}
}

// extractPDF tries each strategy in order and keeps the first non-empty result.
func (e *Extractor) extractPDF(ctx context.Context, log *slog.Logger, path string) (Document, error) {
	if e.pageCount != nil {
		if pages, err := e.pageCount(path); err != nil {
			log.Warn("pdf page count failed", "err", err)
		} else {
			log.Info("pdf opened", "pages", pages)
		}
	}

	var errs []error
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		text, err := run(s, path)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				log.Info("pdf text extracted", "strategy", s.Name, "chars", len([]rune(text)))
				return Document{Path: path, Kind: KindPDF, Text: text, Strategy: s.Name}, nil
			}
			err = ErrEmptyContent
		}
		log.Warn("pdf strategy failed, trying next", "strategy", s.Name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return Document{}, fmt.Errorf("%s: %w", path, errors.Join(append([]error{ErrEmptyContent}, errs...)...))
}

// run calls the strategy and turns a panic inside a PDF library into an error.
func run(s Strategy, path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.Extract(path)
}

func extractTabula(log *slog.Logger, path string) (string, error) {
	text, warnings, err := tabula.Open(path).Text()
	logTabulaWarnings(log, path, warnings)
	return text, err
}

func logTabulaWarnings(log *slog.Logger, path string, warnings []tabula.Warning) {
	if len(warnings) == 0 {
		return
	}
	log.Warn("tabula reported warnings", "path", path, "count", len(warnings),
		"warnings", tabula.FormatWarnings(warnings))
}

// extractPages concatenates the plain text of every page in order.
func extractPages(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNum, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(f, conf)
}
