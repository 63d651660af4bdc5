package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doc-summary/internal/app"
	"doc-summary/internal/cache"
	"doc-summary/internal/config"
	"doc-summary/internal/extract"
	"doc-summary/internal/llm"
	"doc-summary/internal/logger"
	"doc-summary/internal/notify"
	"doc-summary/internal/prompt"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (extract.Document, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(extract.Document), args.Error(1)
}

func testConfig() config.Config {
	return config.Config{
		LogLevel:       "info",
		GitHubToken:    "test-token",
		Endpoint:       "https://models.github.ai/inference",
		Model:          "openai/gpt-4.1-mini",
		Temperature:    0.7,
		TopP:           1,
		RequestTimeout: time.Minute,
		MaxPromptChars: prompt.DefaultMaxChars,
		InputFiles:     []string{"in.pdf", "in.txt"},
		OutputFile:     "out.java",
		CacheProvider:  "none",
		CacheTTL:       time.Hour,
		NotifyProvider: "none",
	}
}

func newTestDeps(ex app.Extractor, l llm.Client, c cache.Cache, n notify.Notifier) app.Deps {
	log := logger.Discard()
	if ex == nil {
		ex = extract.New(log)
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if n == nil {
		n = notify.NoOp{}
	}
	return app.Deps{
		Config:    testConfig(),
		Log:       log,
		Extractor: ex,
		LLM:       l,
		Cache:     c,
		Notifier:  n,
	}
}

// inWorkdir switches to a fresh directory holding the given files.
func inWorkdir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for name, content := range files {
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}
	return dir
}

func dirEntries(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(".")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunTextFileEndToEnd(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": "Hello world"})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, prompt.Preamble+"\n\nHello world").
		Return("Summary: greeting.", nil).Once()
	mockNotifier := new(notify.MockNotifier)
	mockNotifier.On("Publish", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.Input == "in.txt" && ev.Output == "out.java" && ev.Strategy == "text" && !ev.Cached
	})).Return(nil).Once()

	var out bytes.Buffer
	err := run(context.Background(), newTestDeps(nil, mockLLM, nil, mockNotifier), &out)
	require.NoError(t, err)

	got, err := os.ReadFile("out.java")
	require.NoError(t, err)
	assert.Equal(t, "Summary: greeting.", string(got))
	assert.Equal(t, []string{"in.txt", "out.java"}, dirEntries(t))

	stdout := out.String()
	assert.Contains(t, stdout, "Found input file: in.txt")
	assert.Contains(t, stdout, "Sending to AI...")
	assert.Contains(t, stdout, "Success! Check out.java for the AI response")
	assert.NotContains(t, stdout, "Warning")

	mockLLM.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestRunNoInputFile(t *testing.T) {
	inWorkdir(t, nil)
	mockLLM := new(llm.MockClient)

	var out bytes.Buffer
	err := run(context.Background(), newTestDeps(nil, mockLLM, nil, nil), &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrNoInput)
	assert.Contains(t, err.Error(), "tried: in.pdf, in.txt")
	assert.Contains(t, out.String(), "Error: No input file found. Looking for: in.pdf, in.txt")
	assert.NoFileExists(t, "out.java")
	mockLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestRunFailuresStopBeforeRemoteCall(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		inputs     []string
		setup      func(*mockExtractor)
		wantOutput string
	}{
		{
			name:       "unsupported file type",
			files:      map[string]string{"in.docx": "content"},
			inputs:     []string{"in.docx"},
			wantOutput: "Error: Unsupported file type",
		},
		{
			name:       "empty text file",
			files:      map[string]string{"in.txt": "  \n\t "},
			inputs:     []string{"in.pdf", "in.txt"},
			wantOutput: "Error: Could not read text file",
		},
		{
			name:   "pdf extraction fails",
			files:  map[string]string{"in.pdf": "%PDF-1.4"},
			inputs: []string{"in.pdf", "in.txt"},
			setup: func(e *mockExtractor) {
				e.On("Extract", mock.Anything, "in.pdf").
					Return(extract.Document{}, extract.ErrEmptyContent).Once()
			},
			wantOutput: "Error: Could not extract text from PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inWorkdir(t, tt.files)
			mockLLM := new(llm.MockClient)

			var ex app.Extractor
			mockEx := new(mockExtractor)
			if tt.setup != nil {
				tt.setup(mockEx)
				ex = mockEx
			}
			deps := newTestDeps(ex, mockLLM, nil, nil)
			deps.Config.InputFiles = tt.inputs

			var out bytes.Buffer
			err := run(context.Background(), deps, &out)

			assert.Error(t, err)
			assert.Contains(t, out.String(), tt.wantOutput)
			assert.NoFileExists(t, "out.java")
			mockLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
			mockEx.AssertExpectations(t)
		})
	}
}

func TestRunPDFInputPreferred(t *testing.T) {
	inWorkdir(t, map[string]string{"in.pdf": "%PDF-1.4", "in.txt": "text version"})

	mockEx := new(mockExtractor)
	mockEx.On("Extract", mock.Anything, "in.pdf").
		Return(extract.Document{Path: "in.pdf", Kind: extract.KindPDF, Text: "pdf body", Strategy: "ledongthuc"}, nil).Once()
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, prompt.Preamble+"\n\npdf body").Return("pdf summary", nil).Once()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newTestDeps(mockEx, mockLLM, nil, nil), &out))

	got, err := os.ReadFile("out.java")
	require.NoError(t, err)
	assert.Equal(t, "pdf summary", string(got))
	assert.Contains(t, out.String(), "Reading pdf file: in.pdf")
	mockEx.AssertExpectations(t)
	mockLLM.AssertExpectations(t)
}

func TestRunRemoteFailure(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": "Hello world"})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.New("401 Unauthorized")).Once()
	mockNotifier := new(notify.MockNotifier)

	var out bytes.Buffer
	err := run(context.Background(), newTestDeps(nil, mockLLM, nil, mockNotifier), &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "API request failed: 401 Unauthorized")
	assert.Contains(t, out.String(), "Error: Failed to get AI response")
	assert.NoFileExists(t, "out.java")
	mockLLM.AssertNumberOfCalls(t, "Complete", 1)
	mockNotifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunEmptyCompletionIsFailure(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": "Hello world"})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything).Return("", nil).Once()
	mockCache := new(cache.MockCache)
	mockCache.On("GetCompletion", mock.Anything, mock.Anything).Return("", false, nil).Once()
	mockNotifier := new(notify.MockNotifier)

	var out bytes.Buffer
	err := run(context.Background(), newTestDeps(nil, mockLLM, mockCache, mockNotifier), &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "API request failed: empty completion")
	assert.Contains(t, out.String(), "Error: Failed to get AI response")
	assert.NotContains(t, out.String(), "Success!")
	assert.NoFileExists(t, "out.java")
	mockCache.AssertNotCalled(t, "SetCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunSentinelResponsesAreWrittenNotCached(t *testing.T) {
	for _, sentinel := range []string{llm.NoResponse, llm.EmptyResponse} {
		t.Run(sentinel, func(t *testing.T) {
			inWorkdir(t, map[string]string{"in.txt": "Hello world"})

			mockLLM := new(llm.MockClient)
			mockLLM.On("Complete", mock.Anything, mock.Anything).Return(sentinel, nil).Once()
			mockCache := new(cache.MockCache)
			mockCache.On("GetCompletion", mock.Anything, mock.Anything).Return("", false, nil).Once()

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, mockCache, nil), &out))

			got, err := os.ReadFile("out.java")
			require.NoError(t, err)
			assert.Equal(t, sentinel, string(got))
			mockCache.AssertNotCalled(t, "SetCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRunCache(t *testing.T) {
	text := prompt.Preamble + "\n\nHello world"
	cfg := testConfig()
	key := cache.Key(cfg.Endpoint, cfg.Model, cfg.Temperature, cfg.TopP, text)

	t.Run("hit skips remote call", func(t *testing.T) {
		inWorkdir(t, map[string]string{"in.txt": "Hello world"})

		mockLLM := new(llm.MockClient)
		mockCache := new(cache.MockCache)
		mockCache.On("GetCompletion", mock.Anything, key).Return("cached summary", true, nil).Once()
		mockNotifier := new(notify.MockNotifier)
		mockNotifier.On("Publish", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
			return ev.Cached
		})).Return(nil).Once()

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, mockCache, mockNotifier), &out))

		got, err := os.ReadFile("out.java")
		require.NoError(t, err)
		assert.Equal(t, "cached summary", string(got))
		assert.NotContains(t, out.String(), "Sending to AI...")
		mockLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("miss stores completion", func(t *testing.T) {
		inWorkdir(t, map[string]string{"in.txt": "Hello world"})

		mockLLM := new(llm.MockClient)
		mockLLM.On("Complete", mock.Anything, text).Return("fresh summary", nil).Once()
		mockCache := new(cache.MockCache)
		mockCache.On("GetCompletion", mock.Anything, key).Return("", false, nil).Once()
		mockCache.On("SetCompletion", mock.Anything, key, "fresh summary", cfg.CacheTTL).Return(nil).Once()

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, mockCache, nil), &out))

		mockLLM.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache errors are ignored", func(t *testing.T) {
		inWorkdir(t, map[string]string{"in.txt": "Hello world"})

		mockLLM := new(llm.MockClient)
		mockLLM.On("Complete", mock.Anything, text).Return("fresh summary", nil).Once()
		mockCache := new(cache.MockCache)
		mockCache.On("GetCompletion", mock.Anything, key).Return("", false, errors.New("redis down")).Once()
		mockCache.On("SetCompletion", mock.Anything, key, "fresh summary", cfg.CacheTTL).Return(errors.New("redis down")).Once()

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, mockCache, nil), &out))

		got, err := os.ReadFile("out.java")
		require.NoError(t, err)
		assert.Equal(t, "fresh summary", string(got))
	})
}

func TestRunTruncatesLongDocuments(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": strings.Repeat("lorem ", 3000)})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, prompt.TruncationMarker) &&
			len(p) == prompt.DefaultMaxChars+len(prompt.TruncationMarker)
	})).Return("long summary", nil).Once()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, nil, nil), &out))

	assert.Contains(t, out.String(), "Warning: Content truncated due to length")
	mockLLM.AssertExpectations(t)
}

func TestRunWriteFailure(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": "Hello world"})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything).Return("Summary: greeting.", nil).Once()
	mockNotifier := new(notify.MockNotifier)
	deps := newTestDeps(nil, mockLLM, nil, mockNotifier)
	deps.Config.OutputFile = "missing-dir/out.java"

	var out bytes.Buffer
	err := run(context.Background(), deps, &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "Error: Failed to save response")
	assert.NotContains(t, out.String(), "Success!")
	mockNotifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRunNotifierFailureDoesNotFailRun(t *testing.T) {
	inWorkdir(t, map[string]string{"in.txt": "Hello world"})

	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything).Return("Summary: greeting.", nil).Once()
	mockNotifier := new(notify.MockNotifier)
	mockNotifier.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: timeout")).Once()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newTestDeps(nil, mockLLM, nil, mockNotifier), &out))
	assert.Contains(t, out.String(), "Success! Check out.java for the AI response")
}

func TestRootCmd(t *testing.T) {
	t.Run("missing token refuses to run", func(t *testing.T) {
		inWorkdir(t, map[string]string{"in.txt": "Hello world"})
		t.Setenv("GITHUB_TOKEN", "")

		cmd := newRootCmd()
		cmd.SetArgs(nil)
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))

		assert.Error(t, cmd.Execute())
		assert.NoFileExists(t, "out.java")
	})

	t.Run("positional inputs replace defaults", func(t *testing.T) {
		inWorkdir(t, nil)
		t.Setenv("GITHUB_TOKEN", "test-token")

		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetArgs([]string{"-o", "result.txt", "report.pdf", "notes.txt"})
		cmd.SetOut(&out)
		cmd.SetErr(new(bytes.Buffer))

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Looking for: report.pdf, notes.txt")
		assert.NoFileExists(t, "result.txt")
	})
}
