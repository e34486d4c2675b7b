package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"dotwatch/pkg/chunker"
)

// fakeClient scripts per-call outcomes: failOn marks map calls (by
// chunk order, 1-based) that fail, failCombine fails the reduce call.
type fakeClient struct {
	calls       int
	failOn      map[int]bool
	failCombine bool
	combined    string
	prompts     []string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if strings.HasPrefix(prompt, "The following are partial summaries") {
		if f.failCombine {
			return "", errors.New("combine call failed")
		}
		if f.combined != "" {
			return f.combined, nil
		}
		return "- combined summary", nil
	}
	f.calls++
	if f.failOn[f.calls] {
		return "", errors.New("map call failed")
	}
	return fmt.Sprintf("- partial %d", f.calls), nil
}

func (f *fakeClient) Name() string { return "fake" }

func newTestSummarizer(c Client) *Summarizer {
	// Tiny windows so short fixtures produce several chunks.
	return New(c, 10, 2, nil)
}

func TestSummarizePartialMapFailure(t *testing.T) {
	// 30 runes with size=10 overlap=2 -> chunks at 0, 8, 16, 24: 4 chunks.
	text := strings.Repeat("abcde", 6)
	fake := &fakeClient{failOn: map[int]bool{2: true}}

	got := newTestSummarizer(fake).Summarize(context.Background(), text)
	if got != "- combined summary" {
		t.Errorf("Summarize() = %q, want combined summary despite one failed chunk", got)
	}

	// The combine prompt must carry only the surviving partials.
	combine := fake.prompts[len(fake.prompts)-1]
	if strings.Contains(combine, "partial 2") {
		t.Error("failed chunk leaked into the combine prompt")
	}
	for _, want := range []string{"partial 1", "partial 3", "partial 4"} {
		if !strings.Contains(combine, want) {
			t.Errorf("combine prompt missing %q", want)
		}
	}
}

func TestSummarizeAllMapCallsFail(t *testing.T) {
	fake := &fakeClient{failOn: map[int]bool{1: true, 2: true, 3: true, 4: true}}
	if got := newTestSummarizer(fake).Summarize(context.Background(), strings.Repeat("x", 30)); got != "" {
		t.Errorf("Summarize() = %q, want empty when every map call fails", got)
	}
}

func TestSummarizeCombineFailureYieldsEmpty(t *testing.T) {
	fake := &fakeClient{failCombine: true}
	got := newTestSummarizer(fake).Summarize(context.Background(), strings.Repeat("x", 30))
	if got != "" {
		t.Errorf("Summarize() = %q, want empty (no partial fallback) when reduce fails", got)
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	fake := &fakeClient{}
	if got := newTestSummarizer(fake).Summarize(context.Background(), "   \n"); got != "" {
		t.Errorf("Summarize() = %q, want empty for blank text", got)
	}
	if len(fake.prompts) != 0 {
		t.Error("blank text still triggered completion calls")
	}
}

func TestSummarizeDisabledBackend(t *testing.T) {
	s := New(nil, 0, 0, nil)
	if s.Enabled() {
		t.Error("Enabled() = true for nil client")
	}
	if got := s.Summarize(context.Background(), "some text"); got != "" {
		t.Errorf("Summarize() = %q, want empty when disabled", got)
	}
}

func TestNewOverlapCoercion(t *testing.T) {
	tests := []struct {
		name    string
		overlap int
		want    int
	}{
		{"explicit zero kept", 0, 0},
		{"negative falls back", -1, chunker.DefaultOverlap},
		{"positive kept", 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := New(&fakeClient{}, 6000, tt.overlap, nil); s.overlap != tt.want {
				t.Errorf("New() overlap = %d, want %d", s.overlap, tt.want)
			}
		})
	}
}

func TestNewOverlapZeroProducesDisjointChunks(t *testing.T) {
	fake := &fakeClient{}
	// 30 runes with size=10 overlap=0 -> exactly 3 map calls.
	New(fake, 10, 0, nil).Summarize(context.Background(), strings.Repeat("x", 30))
	if fake.calls != 3 {
		t.Errorf("map calls = %d, want 3 disjoint chunks", fake.calls)
	}
}

func TestAnthropicDefaultModel(t *testing.T) {
	if c := NewAnthropicClient("sk-ant-test", ""); c.model != anthropic.ModelClaude3_5HaikuLatest {
		t.Errorf("default model = %q, want %q", c.model, anthropic.ModelClaude3_5HaikuLatest)
	}
	if c := NewAnthropicClient("sk-ant-test", "claude-sonnet-4-0"); c.model != anthropic.Model("claude-sonnet-4-0") {
		t.Errorf("model override = %q, want claude-sonnet-4-0", c.model)
	}
}

func TestNewClientSelection(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		apiKey   string
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{"openai with key", "openai", "sk-test", false, false, "openai"},
		{"anthropic with key", "anthropic", "sk-ant-test", false, false, "anthropic"},
		{"openai without key disables", "openai", "", true, false, ""},
		{"none", "none", "sk-test", true, false, ""},
		{"empty backend", "", "sk-test", true, false, ""},
		{"unknown backend", "gemini", "sk-test", true, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.backend, tt.apiKey, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (client == nil) != tt.wantNil {
				t.Fatalf("NewClient() nil = %v, want %v", client == nil, tt.wantNil)
			}
			if client != nil && client.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", client.Name(), tt.wantName)
			}
		})
	}
}
