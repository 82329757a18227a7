package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/foreman/internal/api"
	"github.com/ShayCichocki/foreman/pkg/models"
)

// defaultMaxSteps bounds a worker's internal message loop when the spec
// doesn't set one.
const defaultMaxSteps = 30

// APIWorker is a Worker backed by direct Anthropic API calls. Each worker
// keeps its own message history, so its working memory stays private to it.
type APIWorker struct {
	client *api.Client
	spec   models.WorkerSpec

	mu       sync.Mutex
	messages []anthropic.MessageParam
	tokens   int64
}

// NewAPIWorker creates a worker for the given spec using the shared client.
func NewAPIWorker(client *api.Client, spec models.WorkerSpec) *APIWorker {
	if spec.MaxSteps <= 0 {
		spec.MaxSteps = defaultMaxSteps
	}
	return &APIWorker{
		client: client,
		spec:   spec,
	}
}

// Run appends the context block (if any) and the task to the worker's
// conversation, then drives the message loop to completion.
func (w *APIWorker) Run(ctx context.Context, task string, extra map[string]string) (string, error) {
	w.mu.Lock()
	if len(extra) > 0 {
		w.messages = append(w.messages,
			anthropic.NewUserMessage(anthropic.NewTextBlock(FormatContext("Context", extra))))
	}
	w.messages = append(w.messages,
		anthropic.NewUserMessage(anthropic.NewTextBlock(task)))
	messages := make([]anthropic.MessageParam, len(w.messages))
	copy(messages, w.messages)
	w.mu.Unlock()

	var output string
	for step := 0; step < w.spec.MaxSteps; step++ {
		resp, err := w.client.SDK().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     w.client.Model(),
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: w.spec.SystemPrompt},
			},
			Messages: messages,
		})
		if err != nil {
			return "", &Failure{WorkerName: w.spec.Name, Err: err}
		}

		w.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		w.mu.Lock()
		w.tokens += resp.Usage.InputTokens + resp.Usage.OutputTokens
		w.mu.Unlock()

		var assistantBlocks []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
				output += variant.Text
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))
			}
		}
		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))

		if resp.StopReason == anthropic.StopReasonEndTurn {
			w.mu.Lock()
			w.messages = messages
			w.mu.Unlock()
			return output, nil
		}
	}

	return "", &Failure{
		WorkerName: w.spec.Name,
		Err:        fmt.Errorf("max steps (%d) reached", w.spec.MaxSteps),
	}
}

// Status returns the worker's message count, workspace, and token usage.
func (w *APIWorker) Status() models.WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.WorkerStatus{
		MessageCount: len(w.messages),
		Workspace:    w.spec.Workspace,
		TokensUsed:   w.tokens,
	}
}

// APIFactory creates APIWorker instances sharing one Anthropic client.
type APIFactory struct {
	// Client is the shared Anthropic client. Required.
	Client *api.Client
}

// NewWorker implements Factory.
func (f *APIFactory) NewWorker(spec models.WorkerSpec) (Worker, error) {
	if f.Client == nil {
		return nil, fmt.Errorf("API client is required")
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("worker spec has no name")
	}
	return NewAPIWorker(f.Client, spec), nil
}

// Compile-time interface checks.
var (
	_ Worker  = (*APIWorker)(nil)
	_ Factory = (*APIFactory)(nil)
)
