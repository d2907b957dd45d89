package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/session"
)

const answerTemplate = `You are an assistant that answers ONLY from the provided context.
- If the information is not present in the context, say clearly that you do not have it.
- Answer clearly and concisely.
- When possible, cite the sources at the end.
--------------------
Context:
%s

Question: %s

Answer:`

const summaryTemplate = `You are an assistant that summarizes conversations.
You are given a conversation between a user and an assistant.
Produce a clear summary structured in sections (Context, Key points, Important questions, Next steps).

CONVERSATION:
%s

SUMMARY:`

// Chain is the retrieve-format-prompt-generate pipeline. Ask never fails:
// any backend error is folded into the returned answer text so callers can
// treat every invocation as producing displayable output.
type Chain struct {
	embedder     domain.Embedder
	store        domain.VectorStore
	model        domain.ChatModel
	fallback     domain.Summarizer
	topK         int
	maxSentences int
	userName     string
	botName      string
	log          *zap.Logger
}

// Config assembles a Chain from its collaborators.
type Config struct {
	Embedder            domain.Embedder
	Store               domain.VectorStore
	Model               domain.ChatModel
	FallbackSummarizer  domain.Summarizer
	TopK                int
	MaxSummarySentences int
	UserName            string
	BotName             string
	Logger              *zap.Logger
}

func New(cfg Config) *Chain {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxSummarySentences <= 0 {
		cfg.MaxSummarySentences = 5
	}
	if cfg.UserName == "" {
		cfg.UserName = "You"
	}
	if cfg.BotName == "" {
		cfg.BotName = "Assistant"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Chain{
		embedder:     cfg.Embedder,
		store:        cfg.Store,
		model:        cfg.Model,
		fallback:     cfg.FallbackSummarizer,
		topK:         cfg.TopK,
		maxSentences: cfg.MaxSummarySentences,
		userName:     cfg.UserName,
		botName:      cfg.BotName,
		log:          cfg.Logger,
	}
}

// Ask runs the question through the retrieval chain and returns the answer
// text. Failures come back as "Error: ..." text, never as an error.
func (c *Chain) Ask(ctx context.Context, question string) string {
	answer, err := c.invoke(ctx, question)
	if err != nil {
		c.log.Warn("chain invocation failed", zap.String("question", question), zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return answer
}

func (c *Chain) invoke(ctx context.Context, question string) (string, error) {
	vec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embedding question: %w", err)
	}
	results, err := c.store.Search(ctx, vec, c.topK)
	if err != nil {
		return "", fmt.Errorf("searching index: %w", err)
	}
	prompt := fmt.Sprintf(answerTemplate, formatContext(results), question)
	answer, err := c.model.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// formatContext renders retrieved chunks as "[source] text" blocks, the
// shape the answer template expects.
func formatContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "(no indexed documents matched this question)"
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		source := r.Chunk.Source
		if source == "" {
			source = "unknown source"
		}
		blocks = append(blocks, fmt.Sprintf("[%s] %s", source, r.Chunk.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// Summarize produces a structured summary of a conversation. When the chat
// model is unreachable the local frequency summarizer answers instead.
func (c *Chain) Summarize(ctx context.Context, history []session.Message) string {
	if len(history) == 0 {
		return "There are no messages in this conversation yet."
	}
	transcript := c.transcript(history)
	out, err := c.model.Complete(ctx, fmt.Sprintf(summaryTemplate, transcript))
	if err == nil {
		return strings.TrimSpace(out)
	}
	c.log.Warn("summary model failed, using local summarizer", zap.Error(err))
	if c.fallback != nil {
		if local, ferr := c.fallback.Summarize(transcript, c.maxSentences); ferr == nil {
			return local
		}
	}
	return fmt.Sprintf("Error: %v", err)
}

func (c *Chain) transcript(history []session.Message) string {
	var b strings.Builder
	for _, m := range history {
		speaker := c.botName
		if m.Role == session.RoleUser {
			speaker = c.userName
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Stats reports the contents of the underlying index.
func (c *Chain) Stats(ctx context.Context) (domain.Stats, error) {
	return c.store.Stats(ctx)
}
