package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guildbot-ai/guildbot/pkg/config"
	"github.com/guildbot-ai/guildbot/pkg/gate"
	"github.com/guildbot-ai/guildbot/pkg/ledger"
	"github.com/guildbot-ai/guildbot/pkg/llm"
	"github.com/guildbot-ai/guildbot/pkg/models"
)

// maxReplyChars is the chat platform's message-length ceiling. A final
// buffer over this limit gets one summarization pass before delivery.
const maxReplyChars = 2000

const summaryInstruction = "Compress the user's text to under 2000 characters while preserving all key information. Reply with the compressed text only."

// Gate authorizes a request before any model call is made.
type Gate interface {
	Authorize(userID string, roles []string, day string) error
}

// SpendRecorder accumulates per-user spend.
type SpendRecorder interface {
	RecordSpend(day, userID string, usd float64) error
}

// Memory supplies and records conversation context.
type Memory interface {
	Append(conversationID, role, content string)
	Window(conversationID string) []models.Turn
}

// Coster converts token usage into a USD cost.
type Coster interface {
	Cost(model string, usage models.Usage) float64
}

// UsageRecorder stores per-call usage history. Optional.
type UsageRecorder interface {
	Record(ctx context.Context, rec models.UsageRecord) error
}

// Deliverer emits the final reply or a fixed status message.
type Deliverer interface {
	Deliver(ctx context.Context, conversationID, text string) error
	Notify(ctx context.Context, conversationID, text string) error
}

// Options controls the completion cycle.
type Options struct {
	SystemPrompt     string
	Model            string
	SummaryModel     string
	MaxOutputTokens  int
	MaxContinuations int
	ContinuePrompt   string
	RequestTimeout   time.Duration
	Replies          config.RepliesConfig
}

// Orchestrator drives the request/response cycle against the AI provider:
// budget gate, prompt assembly, the call/continue loop, cost accounting
// after every call, and summarization of over-length output.
type Orchestrator struct {
	opts    Options
	gate    Gate
	memory  Memory
	coster  Coster
	spend   SpendRecorder
	usage   UsageRecorder
	client  llm.Client
	deliver Deliverer
	log     *slog.Logger
}

// New wires an Orchestrator. usage may be nil when history is disabled.
func New(opts Options, g Gate, m Memory, c Coster, s SpendRecorder, u UsageRecorder, client llm.Client, d Deliverer, log *slog.Logger) *Orchestrator {
	if opts.ContinuePrompt == "" {
		opts.ContinuePrompt = "Continue."
	}
	if opts.SummaryModel == "" {
		opts.SummaryModel = opts.Model
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		opts:    opts,
		gate:    g,
		memory:  m,
		coster:  c,
		spend:   s,
		usage:   u,
		client:  client,
		deliver: d,
		log:     log,
	}
}

// Request is one inbound mention, with platform markup already stripped.
type Request struct {
	ConversationID string
	UserID         string
	Roles          []string
	Content        string
}

// Respond runs the full exchange for one inbound mention. All failures are
// absorbed here: the user always gets a reply, and the returned error exists
// only for the caller's logging.
func (o *Orchestrator) Respond(ctx context.Context, req Request) error {
	log := o.log.With("run_id", uuid.NewString(), "conversation_id", req.ConversationID, "user_id", req.UserID)

	if err := o.gate.Authorize(req.UserID, req.Roles, ledger.Today()); err != nil {
		log.Info("request denied by budget gate", "reason", err.Error())
		msg := o.opts.Replies.BudgetExhausted
		if errors.Is(err, gate.ErrUserLimitReached) {
			msg = o.opts.Replies.UserLimitReached
		}
		return o.deliver.Notify(ctx, req.ConversationID, msg)
	}

	input := strings.TrimSpace(req.Content)

	window := o.memory.Window(req.ConversationID)
	messages := make([]models.Turn, 0, len(window)+2)
	messages = append(messages, models.Turn{Role: models.RoleSystem, Content: o.opts.SystemPrompt})
	messages = append(messages, window...)
	messages = append(messages, models.Turn{Role: models.RoleUser, Content: input})

	var full strings.Builder
	continuations := 0
	truncated := false

	for {
		res, err := o.call(ctx, log, req, o.opts.Model, messages)
		if err != nil {
			log.Error("completion call failed", "error", err.Error())
			return o.deliver.Notify(ctx, req.ConversationID, o.opts.Replies.Failure)
		}

		if res.FinishReason == models.FinishContentFilter {
			log.Info("completion rejected by content filter")
			return o.deliver.Notify(ctx, req.ConversationID, o.opts.Replies.ContentRejected)
		}

		chunk := strings.TrimSpace(res.Text)
		full.WriteString(chunk)

		if res.FinishReason != models.FinishLength {
			break
		}
		if continuations >= o.opts.MaxContinuations {
			log.Warn("continuation limit reached, delivering partial reply", "continuations", continuations)
			truncated = true
			break
		}
		continuations++
		messages = append(messages,
			models.Turn{Role: models.RoleAssistant, Content: chunk},
			models.Turn{Role: models.RoleUser, Content: o.opts.ContinuePrompt},
		)
	}

	reply := full.String()
	if strings.TrimSpace(reply) == "" {
		log.Warn("empty completion result")
		return o.deliver.Notify(ctx, req.ConversationID, o.opts.Replies.EmptyResponse)
	}

	if len(reply) > maxReplyChars {
		summarized, err := o.summarize(ctx, log, req, reply)
		if err != nil {
			log.Error("summarization failed", "error", err.Error())
			return o.deliver.Notify(ctx, req.ConversationID, o.opts.Replies.Failure)
		}
		reply = summarized
	}

	if truncated && o.opts.Replies.Truncated != "" {
		reply += "\n\n" + o.opts.Replies.Truncated
	}

	o.memory.Append(req.ConversationID, models.RoleUser, input)
	o.memory.Append(req.ConversationID, models.RoleAssistant, reply)

	return o.deliver.Deliver(ctx, req.ConversationID, reply)
}

// call issues one completion request and charges its cost, regardless of
// the outcome the caller makes of the result. Even a reply that is later
// discarded as a policy rejection is billed by the provider.
func (o *Orchestrator) call(ctx context.Context, log *slog.Logger, req Request, model string, messages []models.Turn) (llm.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	res, err := o.client.Complete(callCtx, llm.Request{
		Model:           model,
		Messages:        messages,
		MaxOutputTokens: o.opts.MaxOutputTokens,
	})
	if err != nil {
		return llm.Result{}, err
	}

	cost := o.coster.Cost(model, res.Usage)
	day := ledger.Today()
	if err := o.spend.RecordSpend(day, req.UserID, cost); err != nil {
		// The in-memory ledger already carries the delta; only the durable
		// copy is stale until the next successful write.
		log.Warn("ledger persist failed", "error", err.Error())
	}

	log.Info("completion call",
		"model", model,
		"provider", res.Provider,
		"finish_reason", res.FinishReason,
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens,
		"cost_usd", cost,
	)

	if o.usage != nil {
		rec := models.UsageRecord{
			UserID:           req.UserID,
			ConversationID:   req.ConversationID,
			Model:            model,
			Provider:         res.Provider,
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
			CostUSD:          cost,
			CreatedAt:        time.Now().UTC(),
		}
		if err := o.usage.Record(ctx, rec); err != nil {
			log.Warn("usage record failed", "error", err.Error())
		}
	}

	return res, nil
}

// summarize issues one additional call to compress an over-length reply.
// The result replaces the buffer even if it is still too long; platform
// truncation may occur downstream.
func (o *Orchestrator) summarize(ctx context.Context, log *slog.Logger, req Request, reply string) (string, error) {
	res, err := o.call(ctx, log, req, o.opts.SummaryModel, []models.Turn{
		{Role: models.RoleSystem, Content: summaryInstruction},
		{Role: models.RoleUser, Content: reply},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}
