package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

const defaultTimeout = 30 * time.Second

// Client calls the completion service with a single-turn, locale-aware
// prompt and parses the constrained JSON result. Stateless: no retry,
// no caching, every call is independent.
type Client struct {
	llm     gollem.LLMClient
	timeout time.Duration
}

var _ interfaces.Enricher = &Client{}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func New(llm gollem.LLMClient, opts ...Option) *Client {
	c := &Client{
		llm:     llm,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich produces the structured feedback for a member reflection in
// the locale carried by ctx. Upstream diagnostics stay verbatim in the
// error chain so operators can see what the service actually said.
func (c *Client) Enrich(ctx context.Context, in report.Input) (*report.Feedback, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	locale := lang.From(ctx)
	prompt := buildPrompt(locale, in)

	ssn, err := c.llm.NewSession(ctx, gollem.WithSessionContentType(gollem.ContentTypeJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create completion session", goerr.T(errs.TagEnrichment))
	}

	resp, err := ssn.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "completion call failed",
			goerr.T(errs.TagEnrichment), goerr.V("locale", locale))
	}
	if len(resp.Texts) == 0 || resp.Texts[0] == "" {
		return nil, goerr.New("completion returned no text", goerr.T(errs.TagEnrichment))
	}

	fb, err := ParseFeedback(resp.Texts[0])
	if err != nil {
		logging.From(ctx).Debug("unparseable completion response", "text", resp.Texts[0])
		return nil, err
	}
	return fb, nil
}

var promptFormats = map[lang.Lang]string{
	lang.French: "Agis en mentor spirituel. Analyse ce verset: %s et cette révélation de %s: %s. " +
		"Réponds UNIQUEMENT avec un objet JSON au format exact: " +
		`{"encouragement": "texte court", "prayer": "une courte prière"}`,
	lang.English: "Act as a spiritual mentor. Analyze this verse: %s and this revelation from %s: %s. " +
		"Respond ONLY with a JSON object in this exact format: " +
		`{"encouragement": "short text", "prayer": "a short prayer"}`,
}

func buildPrompt(locale lang.Lang, in report.Input) string {
	format, ok := promptFormats[locale]
	if !ok {
		format = promptFormats[lang.Default]
	}
	return fmt.Sprintf(format, in.VerseRef, in.AuthorName, in.Revelation)
}

// ParseFeedback extracts the feedback object from raw completion text.
// The service is not guaranteed to return bare JSON (it may wrap it in
// prose or code fences), so we take the substring from the first '{'
// to the last '}' and decode that.
func ParseFeedback(text string) (*report.Feedback, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, goerr.New("no JSON object in completion response",
			goerr.T(errs.TagEnrichment), goerr.V("response", text))
	}

	var fb report.Feedback
	if err := json.Unmarshal([]byte(text[start:end+1]), &fb); err != nil {
		return nil, goerr.Wrap(err, "failed to decode feedback JSON",
			goerr.T(errs.TagEnrichment), goerr.V("response", text))
	}
	if err := fb.Validate(); err != nil {
		return nil, goerr.Wrap(err, "incomplete feedback from completion service",
			goerr.V("response", text))
	}
	return &fb, nil
}
