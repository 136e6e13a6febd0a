package enrich_test

import (
	"context"
	"strings"
	"testing"

	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/service/enrich"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
)

func mockLLM(response string, callErr error) (*mock.LLMClientMock, *[]string) {
	var prompts []string
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					for _, in := range input {
						if text, ok := in.(gollem.Text); ok {
							prompts = append(prompts, string(text))
						}
					}
					if callErr != nil {
						return nil, callErr
					}
					return &gollem.Response{Texts: []string{response}}, nil
				},
			}, nil
		},
	}, &prompts
}

func testInput() report.Input {
	return report.Input{
		AuthorName: "Sam",
		VerseRef:   "John 3:16",
		Revelation: "Grace abounds",
	}
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()

	t.Run("bare JSON response", func(t *testing.T) {
		llm, _ := mockLLM(`{"encouragement":"Stand firm","prayer":"Lord, strengthen Sam"}`, nil)
		client := enrich.New(llm)

		fb, err := client.Enrich(ctx, testInput())
		gt.NoError(t, err)
		gt.Equal(t, fb.Encouragement, "Stand firm")
		gt.Equal(t, fb.Prayer, "Lord, strengthen Sam")
	})

	t.Run("prompt follows context locale", func(t *testing.T) {
		llm, prompts := mockLLM(`{"encouragement":"Tiens bon","prayer":"Amen"}`, nil)
		client := enrich.New(llm)

		_, err := client.Enrich(lang.With(ctx, lang.French), testInput())
		gt.NoError(t, err)
		gt.A(t, *prompts).Length(1)
		gt.True(t, strings.Contains((*prompts)[0], "mentor spirituel"))
		gt.True(t, strings.Contains((*prompts)[0], "John 3:16"))

		_, err = client.Enrich(lang.With(ctx, lang.English), testInput())
		gt.NoError(t, err)
		gt.A(t, *prompts).Length(2)
		gt.True(t, strings.Contains((*prompts)[1], "spiritual mentor"))
	})

	t.Run("upstream failure surfaces verbatim", func(t *testing.T) {
		llm, _ := mockLLM("", goerr.New("503 model overloaded"))
		client := enrich.New(llm)

		_, err := client.Enrich(ctx, testInput())
		gt.Error(t, err)
		gt.True(t, strings.Contains(err.Error(), "503 model overloaded"))
	})

	t.Run("empty response fails", func(t *testing.T) {
		llm, _ := mockLLM("", nil)
		client := enrich.New(llm)

		_, err := client.Enrich(ctx, testInput())
		gt.Error(t, err)
	})

	t.Run("invalid input is rejected before any call", func(t *testing.T) {
		llm, prompts := mockLLM(`{"encouragement":"x","prayer":"y"}`, nil)
		client := enrich.New(llm)

		_, err := client.Enrich(ctx, report.Input{AuthorName: "  ", VerseRef: "John 3:16", Revelation: "text"})
		gt.Error(t, err)
		gt.A(t, *prompts).Length(0)
	})
}

func TestParseFeedback(t *testing.T) {
	t.Run("JSON wrapped in prose and code fences", func(t *testing.T) {
		text := "Sure! ```json\n{\"encouragement\":\"Go well\",\"prayer\":\"Amen\"}\n```"
		fb, err := enrich.ParseFeedback(text)
		gt.NoError(t, err)
		gt.Equal(t, fb.Encouragement, "Go well")
		gt.Equal(t, fb.Prayer, "Amen")
	})

	t.Run("no braces fails", func(t *testing.T) {
		_, err := enrich.ParseFeedback("no braces here")
		gt.Error(t, err)
	})

	t.Run("missing required key fails", func(t *testing.T) {
		_, err := enrich.ParseFeedback(`{"encouragement":"only one"}`)
		gt.Error(t, err)
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		_, err := enrich.ParseFeedback(`{"encouragement": "broken`)
		gt.Error(t, err)
	})
}
