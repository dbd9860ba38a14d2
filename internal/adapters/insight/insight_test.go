package insight

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/traffixlab/traffix/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// stubCompleter returns a fixed answer or error and captures the request.
type stubCompleter struct {
	answer string
	err    error
	got    openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.got = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.answer}},
		},
	}, nil
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	situation := Request{PoA: 2.24, Location: "A -> B", Congestion: 90}

	Convey("Given a responsive model", t, func() {
		stub := &stubCompleter{answer: "tolls on the A-B link"}
		c := New("key", "", withCompleter(stub), WithModel("test-model"), WithTimeout(time.Second))

		Convey("When no intent or query is given", func() {
			got := c.Analyze(ctx, situation)

			Convey("Then the legacy text analysis is requested", func() {
				So(got.Format, ShouldEqual, FormatText)
				So(got.Insight, ShouldEqual, "tolls on the A-B link")
				So(stub.got.Model, ShouldEqual, "test-model")
				So(stub.got.ResponseFormat, ShouldBeNil)
				So(stub.got.Messages[0].Content, ShouldContainSubstring, "Nash Equilibrium")
				So(stub.got.Messages[0].Content, ShouldContainSubstring, "A -> B")
			})
		})

		Convey("When a predefined intent is given", func() {
			req := situation
			req.Intent = IntentCooldown
			got := c.Analyze(ctx, req)

			Convey("Then a JSON answer is requested", func() {
				So(got.Format, ShouldEqual, FormatJSON)
				So(stub.got.ResponseFormat.Type, ShouldEqual, openai.ChatCompletionResponseFormatTypeJSONObject)
				So(stub.got.Messages[0].Content, ShouldContainSubstring, "'cooldown'")
			})
		})

		Convey("When an unknown intent is given", func() {
			req := situation
			req.Intent = "weather"
			c.Analyze(ctx, req)

			So(stub.got.Messages[0].Content, ShouldContainSubstring, "'cause', 'impact', 'action'")
		})

		Convey("When a free query is given", func() {
			req := situation
			req.Intent = IntentCause
			req.Query = "should we close the bridge?"
			got := c.Analyze(ctx, req)

			Convey("Then the query wins over the intent", func() {
				So(got.Format, ShouldEqual, FormatJSON)
				So(stub.got.Messages[0].Content, ShouldContainSubstring, "should we close the bridge?")
			})
		})
	})

	Convey("Given a failing model", t, func() {
		stub := &stubCompleter{err: errors.New("connection refused")}
		c := New("key", "http://localhost:9", withCompleter(stub))

		got := c.Analyze(ctx, situation)

		Convey("Then the canned fallback is returned, never an error", func() {
			So(got.Format, ShouldEqual, FormatText)
			So(got.Insight, ShouldContainSubstring, "System Overload")
			So(got.Insight, ShouldContainSubstring, "connection refused")
		})
	})

	Convey("Given a model that answers with no choices", t, func() {
		c := New("key", "", withCompleter(&emptyCompleter{}))

		got := c.Analyze(ctx, situation)

		So(got.Format, ShouldEqual, FormatText)
		So(got.Insight, ShouldContainSubstring, "System Overload")
	})
}

type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
