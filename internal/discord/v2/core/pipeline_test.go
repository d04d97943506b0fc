package core

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockHandler for testing
type MockHandler struct {
	canHandle bool
	result    *HandlerResult
	err       error
	called    bool
}

func (m *MockHandler) CanHandle(ctx *InteractionContext) bool {
	return m.canHandle
}

func (m *MockHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	m.called = true
	return m.result, m.err
}

func TestPipeline_Register(t *testing.T) {
	pipeline := NewPipeline()
	pipeline.Register(&MockHandler{}, &MockHandler{})

	assert.Equal(t, 2, pipeline.HandlerCount())
}

func TestPipeline_Dispatch_StopOnFirst(t *testing.T) {
	pipeline := NewPipeline()

	first := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("first")}}
	second := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("second")}}
	pipeline.Register(first, second)

	responder := NewMockResponder()
	err := pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder)
	require.NoError(t, err)

	assert.True(t, first.called)
	assert.False(t, second.called)
	require.Len(t, responder.Responses, 1)
	assert.Equal(t, "first", responder.Responses[0].Content)
}

func TestPipeline_Dispatch_ContinueOnMultiple(t *testing.T) {
	pipeline := NewPipeline()
	pipeline.SetStopOnFirst(false)

	first := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("first")}}
	second := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("second")}}
	pipeline.Register(first, second)

	responder := NewMockResponder()
	err := pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder)
	require.NoError(t, err)

	assert.True(t, first.called)
	assert.True(t, second.called)
}

func TestPipeline_Dispatch_SkipsHandlersThatCannotHandle(t *testing.T) {
	pipeline := NewPipeline()

	skipped := &MockHandler{canHandle: false}
	used := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("ok")}}
	pipeline.Register(skipped, used)

	responder := NewMockResponder()
	require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder))

	assert.False(t, skipped.called)
	assert.True(t, used.called)
}

func TestPipeline_Dispatch_Unhandled(t *testing.T) {
	pipeline := NewPipeline()
	pipeline.Register(&MockHandler{canHandle: false})

	responder := NewMockResponder()
	require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("other").InteractionContext, responder))

	last := responder.LastResponse()
	require.NotNil(t, last)
	assert.True(t, last.Ephemeral)
	assert.Contains(t, last.Content, "don't know how to handle")
}

func TestPipeline_Dispatch_ErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "handler error shown to user",
			err:     NewValidationError("bad input"),
			message: "bad input",
		},
		{
			name:    "plain error is hidden",
			err:     errors.New("database on fire"),
			message: "An error occurred while processing your request.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := NewPipeline()
			pipeline.Register(&MockHandler{canHandle: true, err: tt.err})

			responder := NewMockResponder()
			require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder))

			last := responder.LastResponse()
			require.NotNil(t, last)
			assert.Equal(t, tt.message, last.Content)
			assert.True(t, last.Ephemeral)
		})
	}
}

func TestPipeline_Dispatch_EditsWhenDeferred(t *testing.T) {
	pipeline := NewPipeline()
	pipeline.Register(HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
		responder, ok := ResponderFrom(ctx)
		require.True(t, ok)
		require.NoError(t, responder.Defer(false))
		return &HandlerResult{Response: NewResponse("late")}, nil
	}))

	responder := NewMockResponder()
	require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder))

	assert.Empty(t, responder.Responses)
	require.Len(t, responder.Edits, 1)
	assert.Equal(t, "late", responder.Edits[0].Content)
}

func TestPipeline_MiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
				order = append(order, name)
				return next.Handle(ctx)
			})
		}
	}

	pipeline := NewPipeline()
	pipeline.Use(mark("outer"), mark("inner"))
	pipeline.Register(HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
		order = append(order, "handler")
		return nil, nil
	}))

	require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, NewMockResponder()))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestPipeline_MiddlewareKeepsRouting(t *testing.T) {
	passthrough := func(next Handler) Handler {
		return HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
			return next.Handle(ctx)
		})
	}

	pipeline := NewPipeline()
	pipeline.Use(passthrough)

	skipped := &MockHandler{canHandle: false}
	pipeline.Register(skipped)

	responder := NewMockResponder()
	require.NoError(t, pipeline.Dispatch(NewTestInteractionContext().AsCommand("sheet").InteractionContext, responder))

	assert.False(t, skipped.called)
	require.Len(t, responder.Responses, 1)
	assert.Contains(t, responder.Responses[0].Content, "don't know how to handle")
}

func TestRouter_Subcommands(t *testing.T) {
	pipeline := NewPipeline()
	router := NewRouter("sheet", pipeline)
	router.SubcommandFunc("roll", func(ctx *InteractionContext) (*HandlerResult, error) {
		return &HandlerResult{Response: NewResponse("rolled")}, nil
	})
	router.Register()

	handler := router.Build()

	assert.True(t, handler.CanHandle(NewTestInteractionContext().AsCommand("sheet", "roll").InteractionContext))
	assert.False(t, handler.CanHandle(NewTestInteractionContext().AsCommand("sheet", "claim").InteractionContext))
	assert.False(t, handler.CanHandle(NewTestInteractionContext().AsCommand("other", "roll").InteractionContext))

	result, err := handler.Handle(NewTestInteractionContext().AsCommand("sheet", "roll").InteractionContext)
	require.NoError(t, err)
	assert.Equal(t, "rolled", result.Response.Content)
}

func TestNewInteractionContext_ParsesSubcommandOptions(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "111",
			Member:  &discordgo.Member{User: &discordgo.User{ID: "222"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "sheet",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "roll",
						Type: discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{
							{Name: "ability", Type: discordgo.ApplicationCommandOptionString, Value: "str"},
						},
					},
				},
			},
		},
	}

	ctx := NewInteractionContext(context.Background(), nil, i)

	assert.Equal(t, "sheet", ctx.GetCommandName())
	assert.Equal(t, "roll", ctx.GetSubcommand())
	assert.Equal(t, "str", ctx.GetStringParam("ability"))
	assert.Equal(t, "222", ctx.UserID)

	community, err := ctx.CommunityID()
	require.NoError(t, err)
	assert.Equal(t, uint64(111), community)
}

func TestNewInteractionContext_SubcommandWithoutOptions(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			User: &discordgo.User{ID: "7"},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "sheet",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "whoami", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
		},
	}

	ctx := NewInteractionContext(context.Background(), nil, i)
	assert.Equal(t, "whoami", ctx.GetSubcommand())

	_, err := ctx.CommunityID()
	assert.Error(t, err, "direct messages carry no guild")
}

func TestInteractionContext_Params(t *testing.T) {
	ctx := NewTestInteractionContext().
		WithParam("ability", "str").
		WithParam("count", int64(2)).InteractionContext

	assert.Equal(t, "str", ctx.GetParam("ability"))
	assert.Equal(t, int64(2), ctx.GetParam("count"))
	assert.Nil(t, ctx.GetParam("missing"))

	assert.Equal(t, "str", ctx.GetStringParam("ability"))
	assert.Empty(t, ctx.GetStringParam("count"))
	assert.Empty(t, ctx.GetStringParam("missing"))
}
