package routers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/handlers"
	mockclaims "github.com/KirkDiggler/sheet-bot/internal/repositories/claims/mock"
	mockroll "github.com/KirkDiggler/sheet-bot/internal/services/roll/mock"
)

func newTestRouter(t *testing.T) (*SheetRouter, *core.Pipeline, *mockclaims.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := mockclaims.NewMockRepository(ctrl)

	handler, err := handlers.NewSheetHandler(&handlers.SheetHandlerConfig{
		RollService: mockroll.NewMockService(ctrl),
		Claims:      repo,
	})
	require.NoError(t, err)

	pipeline := core.NewPipeline()
	return NewSheetRouter(pipeline, handler), pipeline, repo
}

func TestSheetRouter_RegistersWithPipeline(t *testing.T) {
	_, pipeline, _ := newTestRouter(t)
	assert.Equal(t, 1, pipeline.HandlerCount())
}

func TestSheetRouter_RoutesSubcommands(t *testing.T) {
	router, _, repo := newTestRouter(t)
	h := router.Handler()

	repo.EXPECT().Lookup(gomock.Any(), uint64(111), uint64(222)).Return("Ada", true, nil)

	ctx := core.NewTestInteractionContext().AsCommand(handlers.CommandName, "whoami")
	require.True(t, h.CanHandle(ctx.InteractionContext))

	result, err := h.Handle(ctx.InteractionContext)
	require.NoError(t, err)
	assert.Contains(t, result.Response.Content, "Ada")
}

func TestSheetRouter_IgnoresOtherCommands(t *testing.T) {
	router, _, _ := newTestRouter(t)

	ctx := core.NewTestInteractionContext().AsCommand("dnd", "roll")
	assert.False(t, router.Handler().CanHandle(ctx.InteractionContext))
}

func TestSheetRouter_ClaimIsRateLimited(t *testing.T) {
	router, _, repo := newTestRouter(t)
	h := router.Handler()

	repo.EXPECT().Claim(gomock.Any(), uint64(111), uint64(222), "Ada").Return(nil).Times(5)

	for i := 0; i < 5; i++ {
		ctx := core.NewTestInteractionContext().
			AsCommand(handlers.CommandName, "claim").
			WithParam("character", "Ada")
		_, err := h.Handle(ctx.InteractionContext)
		require.NoError(t, err)
	}

	ctx := core.NewTestInteractionContext().
		AsCommand(handlers.CommandName, "claim").
		WithParam("character", "Ada")
	result, err := h.Handle(ctx.InteractionContext)
	require.NoError(t, err)
	assert.True(t, result.Response.Ephemeral)
	assert.Contains(t, result.Response.Content, "too fast")
}
