package handlers

import (
	"fmt"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/repositories/claims"
	"github.com/KirkDiggler/sheet-bot/internal/services/roll"
)

// SheetHandler answers the /sheet subcommands
type SheetHandler struct {
	rollService roll.Service
	claims      claims.Repository
}

// SheetHandlerConfig holds the configuration
type SheetHandlerConfig struct {
	RollService roll.Service
	Claims      claims.Repository
}

// NewSheetHandler creates a new sheet handler
func NewSheetHandler(cfg *SheetHandlerConfig) (*SheetHandler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.RollService == nil {
		return nil, fmt.Errorf("rollService is required")
	}
	if cfg.Claims == nil {
		return nil, fmt.Errorf("claims is required")
	}

	return &SheetHandler{
		rollService: cfg.RollService,
		claims:      cfg.Claims,
	}, nil
}

// callerIDs resolves the guild and member the interaction came from
func callerIDs(ctx *core.InteractionContext) (uint64, uint64, error) {
	communityID, err := ctx.CommunityID()
	if err != nil {
		return 0, 0, core.NewHandlerError(err, "Character sheets can only be used in a server.", core.ErrorCodeBadRequest)
	}
	memberID, err := ctx.MemberID()
	if err != nil {
		return 0, 0, core.NewInternalError(err)
	}
	return communityID, memberID, nil
}
