package services

import (
	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/KirkDiggler/sheet-bot/internal/dice"
	"github.com/KirkDiggler/sheet-bot/internal/repositories/claims"
	"github.com/KirkDiggler/sheet-bot/internal/services/ability"
	"github.com/KirkDiggler/sheet-bot/internal/services/roll"
)

// Provider holds all service instances
type Provider struct {
	AbilityService ability.Service
	RollService    roll.Service
	Claims         claims.Repository
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	SheetsClient    sheets.Client
	SpreadsheetID   string
	RowLimit        int
	ClaimRepository claims.Repository
	Roller          dice.Roller
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	abilityService := ability.NewService(&ability.ServiceConfig{
		Client:        cfg.SheetsClient,
		SpreadsheetID: cfg.SpreadsheetID,
		RowLimit:      cfg.RowLimit,
	})

	rollService := roll.NewService(&roll.ServiceConfig{
		AbilityService: abilityService,
		Claims:         cfg.ClaimRepository,
		Roller:         cfg.Roller,
	})

	return &Provider{
		AbilityService: abilityService,
		RollService:    rollService,
		Claims:         cfg.ClaimRepository,
	}
}
