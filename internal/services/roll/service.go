package roll

//go:generate mockgen -destination=mock/mock_service.go -package=mockroll -source=service.go

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/sheet-bot/internal/dice"
	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
	"github.com/KirkDiggler/sheet-bot/internal/repositories/claims"
	"github.com/KirkDiggler/sheet-bot/internal/services/ability"
)

const (
	// DiceCount and DiceSides describe the 2d10 added to every check
	DiceCount = 2
	DiceSides = 10

	// MaxAbilities is how many abilities one check may combine
	MaxAbilities = 2
)

// Input describes one ability check
type Input struct {
	CommunityID uint64
	MemberID    uint64

	// Character defaults to the sheet the member has claimed
	Character string

	// Abilities holds one or two ability name prefixes
	Abilities []string
}

// Result is a resolved and rolled ability check
type Result struct {
	Character string
	Abilities []*ability.Match
	Dice      *dice.RollResult
	Total     int
}

// Service performs ability checks
type Service interface {
	Roll(ctx context.Context, input *Input) (*Result, error)
}

type service struct {
	abilities ability.Service
	claims    claims.Repository
	roller    dice.Roller
}

// ServiceConfig holds dependencies for the roll service
type ServiceConfig struct {
	AbilityService ability.Service
	Claims         claims.Repository
	Roller         dice.Roller
}

// NewService creates a new roll service
func NewService(cfg *ServiceConfig) Service {
	if cfg.AbilityService == nil {
		panic("ability service is required")
	}
	if cfg.Claims == nil {
		panic("claims repository is required")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	return &service{
		abilities: cfg.AbilityService,
		claims:    cfg.Claims,
		roller:    roller,
	}
}

func (s *service) Roll(ctx context.Context, input *Input) (*Result, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input is required")
	}
	if len(input.Abilities) == 0 || len(input.Abilities) > MaxAbilities {
		return nil, dnderr.Newf(dnderr.CodeInvalidArgument, "between 1 and %d abilities are required", MaxAbilities)
	}

	character, err := s.characterFor(ctx, input)
	if err != nil {
		return nil, err
	}

	matches := make([]*ability.Match, len(input.Abilities))
	g, gctx := errgroup.WithContext(ctx)
	for i, prefix := range input.Abilities {
		i, prefix := i, prefix
		g.Go(func() error {
			m, err := s.abilities.Resolve(gctx, character, prefix)
			if err != nil {
				return err
			}
			matches[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bonus := 0
	for _, m := range matches {
		bonus += int(m.Value)
	}

	rolled, err := s.roller.Roll(DiceCount, DiceSides, bonus)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll dice")
	}

	return &Result{
		Character: character,
		Abilities: matches,
		Dice:      rolled,
		Total:     rolled.Total,
	}, nil
}

func (s *service) characterFor(ctx context.Context, input *Input) (string, error) {
	if input.Character != "" {
		return input.Character, nil
	}

	sheet, ok, err := s.claims.Lookup(ctx, input.CommunityID, input.MemberID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dnderr.NotFoundf("no character claimed").
			WithMeta("member_id", input.MemberID)
	}

	return sheet, nil
}
