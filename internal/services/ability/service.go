package ability

//go:generate mockgen -destination=mock/mock_service.go -package=mockability -source=service.go

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
)

// DefaultRowLimit bounds how many candidate rows are fetched for one prefix
const DefaultRowLimit = 3

// Match is the single ability a prefix resolved to
type Match struct {
	Name  string
	Value uint8
}

// Service resolves abbreviated ability names against a character's sheet
type Service interface {
	// Resolve returns the one ability on characterName's sheet whose name starts with
	// abilityPrefix, case-insensitively. Zero or several matches are errors.
	Resolve(ctx context.Context, characterName, abilityPrefix string) (*Match, error)
}

type service struct {
	client        sheets.Client
	spreadsheetID string
	baseURL       string
	rowLimit      int
}

// ServiceConfig holds configuration for the ability service
type ServiceConfig struct {
	Client        sheets.Client
	SpreadsheetID string

	// BaseURL overrides DefaultBaseURL
	BaseURL string

	// RowLimit overrides DefaultRowLimit
	RowLimit int
}

// NewService creates a new ability service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Client == nil {
		panic("sheets client is required")
	}
	if cfg.SpreadsheetID == "" {
		panic("spreadsheet ID is required")
	}

	svc := &service{
		client:        cfg.Client,
		spreadsheetID: cfg.SpreadsheetID,
		baseURL:       cfg.BaseURL,
		rowLimit:      cfg.RowLimit,
	}
	if svc.baseURL == "" {
		svc.baseURL = DefaultBaseURL
	}
	if svc.rowLimit <= 0 {
		svc.rowLimit = DefaultRowLimit
	}

	return svc
}

func (s *service) Resolve(ctx context.Context, characterName, abilityPrefix string) (*Match, error) {
	if characterName == "" {
		return nil, dnderr.InvalidArgument("character name is required")
	}
	if abilityPrefix == "" {
		return nil, dnderr.InvalidArgument("ability name is required")
	}

	queryURL, err := buildQueryURL(s.baseURL, s.spreadsheetID, characterName, abilityPrefix, s.rowLimit)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Fetch(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ability %q for %s: %w", abilityPrefix, characterName, err)
	}

	return pickMatch(body, abilityPrefix, s.rowLimit)
}

// pickMatch parses up to limit rows and insists on exactly one
func pickMatch(body, prefix string, limit int) (*Match, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	var names []string
	var match *Match
	for len(names) < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &CSVError{Err: err}
		}

		m, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		names = append(names, m.Name)
		match = m
	}

	if len(names) > 1 {
		return nil, &UniquenessError{Prefix: prefix, Candidates: names}
	}
	if match == nil {
		return nil, &NoAbilityError{Prefix: prefix}
	}

	return match, nil
}

func parseRecord(record []string) (*Match, error) {
	if len(record) < 2 {
		return nil, &RecordError{Record: record}
	}

	value, err := strconv.ParseUint(record[1], 10, 8)
	if err != nil {
		return nil, &RecordError{Record: record}
	}

	return &Match{Name: record[0], Value: uint8(value)}, nil
}
