package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
	"github.com/KirkDiggler/sheet-bot/internal/services/ability"
)

const noClaimMessage = "You haven't claimed a character. Use `/sheet claim character:<name>` or pass `character` to roll for someone specific."

// resolveHandlerError wraps a roll failure with the text shown to the caller
func resolveHandlerError(err error) *core.HandlerError {
	msg := describeResolveError(err)
	if msg == "" {
		return core.NewInternalError(err)
	}
	return core.NewHandlerError(err, msg, resolveErrorCode(err))
}

// describeResolveError maps ability resolution and claim lookup failures to user text.
// An empty string means the error is not one the caller can act on.
func describeResolveError(err error) string {
	var (
		noAbility  *ability.NoAbilityError
		uniqueness *ability.UniquenessError
		record     *ability.RecordError
		csvErr     *ability.CSVError
		clientErr  *sheets.ClientError
	)

	switch {
	case errors.As(err, &noAbility):
		return fmt.Sprintf("No ability starting with **%s** was found on that sheet.", noAbility.Prefix)
	case errors.As(err, &uniqueness):
		return fmt.Sprintf("**%s** matches more than one ability: %s. Please be more specific.",
			uniqueness.Prefix, strings.Join(uniqueness.Candidates, ", "))
	case errors.As(err, &record):
		return fmt.Sprintf("The sheet has a malformed row for that ability: `%s`. Values must be whole numbers from 0 to 255.",
			strings.Join(record.Record, ", "))
	case errors.As(err, &csvErr):
		return "The spreadsheet sent back something that could not be read. Please try again."
	case errors.As(err, &clientErr):
		return describeClientError(clientErr)
	case dnderr.IsNotFound(err):
		return noClaimMessage
	case dnderr.IsInvalidArgument(err):
		var appErr *dnderr.Error
		if errors.As(err, &appErr) {
			return appErr.Message
		}
	}

	return ""
}

func describeClientError(err *sheets.ClientError) string {
	switch err.Kind {
	case sheets.KindMissingToken:
		return "The bot could not sign in to Google Sheets. Please tell an admin."
	case sheets.KindBadRequest:
		if err.ServerMessage != "" {
			return fmt.Sprintf("Google Sheets rejected the lookup: %s. Check that the character's sheet exists.", err.ServerMessage)
		}
		return "Google Sheets rejected the lookup. Check that the character's sheet exists."
	default:
		return "Google Sheets is unavailable right now. Please try again later."
	}
}

func resolveErrorCode(err error) int {
	var (
		clientErr  *sheets.ClientError
		noAbility  *ability.NoAbilityError
		uniqueness *ability.UniquenessError
	)

	switch {
	case errors.As(err, &clientErr):
		if clientErr.Kind == sheets.KindBadRequest && clientErr.StatusCode < http.StatusInternalServerError {
			return core.ErrorCodeBadRequest
		}
		return core.ErrorCodeUnavailable
	case errors.As(err, &noAbility), dnderr.IsNotFound(err):
		return core.ErrorCodeNotFound
	case errors.As(err, &uniqueness), dnderr.IsInvalidArgument(err):
		return core.ErrorCodeBadRequest
	default:
		return core.ErrorCodeInternal
	}
}
