package claims

//go:generate mockgen -destination=mock/mock.go -package=mockclaims -source=interface.go

import (
	"context"
)

// Claim binds one guild member to one character sheet
type Claim struct {
	CommunityID uint64
	MemberID    uint64
	SheetName   string
}

// Repository persists which member plays which character sheet in each guild.
// Within a guild a member holds at most one sheet and a sheet has at most one holder.
type Repository interface {
	// Lookup returns the sheet claimed by the member, if any
	Lookup(ctx context.Context, communityID, memberID uint64) (string, bool, error)

	// Claim binds the member to sheet, replacing any sheet they held before.
	// Fails with CodeAlreadyExists when another member of the guild holds sheet.
	Claim(ctx context.Context, communityID, memberID uint64, sheet string) error

	// ListByCommunity returns every claim in the guild ordered by sheet name
	ListByCommunity(ctx context.Context, communityID uint64) ([]*Claim, error)

	Close() error
}
