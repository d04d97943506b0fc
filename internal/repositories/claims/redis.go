package claims

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
	"github.com/redis/go-redis/v9"
)

// claimScript binds ARGV[1] (member) to ARGV[2] (sheet) unless another member holds the sheet.
// KEYS[1] maps member to sheet, KEYS[2] maps sheet to member. Returns 0 on conflict.
const claimScript = `
local holder = redis.call('HGET', KEYS[2], ARGV[2])
if holder and holder ~= ARGV[1] then
	return 0
end
local previous = redis.call('HGET', KEYS[1], ARGV[1])
if previous then
	redis.call('HDEL', KEYS[2], previous)
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
return 1
`

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed claims repository. The client is owned by the caller.
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client is required")
	}

	return &redisRepo{client: client}
}

func membersKey(communityID uint64) string {
	return fmt.Sprintf("claims:%d:members", communityID)
}

func sheetsKey(communityID uint64) string {
	return fmt.Sprintf("claims:%d:sheets", communityID)
}

func (r *redisRepo) Lookup(ctx context.Context, communityID, memberID uint64) (string, bool, error) {
	sheet, err := r.client.HGet(ctx, membersKey(communityID), strconv.FormatUint(memberID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dnderr.Wrap(err, "failed to look up claim").
			WithMeta("guild_id", communityID).
			WithMeta("member_id", memberID)
	}

	return sheet, true, nil
}

func (r *redisRepo) Claim(ctx context.Context, communityID, memberID uint64, sheet string) error {
	if sheet == "" {
		return dnderr.InvalidArgument("sheet name is required")
	}

	keys := []string{membersKey(communityID), sheetsKey(communityID)}
	bound, err := r.client.Eval(ctx, claimScript, keys, strconv.FormatUint(memberID, 10), sheet).Int()
	if err != nil {
		return dnderr.Wrap(err, "failed to store claim").
			WithMeta("guild_id", communityID).
			WithMeta("member_id", memberID)
	}
	if bound == 0 {
		return dnderr.AlreadyExistsf("sheet %s is already claimed", sheet).
			WithMeta("guild_id", communityID).
			WithMeta("member_id", memberID)
	}

	return nil
}

func (r *redisRepo) ListByCommunity(ctx context.Context, communityID uint64) ([]*Claim, error) {
	members, err := r.client.HGetAll(ctx, membersKey(communityID)).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list claims").WithMeta("guild_id", communityID)
	}

	result := make([]*Claim, 0, len(members))
	for member, sheet := range members {
		memberID, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, dnderr.Wrapf(err, "invalid member id %q in claims", member)
		}
		result = append(result, &Claim{
			CommunityID: communityID,
			MemberID:    memberID,
			SheetName:   sheet,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SheetName < result[j].SheetName
	})

	return result, nil
}

func (r *redisRepo) Close() error {
	return nil
}
