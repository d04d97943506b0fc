package ability

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	mocksheets "github.com/KirkDiggler/sheet-bot/internal/clients/sheets/mock"
	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
)

func TestAbilityService_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		fetchErr  error
		want      *Match
		assertErr func(*testing.T, error)
	}{
		{
			name: "single match",
			body: "\"Strength\",\"12\"\n",
			want: &Match{Name: "Strength", Value: 12},
		},
		{
			name: "value at upper bound",
			body: "\"Stealth\",\"255\"\n",
			want: &Match{Name: "Stealth", Value: 255},
		},
		{
			name: "ambiguous prefix lists candidates",
			body: "\"Strength\",\"12\"\n\"Stealth\",\"3\"\n",
			assertErr: func(t *testing.T, err error) {
				var uerr *UniquenessError
				require.ErrorAs(t, err, &uerr)
				assert.Equal(t, []string{"Strength", "Stealth"}, uerr.Candidates)
				assert.Equal(t, "st", uerr.Prefix)
			},
		},
		{
			name: "empty body",
			body: "",
			assertErr: func(t *testing.T, err error) {
				var nerr *NoAbilityError
				require.ErrorAs(t, err, &nerr)
				assert.Equal(t, "st", nerr.Prefix)
			},
		},
		{
			name: "single column record",
			body: "abc",
			assertErr: func(t *testing.T, err error) {
				var rerr *RecordError
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, []string{"abc"}, rerr.Record)
			},
		},
		{
			name: "bad record aborts even after a valid row",
			body: "\"Strength\",\"12\"\nabc\n",
			assertErr: func(t *testing.T, err error) {
				var rerr *RecordError
				assert.ErrorAs(t, err, &rerr)
			},
		},
		{
			name: "value out of range",
			body: "\"Strength\",\"256\"\n",
			assertErr: func(t *testing.T, err error) {
				var rerr *RecordError
				assert.ErrorAs(t, err, &rerr)
			},
		},
		{
			name: "negative value",
			body: "\"Strength\",\"-1\"\n",
			assertErr: func(t *testing.T, err error) {
				var rerr *RecordError
				assert.ErrorAs(t, err, &rerr)
			},
		},
		{
			name: "unterminated quote",
			body: "\"Strength,12\n",
			assertErr: func(t *testing.T, err error) {
				var cerr *CSVError
				assert.ErrorAs(t, err, &cerr)
			},
		},
		{
			name:     "client failure is preserved",
			fetchErr: &sheets.ClientError{Kind: sheets.KindFailure, StatusCode: 500},
			assertErr: func(t *testing.T, err error) {
				var cerr *sheets.ClientError
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, sheets.KindFailure, cerr.Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocksheets.NewMockClient(ctrl)
			client.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(tt.body, tt.fetchErr)

			svc := NewService(&ServiceConfig{Client: client, SpreadsheetID: "sheet-id"})

			got, err := svc.Resolve(context.Background(), "Ada", "st")
			if tt.assertErr != nil {
				require.Error(t, err)
				tt.assertErr(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbilityService_ResolveQueryURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocksheets.NewMockClient(ctrl)

	var captured string
	client.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, queryURL string) (string, error) {
		captured = queryURL
		return "\"Strength\",\"12\"", nil
	})

	svc := NewService(&ServiceConfig{Client: client, SpreadsheetID: "abc123"})
	_, err := svc.Resolve(context.Background(), "Sir Ada", "STR")
	require.NoError(t, err)

	parsed, err := url.Parse(captured)
	require.NoError(t, err)
	assert.Equal(t, "docs.google.com", parsed.Host)
	assert.Equal(t, "/spreadsheets/d/abc123/gviz/tq", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "select A, G where lower(A) starts with 'str' limit 3", q.Get("tq"))
	assert.Equal(t, "Sir Ada", q.Get("sheet"))
	assert.Equal(t, "out:csv", q.Get("tqx"))
}

func TestAbilityService_ResolveRowLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocksheets.NewMockClient(ctrl)
	client.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, queryURL string) (string, error) {
		parsed, err := url.Parse(queryURL)
		require.NoError(t, err)
		assert.Contains(t, parsed.Query().Get("tq"), "limit 1")
		// rows past the limit are never read
		return "\"Strength\",\"12\"\nnot,a,number\n", nil
	})

	svc := NewService(&ServiceConfig{Client: client, SpreadsheetID: "abc123", RowLimit: 1})
	got, err := svc.Resolve(context.Background(), "Ada", "str")
	require.NoError(t, err)
	assert.Equal(t, &Match{Name: "Strength", Value: 12}, got)
}

func TestAbilityService_ResolveValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocksheets.NewMockClient(ctrl)
	svc := NewService(&ServiceConfig{Client: client, SpreadsheetID: "abc123"})

	_, err := svc.Resolve(context.Background(), "", "str")
	assert.True(t, dnderr.IsInvalidArgument(err))

	_, err = svc.Resolve(context.Background(), "Ada", "")
	assert.True(t, dnderr.IsInvalidArgument(err))

	_, err = svc.Resolve(context.Background(), "Ada", `it's "quoted"`)
	assert.True(t, dnderr.IsInvalidArgument(err))
}

func TestNewService_RequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocksheets.NewMockClient(ctrl)

	assert.Panics(t, func() { NewService(&ServiceConfig{SpreadsheetID: "abc"}) })
	assert.Panics(t, func() { NewService(&ServiceConfig{Client: client}) })
}

func TestQuoteLiteral(t *testing.T) {
	got, err := quoteLiteral("str")
	require.NoError(t, err)
	assert.Equal(t, "'str'", got)

	got, err = quoteLiteral("o'brien")
	require.NoError(t, err)
	assert.Equal(t, `"o'brien"`, got)

	_, err = quoteLiteral(`'"`)
	assert.True(t, dnderr.IsInvalidArgument(err))
}
