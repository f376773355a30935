package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := map[string]struct {
		payload string
		want    *Command
		wantErr error
	}{
		"valid add": {
			payload: `{"cmd":"add","url":"https://example.com/feed","name":"wire","category":3,"refresh":60000}`,
			want:    &Command{Cmd: CommandAdd, URL: "https://example.com/feed", Name: "wire", Category: 3, Refresh: 60000},
		},
		"valid remove": {
			payload: `{"cmd":"remove","url":"https://example.com/feed"}`,
			want:    &Command{Cmd: CommandRemove, URL: "https://example.com/feed"},
		},
		"valid replace": {
			payload: `{"cmd":"replace","url":"https://example.com/feed","name":"n","category":7,"refresh":30000}`,
			want:    &Command{Cmd: CommandReplace, URL: "https://example.com/feed", Name: "n", Category: 7, Refresh: 30000},
		},
		"url is trimmed": {
			payload: `{"cmd":"remove","url":"  https://example.com/feed  "}`,
			want:    &Command{Cmd: CommandRemove, URL: "https://example.com/feed"},
		},
		"add without url": {
			payload: `{"cmd":"add","refresh":60000}`,
			wantErr: ErrInvalidFeedConfig,
		},
		"add without refresh": {
			payload: `{"cmd":"add","url":"https://example.com/feed"}`,
			wantErr: ErrInvalidFeedConfig,
		},
		"add with negative refresh": {
			payload: `{"cmd":"add","url":"https://example.com/feed","refresh":-1}`,
			wantErr: ErrInvalidFeedConfig,
		},
		"remove without url": {
			payload: `{"cmd":"remove","url":"   "}`,
			wantErr: ErrInvalidFeedConfig,
		},
		"unknown cmd": {
			payload: `{"cmd":"purge","url":"https://example.com/feed"}`,
			wantErr: ErrUnknownCommand,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.payload))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandMalformedJSON(t *testing.T) {
	_, err := ParseCommand([]byte(`{"cmd":"add",`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownCommand)
	assert.NotErrorIs(t, err, ErrInvalidFeedConfig)
}

func TestCommandFeedConfig(t *testing.T) {
	cmd := &Command{Cmd: CommandAdd, URL: "https://example.com/feed", Name: "wire", Category: 3, Refresh: 60000}

	cfg := cmd.FeedConfig()
	assert.Equal(t, "https://example.com/feed", cfg.URL)
	assert.Equal(t, "wire", cfg.Name)
	assert.Equal(t, int64(3), cfg.Category)
	assert.Equal(t, int64(60000), cfg.Refresh)
	assert.Zero(t, cfg.ID)
}
