package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindClassification(t *testing.T) {
	critical := map[ErrorKind]bool{
		KindTypeError:        false,
		KindFetchURLError:    false,
		KindParseURLError:    false,
		KindDBError:          false,
		KindItemSaveError:    false,
		KindPermanentFailure: false,
		KindInternalError:    false,
		KindRedisError:       true,
		KindDBConnectError:   true,
	}

	transient := map[ErrorKind]bool{
		KindFetchURLError: true,
		KindParseURLError: true,
		KindDBError:       false,
		KindTypeError:     false,
		KindRedisError:    false,
	}

	for kind, want := range critical {
		assert.Equal(t, want, kind.Critical(), "Critical(%s)", kind)
	}
	for kind, want := range transient {
		assert.Equal(t, want, kind.Transient(), "Transient(%s)", kind)
	}
}

func TestFeedError(t *testing.T) {
	feedID := int64(4)
	inner := errors.New("unexpected status 500")
	ferr := NewFeedError(KindFetchURLError, "https://example.com/feed", &feedID, inner)

	assert.Equal(t, "fetch_url_error: https://example.com/feed: unexpected status 500", ferr.Error())
	assert.Equal(t, "unexpected status 500", ferr.Message())
	assert.ErrorIs(t, ferr, inner)
}

func TestKindOf(t *testing.T) {
	ferr := NewFeedError(KindDBError, "", nil, errors.New("insert failed"))

	assert.Equal(t, KindDBError, KindOf(ferr))
	assert.Equal(t, KindDBError, KindOf(fmt.Errorf("tick failed: %w", ferr)))
	assert.Equal(t, KindInternalError, KindOf(errors.New("plain")))
}
