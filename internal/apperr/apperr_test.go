package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amsvault/internal/store"
)

func TestFromStore(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		msg  string
	}{
		{"duplicate email", store.ErrDuplicateEmail, KindDuplicateEmail, "This email is already registered"},
		{"bookmark exists", fmt.Errorf("insert: %w", store.ErrBookmarkExists), KindBookmarkExists, "Already in favorites"},
		{"not found", store.ErrNotFound, KindNotFound, "Bookmark not found"},
		{"invalid", store.ErrInvalid, KindValidation, "Invalid Bookmark"},
		{"other", errors.New("disk I/O error"), KindStorageUnavailable, "Local storage is unavailable, try again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStore(tt.err, "Bookmark")
			e := As(got)
			require.NotNil(t, e)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.msg, e.Error())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestFromStore_PassesThrough(t *testing.T) {
	assert.Nil(t, FromStore(nil, "User"))

	orig := Unauthenticated()
	assert.Same(t, orig, FromStore(orig, "User"))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("add favorite: %w", BookmarkExists())
	assert.True(t, Is(err, KindBookmarkExists))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}
