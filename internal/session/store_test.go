// internal/session/store_test.go
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

func testSession() models.Session {
	return models.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: models.User{
			ID:        7,
			FirstName: "Thabo",
			LastName:  "Mokoena",
			Email:     "thabo@example.com",
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "session.json")
	return NewStore(path, logger.NewTestLogger(t))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testSession()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access-1", loaded.AccessToken)
	assert.Equal(t, "thabo@example.com", loaded.User.Email)
}

func TestLoadMissingFileMeansLoggedOut(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Load()

	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSaveRefusesPartialSession(t *testing.T) {
	store := newTestStore(t)

	// Token without a user.
	err := store.Save(models.Session{AccessToken: "access-1"})
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrCodeSessionWriteFailed))

	// User without a token.
	err = store.Save(models.Session{User: models.User{ID: 7, Email: "t@example.com"}})
	require.Error(t, err)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCorruptFileDiscardedOnLoad(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.path), 0o700))
	require.NoError(t, os.WriteFile(store.path, []byte("{broken"), 0o600))

	_, err := store.Load()

	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrCodeSessionCorrupt))
	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr), "corrupt file should be removed")
}

func TestIncompleteRecordDiscardedOnLoad(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.path), 0o700))

	record := map[string]models.Session{
		recordKey: {AccessToken: "access-1"},
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.path, data, 0o600))

	_, err = store.Load()

	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrCodeSessionCorrupt))
	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecordStoredUnderFixedKey(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testSession()))

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)

	var record map[string]models.Session
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Contains(t, record, "portal.session")
}

func TestClearRemovesFileAndMemory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testSession()))

	require.NoError(t, store.Clear())

	_, ok := store.Current()
	assert.False(t, ok)
	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr))

	// Clearing again is a no-op.
	require.NoError(t, store.Clear())
}

func TestUpdateTokensPersistsRotatedPair(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testSession()))

	require.NoError(t, store.UpdateTokens("access-2", "refresh-2"))

	assert.Equal(t, "access-2", store.AccessToken())
	assert.Equal(t, "refresh-2", store.RefreshToken())

	reread := NewStore(store.path, logger.NewTestLogger(t))
	loaded, err := reread.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-2", loaded.AccessToken)
	assert.Equal(t, "refresh-2", loaded.RefreshToken)
	assert.Equal(t, "thabo@example.com", loaded.User.Email)
}

func TestUpdateTokensWithoutSession(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateTokens("access-2", "refresh-2")

	require.Error(t, err)
}

func TestTokenSourceEmptyWhenLoggedOut(t *testing.T) {
	store := newTestStore(t)

	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestTokenExpiryReadsUnverifiedClaim(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "7",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	store := newTestStore(t)
	sess := testSession()
	sess.AccessToken = signed
	require.NoError(t, store.Save(sess))

	got, ok := store.TokenExpiry()

	require.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestTokenExpiryUnavailableForOpaqueToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testSession()))

	_, ok := store.TokenExpiry()

	assert.False(t, ok)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.UpdateTokens("a2", "r2"))

	entries, err := os.ReadDir(filepath.Dir(store.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}
