package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/session"
	inmemkv "github.com/skiddy/skiddy/storage/kv/inmem"
	dummyclient "github.com/skiddy/skiddy/storage/records/dummy"
	testutil "github.com/skiddy/skiddy/tests"
)

func setup(t *testing.T) (*session.Store, *dummyclient.Client, *inmemkv.Storage) {
	client := dummyclient.Open()
	storage := inmemkv.Open()
	conf := &core.Config{}
	conf.Session.StorageKey = "pb_auth"
	conf.Session.SettleDelay = 5 * time.Millisecond
	store := session.NewStore(client, storage, testutil.Logger{T: t}, conf)
	t.Cleanup(store.Close)
	return store, client, storage
}

func TestStore_Login(t *testing.T) {
	store, client, storage := setup(t)
	client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")

	ctx := context.Background()

	usr, err := store.Login(ctx, "jane@test.com", "s3cret")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	assert.Equal(t, "jane", usr.Name)
	assert.True(t, store.IsValid())
	if assert.NotNil(t, store.CurrentUser()) {
		assert.Equal(t, usr.ID, store.CurrentUser().ID)
	}

	// durable copy written
	raw, err := storage.GetItem(ctx, "pb_auth")
	assert.NoError(t, err)
	assert.Contains(t, raw, `"token"`)
	assert.Contains(t, raw, usr.ID)
}

func TestStore_LoginBadCredentials(t *testing.T) {
	store, client, _ := setup(t)
	client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")

	tests := []struct {
		name       string
		identifier string
		secret     string
	}{
		{name: "wrong password", identifier: "jane@test.com", secret: "wrong"},
		{name: "unknown identifier", identifier: "bad@x.com", secret: "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Login(context.Background(), tt.identifier, tt.secret)
			assert.True(t, record.IsAuthenticationFailed(err), "want authentication failure, got %v", err)
			assert.False(t, store.IsValid())
			assert.Nil(t, store.CurrentUser())
		})
	}
}

func TestStore_Logout(t *testing.T) {
	store, client, storage := setup(t)
	client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")

	ctx := context.Background()
	if _, err := store.Login(ctx, "jane", "s3cret"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	store.Logout(ctx)

	// in-memory clearing is immediate and synchronous
	assert.False(t, store.IsValid())
	assert.Nil(t, store.CurrentUser())

	raw, err := storage.GetItem(ctx, "pb_auth")
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	store, client, storage := setup(t)
	usr := client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")

	ctx := context.Background()
	if _, err := store.Login(ctx, "jane@test.com", "s3cret"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	// fresh process: new client, same durable storage
	client2 := dummyclient.Open()
	conf := &core.Config{}
	conf.Session.StorageKey = "pb_auth"
	store2 := session.NewStore(client2, storage, testutil.Logger{T: t}, conf)
	defer store2.Close()

	assert.False(t, store2.IsValid())
	store2.Restore(ctx)
	assert.True(t, store2.IsValid())
	if assert.NotNil(t, store2.CurrentUser()) {
		assert.Equal(t, usr.ID, store2.CurrentUser().ID)
		assert.Equal(t, "jane", store2.CurrentUser().Name)
	}
}

func TestStore_RestoreDegenerateStorage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty storage", raw: ""},
		{name: "malformed JSON", raw: "{not json"},
		{name: "missing token", raw: `{"model":{"id":"u1"}}`},
		{name: "missing model", raw: `{"token":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, storage := setup(t)
			ctx := context.Background()
			if tt.raw != "" {
				if err := storage.SetItem(ctx, "pb_auth", tt.raw); err != nil {
					t.Fatalf("SetItem() failed: %v", err)
				}
			}

			store.Restore(ctx) // must not panic nor error out
			assert.False(t, store.IsValid())
			assert.Nil(t, store.CurrentUser())
		})
	}
}

func TestStore_PersistenceFailureIsNotSurfaced(t *testing.T) {
	store, client, storage := setup(t)
	client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")
	storage.FailWith(assert.AnError)

	usr, err := store.Login(context.Background(), "jane", "s3cret")
	assert.NoError(t, err, "in-memory session stays authoritative")
	assert.Equal(t, "jane", usr.Name)
	assert.True(t, store.IsValid())
}

func TestStore_OnChange(t *testing.T) {
	store, client, _ := setup(t)
	client.AddUser(testutil.NewUser("u1", "jane", record.RoleStudent), "s3cret")

	var transitions []bool
	unsub := store.OnChange(func(token string, model *record.User) {
		transitions = append(transitions, token != "" && model != nil)
	})
	defer unsub()

	ctx := context.Background()
	if _, err := store.Login(ctx, "jane", "s3cret"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	store.Logout(ctx)

	assert.Equal(t, []bool{true, false}, transitions)
}
