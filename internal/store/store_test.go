package store_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/atmx/caravan/internal/store"
)

func openSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]store.Store {
	return map[string]store.Store{
		"memory": store.NewMemoryStore(),
		"sqlite": openSQLite(t),
	}
}

func TestStore_GetPut(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "slot:0"); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("empty Get err = %v, want ErrNotFound", err)
			}
			if err := s.Put(ctx, "slot:0", []byte(`{"v":1}`)); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, "slot:0", []byte(`{"v":2}`)); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, "slot:0")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != `{"v":2}` {
				t.Errorf("Get = %s, want the latest value", got)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "k", []byte("v")); err != nil {
				t.Fatal(err)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Get after Delete err = %v", err)
			}
			if err := s.Delete(ctx, "never-set"); err != nil {
				t.Errorf("Delete of absent key: %v", err)
			}
		})
	}
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"save:slot:3", "save:slot:0", "leaderboard:entries", "save_other"} {
				if err := s.Put(ctx, k, []byte("x")); err != nil {
					t.Fatal(err)
				}
			}
			got, err := s.Keys(ctx, "save:")
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"save:slot:0", "save:slot:3"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Keys = %v, want %v", got, want)
			}

			none, err := s.Keys(ctx, "nothing:")
			if err != nil || len(none) != 0 {
				t.Errorf("Keys(nothing) = %v, %v", none, err)
			}
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	v := []byte("abc")
	if err := s.Put(ctx, "k", v); err != nil {
		t.Fatal(err)
	}
	v[0] = 'z'
	got, _ := s.Get(ctx, "k")
	got[1] = 'z'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %s", again)
	}
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	if _, err := store.OpenSQLite(context.Background(), " "); err == nil {
		t.Error("expected an error for a blank path")
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/caravan.db"

	s, err := store.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", []byte("kept")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Migrations must be idempotent across opens.
	s, err = store.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "kept" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}
