package persist

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreSaveLoad(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	defer st.Close()

	if _, err := st.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Load before save error = %v, want ErrNoSnapshot", err)
	}

	want := []byte(`{"wordcount":{"today":500}}`)
	if err := st.Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Load = %s, want %s", got, want)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	defer st.Close()

	for i, snap := range []string{`{"v":1}`, `{"v":2}`, `{"v":3}`} {
		if err := st.Save([]byte(snap)); err != nil {
			t.Fatalf("Save %d error: %v", i, err)
		}
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != `{"v":3}` {
		t.Errorf("Load = %s, want latest snapshot", got)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	st, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	if err := st.Save([]byte(`{"kept":true}`)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	st2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer st2.Close()

	got, err := st2.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != `{"kept":true}` {
		t.Errorf("Load after reopen = %s", got)
	}
}

func TestSQLiteStoreClosed(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}

	if err := st.Save([]byte(`{}`)); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Save after close error = %v, want ErrStoreClosed", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Load after close error = %v, want ErrStoreClosed", err)
	}
}
