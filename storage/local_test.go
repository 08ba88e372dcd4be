package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestNewLocalStoreCreatesDir(t *testing.T) {
	store := newLocalStore(t)

	info, err := os.Stat(store.Dir())
	if err != nil {
		t.Fatalf("stat upload dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", store.Dir())
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)
	content := []byte("0123456789")

	before := time.Now().Add(-time.Second)
	n, err := store.Put(ctx, "1-report.pdf", bytes.NewReader(content), "application/pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("Put wrote %d bytes, want %d", n, len(content))
	}

	objects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("List returned %d objects, want 1", len(objects))
	}
	obj := objects[0]
	if obj.Name != "1-report.pdf" || obj.Size != 10 {
		t.Errorf("List object = %+v", obj)
	}
	if obj.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v is before the upload started (%v)", obj.CreatedAt, before)
	}

	rc, _, err := store.Open(ctx, "1-report.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Open content = %q, want %q", got, content)
	}

	if err := store.Delete(ctx, "1-report.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "1-report.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if _, err := store.Stat(ctx, "1-report.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat after delete = %v, want ErrNotFound", err)
	}

	objects, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("List after delete returned %d objects", len(objects))
	}
}

func TestLocalStoreListSkipsDirectories(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	if err := os.Mkdir(filepath.Join(store.Dir(), "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put(ctx, "1-a.txt", strings.NewReader("a"), ""); err != nil {
		t.Fatal(err)
	}

	objects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 1 || objects[0].Name != "1-a.txt" {
		t.Errorf("List = %+v, want only 1-a.txt", objects)
	}

	if _, err := store.Stat(ctx, "nested"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat on directory = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	outside := filepath.Join(filepath.Dir(store.Dir()), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"../secret.txt", "..", ""} {
		if _, err := store.Stat(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Stat(%q) = %v, want ErrInvalidName", name, err)
		}
		if err := store.Delete(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Delete(%q) = %v, want ErrInvalidName", name, err)
		}
		if _, err := store.Put(ctx, name, strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) = %v, want ErrInvalidName", name, err)
		}
	}

	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside the store was touched: %v", err)
	}
}

func TestLocalStorePutIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	if _, err := store.Put(ctx, "1-a.txt", strings.NewReader("first"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put(ctx, "1-a.txt", strings.NewReader("second"), ""); !errors.Is(err, ErrExists) {
		t.Fatalf("second Put = %v, want ErrExists", err)
	}

	got, err := os.ReadFile(filepath.Join(store.Dir(), "1-a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("content = %q, existing file was overwritten", got)
	}
}

func TestLocalStoreIgnoresSymlinks(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(store.Dir(), "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := store.Stat(ctx, "link"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat(link) = %v, want ErrNotFound", err)
	}
	if _, _, err := store.Open(ctx, "link"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(link) = %v, want ErrNotFound", err)
	}
	objects, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 0 {
		t.Errorf("List = %+v", objects)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLocalStorePutRemovesPartialFile(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	r := io.MultiReader(strings.NewReader("partial"), failingReader{})
	if _, err := store.Put(ctx, "1-broken.bin", r, ""); err == nil {
		t.Fatal("Put succeeded with a failing reader")
	}
	if _, err := store.Stat(ctx, "1-broken.bin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestLocalStoreListMissingDir(t *testing.T) {
	store := newLocalStore(t)
	if err := os.RemoveAll(store.Dir()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.List(context.Background()); err == nil {
		t.Error("List on a removed directory returned no error")
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping on a removed directory returned no error")
	}
}
