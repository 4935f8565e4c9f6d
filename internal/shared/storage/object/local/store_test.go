package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"pixology-backend/internal/shared/storage/object"
)

func TestPutAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	res, err := store.Put(context.Background(), object.PutInput{
		Key:         "users/u-1/images/abc.png",
		ContentType: "image/png",
		Body:        bytes.NewReader([]byte("png-bytes")),
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if res.SizeBytes != int64(len("png-bytes")) {
		t.Fatalf("expected size %d, got %d", len("png-bytes"), res.SizeBytes)
	}
	if res.URL != "http://localhost:8080/api/v1/artifacts/users/u-1/images/abc.png" {
		t.Fatalf("unexpected url: %s", res.URL)
	}

	body, err := store.Open(context.Background(), "users/u-1/images/abc.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected body: %s", data)
	}
}

func TestPutRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	for _, key := range []string{"../outside", "", "/", "users/../../etc/passwd"} {
		_, err := store.Put(context.Background(), object.PutInput{Key: key, Body: strings.NewReader("x")})
		if err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestOpenMissingObject(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	if _, err := store.Open(context.Background(), "users/u-1/images/missing.png"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
