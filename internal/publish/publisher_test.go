package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recap-video-gen/internal"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/model"
	"recap-video-gen/internal/s3"
)

// fakeS3 keeps objects in a map, enough to exercise upload and the
// read-modify-write index cycle.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutBytes(_ context.Context, key string, b []byte, _ string) error {
	f.objects[key] = b
	return nil
}

func (f *fakeS3) GetBytes(_ context.Context, key string) ([]byte, string, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, "", s3.ErrNotExist
	}
	return b, "", nil
}

func (f *fakeS3) GetReader(_ context.Context, key string) (*s3.ObjectReader, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, s3.ErrNotExist
	}
	return &s3.ObjectReader{Reader: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

func (f *fakeS3) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeS3) ReadJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := f.objects[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (f *fakeS3) WriteJSON(_ context.Context, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func testJob(t *testing.T, content string) *model.RenderJob {
	t.Helper()
	out := filepath.Join(t.TempDir(), "recap.mp4")
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &model.RenderJob{
		OutputPath:           out,
		Title:                "Weekly Recap",
		AudioDurationSeconds: 42,
	}
}

func testConfig() internal.Config {
	return internal.Config{RecapsJSONKey: "recaps.json", RecapsPrefix: "recaps/"}
}

func TestPublish(t *testing.T) {
	store := newFakeS3()
	p := NewPublisher(testConfig(), store, logging.Discard())
	job := testJob(t, "finished video")

	recap, err := p.Publish(context.Background(), job)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if recap.VideoKey != "recaps/recap.mp4" {
		t.Errorf("VideoKey = %q", recap.VideoKey)
	}
	if string(store.objects[recap.VideoKey]) != "finished video" {
		t.Error("uploaded object does not match the output file")
	}
	if recap.Title != "Weekly Recap" || recap.DurationS != 42 {
		t.Errorf("recap metadata = %+v", recap)
	}
	if len(recap.SHA256) != 64 || recap.ID != recap.SHA256[:12] {
		t.Errorf("digest fields inconsistent: id=%q sha=%q", recap.ID, recap.SHA256)
	}

	var idx model.RecapIndex
	if err := json.Unmarshal(store.objects["recaps.json"], &idx); err != nil {
		t.Fatalf("index is not valid JSON: %v", err)
	}
	if len(idx.Items) != 1 || idx.Items[0].ID != recap.ID {
		t.Errorf("index items = %+v", idx.Items)
	}
	if time.Since(idx.UpdatedAt) > time.Minute {
		t.Errorf("UpdatedAt not refreshed: %v", idx.UpdatedAt)
	}
}

func TestPublishReplacesSameContent(t *testing.T) {
	store := newFakeS3()
	p := NewPublisher(testConfig(), store, logging.Discard())
	job := testJob(t, "same bytes")

	if _, err := p.Publish(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	var idx model.RecapIndex
	if err := json.Unmarshal(store.objects["recaps.json"], &idx); err != nil {
		t.Fatal(err)
	}
	if len(idx.Items) != 1 {
		t.Errorf("re-publishing identical content duplicated the index: %d items", len(idx.Items))
	}
}

func TestPublishAppendsDistinctContent(t *testing.T) {
	store := newFakeS3()
	p := NewPublisher(testConfig(), store, logging.Discard())

	if _, err := p.Publish(context.Background(), testJob(t, "first")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish(context.Background(), testJob(t, "second")); err != nil {
		t.Fatal(err)
	}

	var idx model.RecapIndex
	if err := json.Unmarshal(store.objects["recaps.json"], &idx); err != nil {
		t.Fatal(err)
	}
	if len(idx.Items) != 2 {
		t.Errorf("index items = %d, want 2", len(idx.Items))
	}
}

func TestPublishMissingOutput(t *testing.T) {
	p := NewPublisher(testConfig(), newFakeS3(), logging.Discard())
	job := &model.RenderJob{OutputPath: filepath.Join(t.TempDir(), "missing.mp4")}
	if _, err := p.Publish(context.Background(), job); err == nil {
		t.Error("expected error for missing output file")
	}
}
