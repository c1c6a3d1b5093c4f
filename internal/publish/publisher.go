package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"recap-video-gen/internal"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/model"
	"recap-video-gen/internal/s3"
)

// Publisher uploads finished videos to object storage and keeps the
// recap index in sync.
type Publisher struct {
	cfg internal.Config
	s3  s3.Client
	log *logging.Logger
}

func NewPublisher(cfg internal.Config, s3c s3.Client, log *logging.Logger) *Publisher {
	return &Publisher{cfg: cfg, s3: s3c, log: log}
}

// Publish uploads the job's output video and records it in the index.
// The recap ID is derived from the file's content digest, so
// re-publishing an identical video replaces its index entry instead of
// duplicating it.
func (p *Publisher) Publish(ctx context.Context, job *model.RenderJob) (*model.Recap, error) {
	digest, err := fileSHA256(job.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("publish: hash %s: %w", job.OutputPath, err)
	}

	key := p.cfg.RecapsPrefix + filepath.Base(job.OutputPath)
	f, err := os.Open(job.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("publish: open %s: %w", job.OutputPath, err)
	}
	defer f.Close()

	if err := p.s3.Upload(ctx, key, f, "video/mp4"); err != nil {
		return nil, fmt.Errorf("publish: upload %s: %w", key, err)
	}
	p.log.Infof("publish: uploaded %s", key)

	title := job.Title
	if title == "" {
		title = filepath.Base(job.OutputPath)
	}
	recap := model.Recap{
		ID:        digest[:12],
		Title:     title,
		VideoKey:  key,
		DurationS: job.AudioDurationSeconds,
		CreatedAt: time.Now().UTC(),
		SHA256:    digest,
	}

	if err := p.updateIndex(ctx, recap); err != nil {
		return nil, err
	}
	return &recap, nil
}

func (p *Publisher) updateIndex(ctx context.Context, recap model.Recap) error {
	var idx model.RecapIndex
	found, err := p.s3.ReadJSON(ctx, p.cfg.RecapsJSONKey, &idx)
	if err != nil {
		return fmt.Errorf("publish: read index: %w", err)
	}
	if !found {
		p.log.Infof("publish: creating index %s", p.cfg.RecapsJSONKey)
	}

	replaced := false
	for i := range idx.Items {
		if idx.Items[i].ID == recap.ID {
			idx.Items[i] = recap
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Items = append(idx.Items, recap)
	}
	idx.UpdatedAt = time.Now().UTC()

	if err := p.s3.WriteJSON(ctx, p.cfg.RecapsJSONKey, idx); err != nil {
		return fmt.Errorf("publish: write index: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
