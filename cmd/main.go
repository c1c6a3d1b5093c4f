package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"recap-video-gen/internal"
	"recap-video-gen/internal/assets"
	"recap-video-gen/internal/logging"
	"recap-video-gen/internal/media"
	"recap-video-gen/internal/model"
	"recap-video-gen/internal/publish"
	"recap-video-gen/internal/render"
	"recap-video-gen/internal/s3"
	"recap-video-gen/internal/voice"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (try multiple paths)
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		_ = godotenv.Load(path)
	}

	publishFlag := flag.Bool("publish", false, "upload finished videos to S3 and update the recap index")
	parallel := flag.Int("parallel", 1, "number of jobs rendered concurrently")
	srtFlag := flag.Bool("srt", false, "write an SRT sidecar next to each finished video")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: recap-video-gen [-publish] [-srt] [-parallel n] job.json [job.json ...]")
		os.Exit(2)
	}

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	if *srtFlag {
		cfg.EmitSRT = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	var s3c s3.Client
	if cfg.S3Configured() {
		s3c, err = s3.New(cfg)
		if err != nil {
			log.Errorf("s3 init: %v", err)
			os.Exit(1)
		}
	} else if *publishFlag {
		log.Errorf("-publish requires S3 configuration: %v", cfg.RequireS3())
		os.Exit(1)
	}

	fetcher := assets.NewFetcher(cfg, s3c, log)
	encoder := media.NewFFmpeg(cfg.EncodeConcurrency, log)

	// Jobs without a voice_audio ref synthesize it from their script.
	var synth *voice.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		synth = voice.NewSynthesizer(cfg, log)
	}

	renderer := render.NewRenderer(cfg, fetcher, encoder, synth, log)

	var publisher *publish.Publisher
	if *publishFlag {
		publisher = publish.NewPublisher(cfg, s3c, log)
	}

	if *parallel < 1 {
		*parallel = 1
	}

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, *parallel)
		mu     sync.Mutex
		failed int
	)

	for _, jobPath := range flag.Args() {
		wg.Add(1)
		go func(jobPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := runJob(ctx, jobPath, renderer, publisher, log); err != nil {
				log.Errorf("job %s: %v", jobPath, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(jobPath)
	}
	wg.Wait()

	if failed > 0 {
		log.Errorf("%d of %d jobs failed", failed, flag.NArg())
		os.Exit(1)
	}
	log.Infof("all %d jobs done", flag.NArg())
}

func runJob(ctx context.Context, jobPath string, renderer *render.Renderer, publisher *publish.Publisher, log *logging.Logger) error {
	b, err := os.ReadFile(jobPath)
	if err != nil {
		return err
	}
	var job model.RenderJob
	if err := json.Unmarshal(b, &job); err != nil {
		return fmt.Errorf("parse job: %w", err)
	}

	log.Infof("rendering %s -> %s", jobPath, job.OutputPath)
	if err := renderer.Render(ctx, &job); err != nil {
		return err
	}

	if publisher != nil {
		recap, err := publisher.Publish(ctx, &job)
		if err != nil {
			return err
		}
		log.Infof("published %s as %s", job.OutputPath, recap.VideoKey)
	}
	return nil
}
