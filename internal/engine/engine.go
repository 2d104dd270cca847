package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/crashserver/crashfaces/internal/cache"
	"github.com/crashserver/crashfaces/internal/config"
	"github.com/crashserver/crashfaces/internal/frames"
	"github.com/crashserver/crashfaces/internal/outro"
	"github.com/crashserver/crashfaces/internal/sequence"
	"github.com/crashserver/crashfaces/internal/source"
	"github.com/crashserver/crashfaces/internal/system"
	"github.com/crashserver/crashfaces/internal/video"
)

type SlideshowProject struct {
	Config  *config.Config
	Source  source.Source
	Encoder video.VideoEncoder
	tempDir string
}

func NewSlideshowProject(cfg *config.Config, src source.Source, ve video.VideoEncoder) *SlideshowProject {
	return &SlideshowProject{
		Config:  cfg,
		Source:  src,
		Encoder: ve,
	}
}

// GeneratorConfig translates the user-facing settings into the strict
// core config. The freeze multiplier range is clamped here, at the
// caller-facing layer; the generator itself rejects invalid values.
func (p *SlideshowProject) GeneratorConfig() sequence.GeneratorConfig {
	cfg := p.Config

	freezeMin := math.Max(cfg.FreezeMin, 1.0)
	freezeMax := cfg.FreezeMax
	if freezeMax < freezeMin {
		freezeMax = freezeMin
	}

	return sequence.GeneratorConfig{
		TotalFrames:   int(cfg.Duration * float64(cfg.FPS)),
		FPS:           cfg.FPS,
		FrameDuration: cfg.FrameDuration,
		FreezeProb:    cfg.FreezeProb,
		FreezeMin:     freezeMin,
		FreezeMax:     freezeMax,
		Seed:          sequence.ParseSeed(cfg.Seed),
	}
}

func (p *SlideshowProject) Run(ctx context.Context) error {
	startTime := time.Now()
	var planTime, framesTime, encodeTime time.Duration

	var err error
	p.tempDir, err = os.MkdirTemp("", "crashfaces_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	// 1. План таймлайна
	planStart := time.Now()
	genCfg := p.GeneratorConfig()

	var rng *rand.Rand
	if genCfg.Seed != nil {
		rng = rand.New(rand.NewSource(*genCfg.Seed))
		fmt.Printf("[*] Seed: %d (результат воспроизводим)\n", *genCfg.Seed)
	}

	tl, err := sequence.Generate(genCfg, p.Source.Refs(), rng)
	if err != nil {
		return fmt.Errorf("план таймлайна: %w", err)
	}
	planTime = time.Since(planStart)

	st := tl.Stats()
	fmt.Println("--- [PROJECT: SLIDESHOW ENGINE] ---")
	fmt.Printf("[*] Источник: %s | Изображений в пуле: %d\n", p.Config.InputPath, p.Source.Count())
	fmt.Printf("[*] Кадров: %d @ %d FPS (%.2fs) | Размер: %dx%d\n",
		tl.TotalFrames, tl.FPS, tl.DurationSeconds(), p.Config.Size, p.Config.Size)
	fmt.Printf("[*] Сегментов: %d (обычных %d, freeze %d, %.1f%% кадров во freeze)\n",
		st.Segments, st.NormalCount, st.FreezeCount,
		100*float64(st.FreezeFrames)/float64(tl.TotalFrames))
	fmt.Println("-----------------------------")

	// 2. Кэш оптимизированных изображений
	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.RecommendedWorkers(p.Config.Size)
	}

	var store *cache.Cache
	if !p.Config.NoCache {
		store = cache.New(p.Config.CacheDir, p.Config.InputPath, p.Config.Size, p.Config.BlackWhite)
		fmt.Printf("[*] Прогрев кэша (%d потоков): %s\n", workers, store.Dir)
		if err := store.Warm(ctx, p.Source, workers); err != nil {
			return fmt.Errorf("прогрев кэша: %w", err)
		}
	} else {
		fmt.Println("[*] Кэш отключен, изображения обрабатываются напрямую")
	}

	// 3. Материализация кадров
	framesStart := time.Now()
	mat := &frames.Materializer{
		Source:     p.Source,
		Cache:      store,
		Size:       p.Config.Size,
		BlackWhite: p.Config.BlackWhite,
		Progress: func(done, total int) {
			if done%20 == 0 || done == total {
				fmt.Printf("[>] Кадры: %d/%d\n", done, total)
			}
		},
	}
	if err := mat.Write(ctx, tl, p.tempDir); err != nil {
		return fmt.Errorf("материализация кадров: %w", err)
	}
	framesTime = time.Since(framesStart)

	// 4. Опциональная QR-заставка в конце
	if p.Config.QRURL != "" && p.Config.QRSeconds > 0 {
		cardPath := filepath.Join(p.tempDir, "outro_card.jpg")
		if err := outro.WriteCard(p.Config.QRURL, cardPath, p.Config.Size, 85); err != nil {
			return fmt.Errorf("QR-заставка: %w", err)
		}
		n := int(p.Config.QRSeconds * float64(p.Config.FPS))
		if n < 1 {
			n = 1
		}
		if err := frames.WriteStill(ctx, cardPath, p.tempDir, tl.TotalFrames, n); err != nil {
			return fmt.Errorf("кадры QR-заставки: %w", err)
		}
		fmt.Printf("[*] Добавлена QR-заставка: %s (%.1fs)\n", p.Config.QRURL, p.Config.QRSeconds)
	}

	// 5. Кодирование
	fmt.Println("[*] Сборка финального видео...")
	encodeStart := time.Now()
	params := config.EncodeParams{
		Size:    p.Config.Size,
		FPS:     p.Config.FPS,
		Encoder: p.Config.VideoEncoder,
		Quality: p.Config.Quality,
	}
	if err := p.Encoder.Encode(ctx, p.tempDir, p.Config.OutputVideo, params); err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	encodeTime = time.Since(encodeStart)

	totalTime := time.Since(startTime)
	effFPS := float64(tl.TotalFrames) / totalTime.Seconds()

	if p.Config.ShowStats {
		report := fmt.Sprintf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Total Time: %.2fs\n"+
				"Planning: %.3fs\n"+
				"Frames (I/O): %.2fs\n"+
				"Encoding: %.2fs\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			p.Config.BuildVersion, totalTime.Seconds(), planTime.Seconds(),
			framesTime.Seconds(), encodeTime.Seconds(), effFPS,
		)
		fmt.Print(report)

		// Логирование в файл
		logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Segments: %d | Total: %.2fs | Frames I/O: %.2fs | Encode: %.2fs | FPS: %.2f\n",
			time.Now().Format("2006-01-02 15:04:05"),
			p.Config.BuildVersion,
			filepath.Base(p.Config.InputPath),
			tl.TotalFrames,
			st.Segments,
			totalTime.Seconds(),
			framesTime.Seconds(),
			encodeTime.Seconds(),
			effFPS,
		)

		f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			f.WriteString(logEntry)
			f.Close()
		} else {
			fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		}
	}

	return nil
}
