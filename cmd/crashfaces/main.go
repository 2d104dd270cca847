package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/crashserver/crashfaces/internal/config"
	"github.com/crashserver/crashfaces/internal/engine"
	"github.com/crashserver/crashfaces/internal/source"
	"github.com/crashserver/crashfaces/internal/system"
	"github.com/crashserver/crashfaces/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/images", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Путь к папке с изображениями, одному изображению или PDF (по умолчанию: input/images/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	durationPtr := flag.Float64("duration", 45, "Общая длительность видео в секундах")
	frameDurPtr := flag.Float64("frame-duration", 1.0, "Длительность показа одного изображения в секундах")
	fpsPtr := flag.Int("fps", 24, "FPS")
	freezeProbPtr := flag.Float64("freeze-prob", 0.15, "Вероятность freeze-кадра [0..1]")
	freezeMinPtr := flag.Float64("freeze-min", 2.0, "Минимальный множитель длительности freeze-кадра")
	freezeMaxPtr := flag.Float64("freeze-max", 5.0, "Максимальный множитель длительности freeze-кадра")
	seedPtr := flag.String("seed", "", "Seed для воспроизводимой последовательности (число или строка)")
	sizePtr := flag.Int("size", 1080, "Размер квадратного кадра")
	presetPtr := flag.String("preset", "", "Пресет: instagram (1080), preview (480)")
	bwPtr := flag.Bool("bw", false, "Черно-белый режим")
	workersPtr := flag.Int("workers", 0, "Потоки оптимизации (0 - авто по CPU и памяти)")
	dpiPtr := flag.Int("dpi", 300, "DPI рендеринга страниц PDF")
	cacheDirPtr := flag.String("cache-dir", "optimized_cache", "Директория кэша оптимизированных изображений")
	noCachePtr := flag.Bool("no-cache", false, "Не использовать кэш (медленнее)")
	qrURLPtr := flag.String("qr-url", "", "URL для QR-заставки в конце видео")
	qrSecondsPtr := flag.Float64("qr-seconds", 2.0, "Длительность QR-заставки (сек)")
	recipePtr := flag.String("recipe", "", "YAML-рецепт рендера (перекрывает настройки таймлайна)")
	saveRecipePtr := flag.String("save-recipe", "", "Сохранить настройки рендера в YAML и продолжить")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	size := *sizePtr
	switch *presetPtr {
	case "instagram":
		size = 1080
	case "preview":
		size = 480
	}

	inputPath := *inputPtr
	if inputPath == "" {
		inputPath = "input/images"
	}

	var src source.Source
	var err error

	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(inputPath, *dpiPtr)
	} else {
		src, err = source.NewImageSource(inputPath)
	}

	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	if src.Count() == 0 {
		log.Fatalf("[-] Ошибка: в %s нет изображений (JPG/PNG)", inputPath)
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(strings.TrimSuffix(inputPath, "/"))
		ext := filepath.Ext(baseName)
		nameOnly := strings.TrimSuffix(baseName, ext)
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 21 // CRF для x264, с запасом под Instagram
		}
	}

	cfg := &config.Config{
		InputPath:     inputPath,
		OutputVideo:   finalOutput,
		CacheDir:      *cacheDirPtr,
		NoCache:       *noCachePtr,
		Duration:      *durationPtr,
		FPS:           *fpsPtr,
		FrameDuration: *frameDurPtr,
		FreezeProb:    *freezeProbPtr,
		FreezeMin:     *freezeMinPtr,
		FreezeMax:     *freezeMaxPtr,
		Seed:          *seedPtr,
		Size:          size,
		BlackWhite:    *bwPtr,
		Workers:       *workersPtr,
		DPI:           *dpiPtr,
		QRURL:         *qrURLPtr,
		QRSeconds:     *qrSecondsPtr,
		VideoEncoder:  encoderName,
		Quality:       quality,
		ShowStats:     *statsPtr,
	}

	if *recipePtr != "" {
		recipe, err := config.ReadRecipe(*recipePtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения рецепта: %v", err)
		}
		recipe.Apply(cfg)
		fmt.Printf("[*] Используется рецепт: %s\n", *recipePtr)
	}

	if *saveRecipePtr != "" {
		if err := config.WriteRecipe(config.RecipeOf(cfg), *saveRecipePtr); err != nil {
			log.Fatalf("[-] Ошибка сохранения рецепта: %v", err)
		}
		fmt.Printf("[*] Рецепт сохранен: %s\n", *saveRecipePtr)
	}

	// Ctrl+C останавливает рендер между кадрами
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ve := &video.FFmpegEncoder{}
	project := engine.NewSlideshowProject(cfg, src, ve)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}
