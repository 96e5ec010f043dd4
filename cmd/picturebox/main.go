package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/picturebox/internal/cast"
	"github.com/ivlev/picturebox/internal/config"
	"github.com/ivlev/picturebox/internal/engine"
	"github.com/ivlev/picturebox/internal/interp"
	"github.com/ivlev/picturebox/internal/scene"
	"github.com/ivlev/picturebox/internal/system"
	"github.com/ivlev/picturebox/internal/video"
)

var buildVersion = "dev"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	scenePtr := flag.String("scene", "", "Путь к сцене YAML (по умолчанию: самый свежий файл в input/scenes/)")
	initPtr := flag.String("init", "", "Записать демонстрационную сцену по этому пути и выйти")
	outputPtr := flag.String("output", "", "Шаблон имён кадров с одним %d (по умолчанию из сцены)")
	videoPtr := flag.Bool("video", false, "Собрать видео из кадров через FFmpeg")
	videoOutPtr := flag.String("video-out", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	streamPtr := flag.Bool("stream", false, "Передавать кадры в FFmpeg напрямую, без PNG")
	startPtr := flag.Int("start", 0, "Первый кадр (вместе с -end переопределяет сцену)")
	endPtr := flag.Int("end", 0, "Кадр после последнего (0 - из сцены)")
	widthPtr := flag.Int("width", 0, "Ширина (0 - из сцены)")
	heightPtr := flag.Int("height", 0, "Высота (0 - из сцены)")
	shadowPtr := flag.String("shadow", "scene", "Тени: scene, on, off")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	keepGoingPtr := flag.Bool("keep-going", false, "Не останавливаться на ошибке актёра")
	dryRunPtr := flag.Bool("dry-run", false, "Прогон без растра: только подсчёт примитивов")
	fpsPtr := flag.Int("fps", interp.FPS, "FPS видео")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности и дописать benchmark.log")
	listPtr := flag.Bool("list", false, "Показать виды актёров, функции и кривые и выйти")
	verbosePtr := flag.Bool("v", false, "Подробный лог")

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbosePtr {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *listPtr {
		printCatalog()
		return
	}

	if *initPtr != "" {
		if err := writeExample(*initPtr); err != nil {
			log.Fatal().Err(err).Msg("[-] Ошибка записи сцены")
		}
		log.Info().Msgf("[+++] Успех! Сцена сохранена: %s", *initPtr)
		return
	}

	for _, d := range []string{"input/scenes", "output"} {
		os.MkdirAll(d, 0755)
	}

	scenePath := *scenePtr
	if scenePath == "" {
		latest, err := scene.FindLatest("input/scenes")
		if err != nil {
			log.Fatal().Err(err).Msg("[-] Ошибка. Положите сцену в input/scenes/ или создайте её через -init")
		}
		scenePath = latest
		log.Info().Msgf("[*] Выбрана сцена: %s", scenePath)
	}

	sc, err := scene.Read(scenePath)
	if err != nil {
		log.Fatal().Err(err).Msg("[-] Ошибка чтения сцены")
	}

	cfg := &config.Config{
		ScenePath:     scenePath,
		OutputPattern: *outputPtr,
		FrameStart:    *startPtr,
		FrameEnd:      *endPtr,
		Width:         *widthPtr,
		Height:        *heightPtr,
		Workers:       *workersPtr,
		KeepGoing:     *keepGoingPtr,
		DryRun:        *dryRunPtr,
		Stream:        *streamPtr,
		FPS:           *fpsPtr,
		ShowStats:     *statsPtr,
		BenchmarkLog:  "benchmark.log",
		BuildVersion:  buildVersion,
	}

	switch *shadowPtr {
	case "scene":
	case "on", "off":
		on := *shadowPtr == "on"
		cfg.Shadow = &on
	default:
		log.Fatal().Msgf("[-] Неизвестный режим теней %q", *shadowPtr)
	}

	if *videoPtr || *streamPtr {
		cfg.OutputVideo = *videoOutPtr
		if cfg.OutputVideo == "" {
			cfg.OutputVideo = autoVideoPath(scenePath)
		}
		cfg.VideoEncoder = system.GetBestH264Encoder()
		if cfg.VideoEncoder != "libx264" {
			log.Info().Msgf("[*] Обнаружено аппаратное ускорение: %s", cfg.VideoEncoder)
		}
		cfg.Quality = *qualityPtr
		if cfg.Quality == 0 {
			cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(cfg, sc, &video.FFmpegEncoder{})
	if _, err := project.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Fatal().Msg("[-] Прервано")
		}
		log.Fatal().Err(err).Msg("[-] Ошибка проекта")
	}

	if cfg.OutputVideo != "" && !cfg.DryRun {
		log.Info().Msgf("[+++] Успех! Результат: %s", cfg.OutputVideo)
	} else {
		log.Info().Msg("[+++] Успех! Кадры готовы")
	}
}

func autoVideoPath(scenePath string) string {
	baseName := filepath.Base(scenePath)
	nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	cleanName := strings.ReplaceAll(nameOnly, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
}

func writeExample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, scene.Example(), 0644)
}

func printCatalog() {
	fmt.Println("kinds:    ", strings.Join(cast.Kinds(), ", "))
	fmt.Println("functions:", strings.Join(cast.FunctionNames(), ", "))
	fmt.Println("fields:   ", strings.Join(cast.FieldNames(), ", "))
	fmt.Println("easings:  ", strings.Join(interp.EaseNames(), ", "))
}
