package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/config"
	"github.com/ivlev/picturebox/internal/scene"
	"github.com/ivlev/picturebox/internal/system"
	"github.com/ivlev/picturebox/internal/video"
)

const DefaultPattern = "output/frames/frame_%04d.png"

// Project renders one scene according to a Config: frames to disk, frames
// piped into ffmpeg, or a dry run that only counts primitives.
type Project struct {
	Config  *config.Config
	Scene   *scene.Scene
	Encoder video.VideoEncoder
}

func NewProject(cfg *config.Config, sc *scene.Scene, ve video.VideoEncoder) *Project {
	return &Project{
		Config:  cfg,
		Scene:   sc,
		Encoder: ve,
	}
}

// Report is what a run measured.
type Report struct {
	Frames     int
	Actors     int
	Render     time.Duration
	Encode     time.Duration
	Total      time.Duration
	Primitives int // dry run only
}

// plan resolves scene values against config overrides.
func (p *Project) plan() (canvas.RasterOptions, Options, error) {
	cfg, sc := p.Config, p.Scene
	ro, err := sc.RasterOptions()
	if err != nil {
		return ro, Options{}, err
	}
	if cfg.Width > 0 {
		ro.Width = cfg.Width
	}
	if cfg.Height > 0 {
		ro.Height = cfg.Height
	}

	opts := Options{Pattern: DefaultPattern, Shadow: sc.Shadow, KeepGoing: cfg.KeepGoing, Workers: cfg.Workers}
	opts.Start, opts.End = sc.Range()
	if cfg.FrameEnd > 0 {
		opts.Start, opts.End = cfg.FrameStart, cfg.FrameEnd
	}
	if sc.Output != "" {
		opts.Pattern = sc.Output
	}
	if cfg.OutputPattern != "" {
		opts.Pattern = cfg.OutputPattern
	}
	if cfg.Shadow != nil {
		opts.Shadow = *cfg.Shadow
	}
	if cfg.Stream {
		if cfg.OutputVideo == "" {
			return ro, opts, fmt.Errorf("stream mode needs an output video")
		}
		opts.Pattern = "%d"
	}
	return ro, opts, ValidatePattern(opts.Pattern)
}

func (p *Project) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	cfg := p.Config

	if p.Scene == nil {
		sc, err := scene.Read(cfg.ScenePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения сцены: %w", err)
		}
		p.Scene = sc
	}
	ro, opts, err := p.plan()
	if err != nil {
		return nil, err
	}
	actors, err := p.Scene.Build()
	if err != nil {
		return nil, err
	}
	rep := &Report{Frames: max(opts.End-opts.Start, 0), Actors: len(actors)}

	log.Info().Msg("--- [PROJECT: PICTUREBOX] ---")
	log.Info().Msgf("[*] Сцена: %s | Актёров: %d | Кадры: [%d, %d)", cfg.ScenePath, len(actors), opts.Start, opts.End)
	log.Info().Msgf("[*] Разрешение: %dx%d | Тени: %v | Потоки: %d", ro.Width, ro.Height, opts.Shadow, max(opts.Workers, 1))

	opts.Progress = func(done, total int) {
		if done%24 == 0 || done == total {
			log.Info().Msgf("[>] Ready: %d/%d", done, total)
		}
	}

	renderStart := time.Now()
	var renderErr error
	switch {
	case cfg.DryRun:
		rec := canvas.NewRecorder()
		renderErr = Run(ctx, rec, actors, opts)
		rep.Primitives = len(rec.Primitives())
		log.Info().Msgf("[*] Пробный прогон: %d примитивов, %d кадров", rep.Primitives, len(rec.Exports()))
	case cfg.Stream:
		renderErr = p.stream(ctx, ro, opts, actors)
	case opts.Workers > 1:
		renderErr = PerformParallel(ctx, pooledRasters(ro), actors, opts)
	default:
		var r *canvas.Raster
		if r, err = canvas.NewRaster(ro); err != nil {
			return nil, err
		}
		renderErr = Run(ctx, r, actors, opts)
	}
	rep.Render = time.Since(renderStart)
	if renderErr != nil && !cfg.KeepGoing {
		return rep, renderErr
	}

	if cfg.OutputVideo != "" && !cfg.DryRun && !cfg.Stream {
		log.Info().Msg("[*] Сборка финального видео...")
		encodeStart := time.Now()
		if err := p.Encoder.AssembleFrames(ctx, opts.Pattern, cfg.OutputVideo, cfg.Video(ro.Width, ro.Height, opts.Start)); err != nil {
			return rep, fmt.Errorf("ошибка сборки финального видео: %w", err)
		}
		rep.Encode = time.Since(encodeStart)
	}
	rep.Total = time.Since(startTime)

	if cfg.ShowStats {
		p.showStats(rep)
	}
	return rep, renderErr
}

func (p *Project) showStats(rep *Report) {
	fps := 0.0
	if rep.Total > 0 {
		fps = float64(rep.Frames) / rep.Total.Seconds()
	}
	st, err := system.Stats()
	if err != nil {
		log.Warn().Err(err).Msg("[!] Не удалось получить статистику процесса")
	}
	allocated, reused := system.PoolCounts()
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"RSS: %.1f MiB of %.1f GiB | CPU: %.1f%% | Goroutines: %d\n"+
			"Frame buffers: %d allocated, %d reused\n"+
			"----------------------------\n",
		p.Config.BuildVersion, rep.Total.Seconds(), rep.Render.Seconds(), rep.Encode.Seconds(), fps,
		float64(st.RSS)/(1<<20), float64(st.TotalMemory)/(1<<30), st.CPUPercent, st.Goroutines,
		allocated, reused,
	)
	fmt.Print(report)

	if p.Config.BenchmarkLog == "" {
		return
	}
	logEntry := fmt.Sprintf("[%s] Build: %s | Scene: %s | Frames: %d | Actors: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.ScenePath),
		rep.Frames,
		rep.Actors,
		rep.Total.Seconds(),
		rep.Render.Seconds(),
		rep.Encode.Seconds(),
		fps,
	)
	f, err := os.OpenFile(p.Config.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn().Err(err).Msgf("[!] Не удалось записать %s", p.Config.BenchmarkLog)
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}
