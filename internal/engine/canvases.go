package engine

import (
	"context"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/system"
	"github.com/ivlev/picturebox/internal/video"
)

// pooledRaster is a worker canvas whose buffer goes back to the shared
// image pool when the worker finishes.
type pooledRaster struct {
	*canvas.Raster
}

func (r pooledRaster) Release() { system.PutImage(r.Image()) }

func pooledRasters(ro canvas.RasterOptions) CanvasFactory {
	return func() (canvas.Canvas, error) {
		img := system.GetImage(image.Rect(0, 0, ro.Width, ro.Height))
		r, err := canvas.NewRasterOn(img, ro)
		if err != nil {
			system.PutImage(img)
			return nil, err
		}
		return pooledRaster{r}, nil
	}
}

// streamRaster exports frames into a running ffmpeg stream instead of
// writing files.
type streamRaster struct {
	*canvas.Raster
	out *video.Stream
}

func (r streamRaster) ExportRaster(string) error {
	return r.out.WriteFrame(r.Image())
}

func (p *Project) stream(ctx context.Context, ro canvas.RasterOptions, opts Options, actors []*actor.Actor) error {
	r, err := canvas.NewRaster(ro)
	if err != nil {
		return err
	}
	out, err := p.Encoder.Stream(ctx, p.Config.OutputVideo, p.Config.Video(ro.Width, ro.Height, opts.Start))
	if err != nil {
		return err
	}
	runErr := Run(ctx, streamRaster{r, out}, actors, opts)
	if err := out.Close(); err != nil && runErr == nil {
		return err
	}
	log.Info().Msgf("[*] В FFmpeg передано кадров: %d", out.Frames())
	return runErr
}
