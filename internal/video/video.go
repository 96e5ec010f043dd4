package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/picturebox/internal/config"
)

// VideoEncoder turns rendered frames into a video file.
type VideoEncoder interface {
	AssembleFrames(ctx context.Context, pattern string, output string, params config.VideoParams) error
	Stream(ctx context.Context, output string, params config.VideoParams) (*Stream, error)
}

type FFmpegEncoder struct {
	Binary string // defaults to "ffmpeg" from PATH
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "ffmpeg"
}

// qualityArgs maps one quality knob onto each encoder's own setting.
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую. Используем битрейт.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func encoderOr(name string) string {
	if name == "" {
		return "libx264"
	}
	return name
}

func (e *FFmpegEncoder) assembleArgs(pattern, output string, params config.VideoParams) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-start_number", fmt.Sprintf("%d", params.StartFrame),
		"-i", pattern,
		"-c:v", encoderOr(params.Encoder),
		"-pix_fmt", "yuv420p",
	}
	args = append(args, qualityArgs(encoderOr(params.Encoder), params.Quality)...)
	return append(args, output)
}

// AssembleFrames encodes the PNG sequence named by pattern (one %d verb,
// as image2 expects) starting at params.StartFrame.
func (e *FFmpegEncoder) AssembleFrames(ctx context.Context, pattern string, output string, params config.VideoParams) error {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, e.binary(), e.assembleArgs(pattern, output, params)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg assemble error: %w, output: %s", err, string(out))
	}
	return nil
}

func (e *FFmpegEncoder) streamArgs(output string, params config.VideoParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		"-c:v", encoderOr(params.Encoder),
		"-pix_fmt", "yuv420p",
	}
	args = append(args, qualityArgs(encoderOr(params.Encoder), params.Quality)...)
	return append(args, output)
}

// Stream starts ffmpeg reading raw RGBA frames from stdin, so frames never
// touch the disk.
func (e *FFmpegEncoder) Stream(ctx context.Context, output string, params config.VideoParams) (*Stream, error) {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, e.binary(), e.streamArgs(output, params)...)
	s := &Stream{cmd: cmd, width: params.Width, height: params.Height}
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	s.stdin = stdin
	return s, nil
}

// Stream is a running ffmpeg process fed one frame at a time.
type Stream struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	log           bytes.Buffer
	width, height int
	frames        int
}

func (s *Stream) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

// Frames counts frames written so far.
func (s *Stream) Frames() int { return s.frames }

// Close ends the input and waits for ffmpeg to finish the file.
func (s *Stream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, s.log.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Уже RGBA со стандартным шагом (stride) пишем как есть
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
