package config

// Config collects everything a render run needs. Zero values mean "take it
// from the scene file".
type Config struct {
	ScenePath     string
	OutputPattern string // frame file pattern with one %d verb
	OutputVideo   string
	FrameStart    int
	FrameEnd      int
	Width         int
	Height        int
	Shadow        *bool
	Workers       int
	KeepGoing     bool
	DryRun        bool
	Stream        bool // pipe frames straight into ffmpeg, no PNG files
	FPS           int
	VideoEncoder  string
	Quality       int
	ShowStats     bool
	BenchmarkLog  string
	BuildVersion  string
}

// VideoParams describes how a frame sequence becomes a video file.
type VideoParams struct {
	Width, Height int
	FPS           int
	StartFrame    int
	Encoder       string
	Quality       int
}

// Video derives the encoding parameters from the run settings.
func (c *Config) Video(width, height, start int) VideoParams {
	return VideoParams{
		Width:      width,
		Height:     height,
		FPS:        c.FPS,
		StartFrame: start,
		Encoder:    c.VideoEncoder,
		Quality:    c.Quality,
	}
}
