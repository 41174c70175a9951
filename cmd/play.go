package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"

	"github.com/drgolem/tmediago/internal/config"
	"github.com/drgolem/tmediago/internal/fetcher"
	"github.com/drgolem/tmediago/internal/render"
	"github.com/drgolem/tmediago/internal/render/ansi"
	"github.com/drgolem/tmediago/internal/videoconv"
)

var (
	playDeviceIdx   int
	playBufferSize  uint64
	playFrames      int
	playVolume      float64
	playCols        int
	playRows        int
	playOutputMode  string
)

// playCmd plays a single media file.
var playCmd = &cobra.Command{
	Use:   "play <media_file>",
	Short: "Play a single media file (audio, video, or image)",
	Long: `Play a media file using the terminal engine: audio out a PortAudio
device, video (or an audio visualizer) rendered as colored terminal glyphs.

Examples:
  tmediago play song.mp3
  tmediago play clip.mp4 --device 0 --cols 120 --rows 40
  tmediago play cover.png --output-mode bg`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&playDeviceIdx, "device", "d", 1, "Audio output device index")
	playCmd.Flags().Uint64VarP(&playBufferSize, "buffer", "b", 262144, "Ring buffer size in frames (power of 2)")
	playCmd.Flags().IntVarP(&playFrames, "frames", "f", 512, "Audio frames per buffer")
	playCmd.Flags().Float64Var(&playVolume, "volume", 1.0, "Initial volume [0.0, 1.0]")
	playCmd.Flags().IntVar(&playCols, "cols", 80, "Terminal columns to render into")
	playCmd.Flags().IntVar(&playRows, "rows", 24, "Terminal rows to render into")
	playCmd.Flags().StringVar(&playOutputMode, "output-mode", "color", "Video output mode: plain, bg, or color")
}

func parseOutputMode(s string) render.OutputMode {
	switch s {
	case "plain":
		return render.Plain
	case "bg":
		return render.BG
	default:
		return render.Color
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	path := args[0]

	cfg := config.Default()
	cfg.DeviceIndex = playDeviceIdx
	cfg.BufferFrames = playBufferSize
	cfg.FramesPerBuffer = playFrames
	cfg.Volume = playVolume
	cfg.Cols = playCols
	cfg.Rows = playRows
	cfg.OutputMode = parseOutputMode(playOutputMode)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Error("file not found", "path", path)
		os.Exit(1)
	}

	logger.Info("initializing audio backend")
	if err := portaudio.Initialize(); err != nil {
		logger.Error("failed to initialize audio backend", "error", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	mf, err := fetcher.New(path, fetcher.Config{
		AudioDeviceIndex:   cfg.DeviceIndex,
		FramesPerBuffer:    cfg.FramesPerBuffer,
		RingCapacityFrames: cfg.BufferFrames,
		ScaleWidth:         cfg.Cols,
		ScaleHeight:        cfg.Rows,
		Algorithm:          videoconv.BoxSampling,
	})
	if err != nil {
		logger.Error("failed to open media", "path", path, "error", err)
		os.Exit(1)
	}
	defer mf.Close()

	mf.SetVolume(cfg.Volume)

	renderer := ansi.New(cfg.Cols, cfg.Rows, cfg.OutputMode)
	defer renderer.Close()

	logger.Info("starting playback", "path", path, "kind", mf.Kind().String())
	if err := mf.Begin(nowSeconds()); err != nil {
		logger.Error("failed to start playback", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_ = mf.Join()
		close(done)
	}()

	renderTicker := time.NewTicker(33 * time.Millisecond)
	defer renderTicker.Stop()

loop:
	for {
		select {
		case <-done:
			break loop
		case sig := <-sigChan:
			logger.Info("signal received, stopping playback", "signal", sig)
			mf.Shutdown()
		case <-renderTicker.C:
			drawFrame(renderer, mf)
		}
	}

	if err := mf.Err(); err != nil {
		logger.Error("playback ended with error", "error", err)
		os.Exit(1)
	}
	logger.Info("playback complete")
}

func drawFrame(renderer *ansi.Renderer, mf *fetcher.MediaFetcher) {
	pixels, changed := mf.ConsumeFrame()
	if !changed || pixels == nil {
		return
	}
	_ = renderer.Draw(render.Frame{
		Pixels:       pixels,
		ElapsedSecs:  mf.CurrentTime().Seconds(),
		DurationSecs: mf.Duration().Seconds(),
		Paused:       !mf.IsPlaying(),
		Muted:        mf.IsMuted(),
		Volume:       mf.GetVolume(),
	})
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
