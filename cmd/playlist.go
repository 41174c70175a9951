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
	"github.com/drgolem/tmediago/internal/playlist"
	"github.com/drgolem/tmediago/internal/render"
	"github.com/drgolem/tmediago/internal/render/ansi"
	"github.com/drgolem/tmediago/internal/videoconv"
)

var (
	playlistDeviceIdx  int
	playlistBufferSize uint64
	playlistFrames     int
	playlistVolume     float64
	playlistCols       int
	playlistRows       int
	playlistOutputMode string
	playlistLoopMode   string
	playlistShuffle    bool
)

// playlistCmd plays a sequence of media files under Playlist's
// shuffle/loop semantics.
var playlistCmd = &cobra.Command{
	Use:   "playlist <media_file> [media_file...]",
	Short: "Play a sequence of media files with shuffle/loop control",
	Long: `Play a sequence of media files one after another, advancing through
them under the Playlist engine's shuffle and loop semantics.

Examples:
  tmediago playlist song1.mp3 song2.flac clip.mp4
  tmediago playlist --loop repeat --shuffle music/*.flac`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPlaylist,
}

func init() {
	rootCmd.AddCommand(playlistCmd)

	playlistCmd.Flags().IntVarP(&playlistDeviceIdx, "device", "d", 1, "Audio output device index")
	playlistCmd.Flags().Uint64VarP(&playlistBufferSize, "buffer", "b", 262144, "Ring buffer size in frames (power of 2)")
	playlistCmd.Flags().IntVarP(&playlistFrames, "frames", "f", 512, "Audio frames per buffer")
	playlistCmd.Flags().Float64Var(&playlistVolume, "volume", 1.0, "Initial volume [0.0, 1.0]")
	playlistCmd.Flags().IntVar(&playlistCols, "cols", 80, "Terminal columns to render into")
	playlistCmd.Flags().IntVar(&playlistRows, "rows", 24, "Terminal rows to render into")
	playlistCmd.Flags().StringVar(&playlistOutputMode, "output-mode", "color", "Video output mode: plain, bg, or color")
	playlistCmd.Flags().StringVar(&playlistLoopMode, "loop", "none", "Loop mode: none, repeat, or one")
	playlistCmd.Flags().BoolVar(&playlistShuffle, "shuffle", false, "Shuffle the play order before starting")
}

func parseLoopMode(s string) playlist.LoopMode {
	switch s {
	case "repeat":
		return playlist.Repeat
	case "one":
		return playlist.RepeatOne
	default:
		return playlist.NoLoop
	}
}

func runPlaylist(cmd *cobra.Command, args []string) {
	cfg := config.Default()
	cfg.DeviceIndex = playlistDeviceIdx
	cfg.BufferFrames = playlistBufferSize
	cfg.FramesPerBuffer = playlistFrames
	cfg.Volume = playlistVolume
	cfg.Cols = playlistCols
	cfg.Rows = playlistRows
	cfg.OutputMode = parseOutputMode(playlistOutputMode)

	pl := playlist.New(args)
	pl.SetLoopMode(parseLoopMode(playlistLoopMode))
	if playlistShuffle {
		pl.Shuffle(false)
	}

	logger.Info("initializing audio backend")
	if err := portaudio.Initialize(); err != nil {
		logger.Error("failed to initialize audio backend", "error", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	renderer := ansi.New(cfg.Cols, cfg.Rows, cfg.OutputMode)
	defer renderer.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	interrupted := false

	for {
		path, err := pl.Current()
		if err != nil {
			logger.Error("playlist error", "error", err)
			break
		}

		if !playOne(path, cfg, renderer, sigChan, &interrupted) {
			break
		}
		if interrupted {
			break
		}
		if !pl.CanMove(playlist.Skip) {
			break
		}
		if err := pl.Move(playlist.Skip); err != nil {
			break
		}
	}

	if interrupted {
		logger.Info("playback interrupted")
	} else {
		logger.Info("playlist complete")
	}
}

// playOne plays a single file to completion or interruption, returning
// false if the caller should stop advancing the playlist entirely.
func playOne(path string, cfg config.Config, renderer *ansi.Renderer, sigChan chan os.Signal, interrupted *bool) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Error("file not found, skipping", "path", path)
		return true
	}

	mf, err := fetcher.New(path, fetcher.Config{
		AudioDeviceIndex:   cfg.DeviceIndex,
		FramesPerBuffer:    cfg.FramesPerBuffer,
		RingCapacityFrames: cfg.BufferFrames,
		ScaleWidth:         cfg.Cols,
		ScaleHeight:        cfg.Rows,
		Algorithm:          videoconv.BoxSampling,
	})
	if err != nil {
		logger.Error("failed to open media, skipping", "path", path, "error", err)
		return true
	}
	defer mf.Close()

	mf.SetVolume(cfg.Volume)

	logger.Info("playing", "path", path, "kind", mf.Kind().String())
	if err := mf.Begin(nowSeconds()); err != nil {
		logger.Error("failed to start playback, skipping", "path", path, "error", err)
		return true
	}

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
			logger.Info("signal received, stopping playlist", "signal", sig)
			mf.Shutdown()
			<-done
			*interrupted = true
			break loop
		case <-renderTicker.C:
			drawFrame(renderer, mf)
		}
	}

	if err := mf.Err(); err != nil {
		logger.Error("playback ended with error", "path", path, "error", err)
	}
	return true
}
