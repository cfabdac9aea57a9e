package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/config"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/share"
	"SketchBoard/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Editor flags
	imageSrc  string
	outPath   string
	shareFlag bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sketchboard [sketchboard://host:port]",
	Short: "Sketch on a whiteboard and export it as a PNG",
	Long: `SketchBoard opens a drawing canvas with pencil, eraser, rectangle, circle and
selection tools. Saving writes a PNG snapshot at twice the canvas resolution.

Pass --share to let others on the LAN join the board, or give a sketchboard://
link to join someone else's.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.File)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runJoin(args[0])
		}
		return runEditor()
	},
}

var joinCmd = &cobra.Command{
	Use:   "join [sketchboard://host:port]",
	Short: "Join a shared board; without a link, the first board found on the LAN",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runJoin(args[0])
		}
		link, err := discoverFirst(cfg.Share.BrowseTimeout)
		if err != nil {
			return err
		}
		return runJoin(link)
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List shared boards on the LAN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		found := 0
		err := share.Browse(cfg.Share.BrowseTimeout, func(link string) {
			found++
			fmt.Fprintln(cmd.OutOrStdout(), link)
		})
		if err != nil {
			return err
		}
		if found == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no boards found")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to the config file",
	Long: `Writes the configuration in effect (defaults, the config file and any
SKETCHBOARD_* environment overrides) back to --config, creating it if needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")

	rootCmd.Flags().StringVarP(&imageSrc, "image", "i", "", "Initial image (URL, file path or data: URL)")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "Where Save writes the PNG; - for stdout (default: export dir)")
	rootCmd.Flags().BoolVar(&shareFlag, "share", false, "Host the board for peers on the LAN")

	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEditor() error {
	opts := editorOptions("SketchBoard", "Ready")
	opts.Board.InitialImage = imageSrc
	if shareFlag {
		opts.OnSession = hostSession
	}
	logger.Info("starting editor", zap.String("image", imageSrc), zap.Bool("share", shareFlag))
	ui.RunApp(opts)
	return nil
}

func runJoin(link string) error {
	addr, err := share.ParseLink(link)
	if err != nil {
		return err
	}
	opts := editorOptions("SketchBoard - "+addr, "Connecting to "+addr)
	opts.OnSession = joinSession(addr)
	logger.Info("joining board", zap.String("host", addr))
	ui.RunApp(opts)
	return nil
}

func editorOptions(title, status string) ui.AppOptions {
	return ui.AppOptions{
		Title:  title,
		Status: status,
		Logger: logger,
		Board: board.Options{
			Canvas:     cfg.CanvasOptions(),
			Multiplier: cfg.Export.Multiplier,
			OnSave:     writeSnapshot,
		},
	}
}

// writeSnapshot hands the exported PNG to its destination.
func writeSnapshot(png []byte) {
	path := outPath
	if path == "-" {
		if _, err := os.Stdout.Write(png); err != nil {
			logger.Error("write snapshot", zap.Error(err))
		}
		return
	}
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, fmt.Sprintf("sketch-%s.png", time.Now().Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("create export dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		logger.Error("write snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("snapshot written", zap.String("path", path), zap.Int("bytes", len(png)))
}

