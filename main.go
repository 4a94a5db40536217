package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"ninegrid/export"
	"ninegrid/imageprocessor"
	"ninegrid/logging"
	"ninegrid/notify"
	"ninegrid/session"
	"ninegrid/signalhandler"
	"ninegrid/types"
	"ninegrid/upload"
	"ninegrid/utils"
)

func main() {
	// Parse command line arguments into a map
	args := utils.ParseArguments()

	command, hasCommand := args["command"]

	// Setup debug logging if enabled
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "ninegrid.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	if !hasCommand || args["image"] == "" {
		utils.PrintUsage()
		os.Exit(1)
	}

	ctx, stop := signalhandler.SetupHandler(context.Background())
	defer stop()

	var err error
	switch command {
	case "split":
		err = handleSplitCommand(ctx, args, debugMode)
	case "info":
		err = handleInfoCommand(ctx, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		stop()
		logging.CloseLogger()
		log.Fatalf("Error: %v", err)
	}
}

// terminalControl stands in for the "export all" button of the page
type terminalControl struct{}

func (terminalControl) SetEnabled(enabled bool, label string) {
	logging.DebugLog("Export control enabled=%v label=%q", enabled, label)
}

// pipeline picks the decoder and renderer named by --renderer
func pipeline(args map[string]string) (imageprocessor.Decoder, imageprocessor.Renderer, error) {
	renderer := args["renderer"]
	if renderer == "" {
		renderer = "raster"
		if imageprocessor.OpenCVAvailable {
			renderer = "mat"
		}
	}

	switch renderer {
	case "mat":
		if !imageprocessor.OpenCVAvailable {
			return nil, nil, fmt.Errorf("renderer mat needs a build without the nogocv tag")
		}
		return imageprocessor.NewMatDecoder(), imageprocessor.NewMatRenderer(), nil
	case "raster":
		return imageprocessor.NewRasterDecoder(), imageprocessor.NewRasterRenderer(), nil
	default:
		return nil, nil, fmt.Errorf("unknown renderer: %s", renderer)
	}
}

func maxSize(args map[string]string) int64 {
	value, ok := args["max-size"]
	if !ok {
		return upload.DefaultMaxSize
	}
	size, err := utils.ParseMaxSize(value)
	if err != nil {
		fmt.Printf("Warning: %v, using default (10MB)\n", err)
		return upload.DefaultMaxSize
	}
	return size
}

func handleSplitCommand(ctx context.Context, args map[string]string, debugMode bool) error {
	outDir := "."
	if dir, ok := args["out"]; ok && dir != "" {
		outDir = dir
	}

	delay := export.DefaultDelay
	if value, ok := args["delay"]; ok {
		parsed, err := utils.ParseDelay(value)
		if err != nil {
			fmt.Printf("Warning: %v, using default (%v)\n", err, export.DefaultDelay)
		} else {
			delay = parsed
		}
	}

	var single *types.Position
	if value, ok := args["tile"]; ok {
		pos, err := utils.ParseTilePosition(value)
		if err != nil {
			return err
		}
		single = &pos
	}

	decoder, renderer, err := pipeline(args)
	if err != nil {
		return err
	}

	_, overwrite := args["overwrite"]
	saver, err := export.NewDirSaver(outDir, overwrite)
	if err != nil {
		return err
	}

	toast := notify.NewToast(os.Stdout, notify.DefaultTTL)
	defer toast.Close()

	sess, err := session.New(session.Config{
		Decoder:  decoder,
		Renderer: renderer,
		Saver:    saver,
		Prefix:   args["prefix"],
		MaxSize:  maxSize(args),
		Delay:    delay,
		Notifier: toast,
		Control:  terminalControl{},
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	startTime := time.Now()

	file, err := upload.Inspect(args["image"])
	if err != nil {
		return err
	}
	if err := sess.Upload(ctx, file); err != nil {
		return err
	}

	src, _ := sess.Source()
	fmt.Println(imageprocessor.NewMetadata(src).Summary())

	tiles, err := sess.Partition(ctx)
	if err != nil {
		return err
	}
	printPreview(tiles)

	if single != nil {
		if err := sess.ExportOne(ctx, *single); err != nil {
			return err
		}
	} else {
		report, err := sess.ExportAll(ctx)
		if err := finishExport(os.Stdout, report, err); err != nil {
			return err
		}
	}

	if debugMode {
		if stats, err := sess.Stats(); err == nil {
			logging.DebugLog("Exports: %d, errors: %d", stats.Exported, stats.ErrorCount)
		}
	}

	fmt.Printf("Tiles saved to: %s\n", outDir)
	fmt.Printf("Total execution time: %v\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func handleInfoCommand(ctx context.Context, args map[string]string) error {
	decoder, _, err := pipeline(args)
	if err != nil {
		return err
	}

	file, err := upload.Inspect(args["image"])
	if err != nil {
		return err
	}
	if err := upload.NewValidator(maxSize(args)).Validate(file); err != nil {
		return err
	}

	res := <-upload.Decode(ctx, file, decoder)
	if res.Err != nil {
		return res.Err
	}

	meta := imageprocessor.NewMetadata(res.Source)
	exif, err := imageprocessor.ReadExif(file.Path)
	if err != nil {
		logging.LogWarning("Metadata unavailable: %v", err)
	}
	meta.Exif = exif

	fmt.Println(meta.Summary())
	for _, line := range meta.ExifLines() {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

// finishExport prints the batch report; an interrupted or failed batch is an error
func finishExport(w io.Writer, report *export.Report, err error) error {
	if report != nil {
		report.Print(w)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Export interrupted.")
		return fmt.Errorf("export interrupted: %w", err)
	}
	return err
}

// printPreview lists the tiles the way the page shows its thumbnails
func printPreview(tiles []types.Tile) {
	fmt.Println("\nTiles:")
	for _, tile := range tiles {
		fmt.Printf("%d. Position: %s | %.0f×%.0fpx | %s\n",
			tile.Index+1, tile.Position, tile.Size.Width, tile.Size.Height, tile.DownloadName)
	}
	fmt.Println()
}
