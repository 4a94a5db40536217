package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ninegrid/types"
)

// Commands understood by the CLI
var commands = map[string]bool{"split": true, "info": true}

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	return ParseArgs(os.Args[1:])
}

// ParseArgs converts argv (without the program name) into a map of flags and values
func ParseArgs(argv []string) map[string]string {
	args := make(map[string]string)

	// First, identify the command
	commandIndex := -1
	for i, arg := range argv {
		if commands[arg] {
			args["command"] = arg
			commandIndex = i
			break
		}
	}

	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") || i+1 == commandIndex {
				args[flagName] = "true"
			} else {
				args[flagName] = argv[i+1]
				i++
			}
		}
	}

	return args
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s split --image=PATH [--out=DIR] [--tile=ROW-COL] [--prefix=NAME] [--delay=DURATION] [--max-size=MB] [--renderer=mat|raster] [--overwrite] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s info --image=PATH [--max-size=MB] [--renderer=mat|raster] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --image       : PNG or JPEG image to split\n")
	fmt.Printf("  --out         : Folder the tiles are saved to (default: current folder)\n")
	fmt.Printf("  --tile        : Export only the tile at ROW-COL (1-indexed, e.g. 2-3)\n")
	fmt.Printf("  --prefix      : File name prefix of exported tiles (default: %s)\n", types.DefaultNamePrefix)
	fmt.Printf("  --delay       : Pause between tiles when exporting all (default: 800ms)\n")
	fmt.Printf("  --max-size    : Upload size limit in MB (default: 10)\n")
	fmt.Printf("  --renderer    : mat uses OpenCV, raster is pure Go (default: mat)\n")
	fmt.Printf("  --overwrite   : Replace existing tile files\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Specify custom log file path (default: ninegrid.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s split --image=/path/to/photo.jpg --out=tiles\n", os.Args[0])
	fmt.Printf("  %s split --image=/path/to/photo.png --tile=2-2 --prefix=avatar\n", os.Args[0])
}

// ParseDelay parses a pacing delay such as "800ms" or a bare millisecond count
func ParseDelay(value string) (time.Duration, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		value = fmt.Sprintf("%dms", ms)
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid delay value '%s'", value)
	}
	return d, nil
}

// ParseMaxSize parses a size limit in megabytes (MiB) and returns bytes
func ParseMaxSize(value string) (int64, error) {
	mb, err := strconv.ParseFloat(value, 64)
	if err != nil || mb <= 0 {
		return 0, fmt.Errorf("invalid max-size value '%s'", value)
	}
	return int64(mb * 1024 * 1024), nil
}

// ParseTilePosition parses a 1-indexed "ROW-COL" into a grid position
func ParseTilePosition(value string) (types.Position, error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return types.Position{}, fmt.Errorf("invalid tile '%s', expected ROW-COL", value)
	}

	row, rowErr := strconv.Atoi(strings.TrimSpace(parts[0]))
	col, colErr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if rowErr != nil || colErr != nil ||
		row < 1 || row > types.GridSize || col < 1 || col > types.GridSize {
		return types.Position{}, fmt.Errorf("invalid tile '%s', row and column must be 1-%d", value, types.GridSize)
	}

	return types.Position{Row: row - 1, Col: col - 1}, nil
}
