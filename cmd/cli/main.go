package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/SoundPrint/pkg/logger"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"
)

// Global flags
var (
	dbPath      string
	tempDir     string
	decoderName string
	workers     int
	stride      int
	normalize   bool
)

func init() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	flag.StringVar(&dbPath, "db", getEnvOrDefault("SOUNDPRINT_DB_PATH", "soundprint.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("SOUNDPRINT_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.StringVar(&decoderName, "decoder", getEnvOrDefault("SOUNDPRINT_DECODER", "auto"), "Audio decoder: auto, wav, riff, mp3 or ffmpeg")
	flag.IntVar(&workers, "workers", getEnvIntOrDefault("SOUNDPRINT_WORKERS", 0), "Fingerprint workers (0 = all CPUs)")
	flag.IntVar(&stride, "stride", fingerprint.DefaultStride, "Samples skipped between spectral images")
	flag.BoolVar(&normalize, "normalize", false, "Normalize amplitude before fingerprinting")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logger.Warnf("Ignoring non-numeric %s=%q", key, value)
	}
	return defaultValue
}

func fingerprintConfig() fingerprint.Configuration {
	cfg := fingerprint.DefaultConfiguration()
	cfg.Stride = fingerprint.NewStaticStride(stride)
	cfg.NormalizeSignal = normalize
	return cfg
}

// createService creates a new SoundPrint service with configured options
func createService() (soundprint.Service, error) {
	dec, err := audio.DecoderByName(decoderName, tempDir)
	if err != nil {
		return nil, err
	}
	return soundprint.NewService(
		soundprint.WithDBPath(dbPath),
		soundprint.WithTempDir(tempDir),
		soundprint.WithWorkers(workers),
		soundprint.WithDecoder(dec),
		soundprint.WithFingerprintConfig(fingerprintConfig()),
	)
}

// mustService exits when the service cannot be created.
func mustService() soundprint.Service {
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		logger.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	return svc
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	log := logger.GetLogger()

	if flag.NArg() < 1 {
		printBanner()
		printUsage()
		os.Exit(1)
	}

	command, args := flag.Arg(0), flag.Args()[1:]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "fingerprint":
		handleFingerprint(args)
	case "add":
		handleAdd(args)
	case "index":
		handleIndex(args)
	case "list":
		handleList()
	case "show":
		handleShow(args)
	case "delete":
		handleDelete(args)
	case "compare":
		handleCompare(args)
	case "spectrogram":
		handleSpectrogram(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
  ____                        _ ____       _       _
 / ___|  ___  _   _ _ __   __| |  _ \ _ __(_)_ __ | |_
 \___ \ / _ \| | | | '_ \ / _' | |_) | '__| | '_ \| __|
  ___) | (_) | |_| | | | | (_| |  __/| |  | | | | | |_
 |____/ \___/ \__,_|_| |_|\__,_|_|   |_|  |_|_| |_|\__|

        Wavelet Audio Fingerprinting CLI Tool
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("SoundPrint - Wavelet Audio Fingerprinting CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite database (env: SOUNDPRINT_DB_PATH, default: soundprint.sqlite3)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: SOUNDPRINT_TEMP_DIR, default: /tmp)")
	fmt.Println("  --decoder <name>   auto, wav, riff, mp3 or ffmpeg (env: SOUNDPRINT_DECODER, default: auto)")
	fmt.Println("  --workers <n>      Fingerprint workers (env: SOUNDPRINT_WORKERS, default: all CPUs)")
	fmt.Println("  --stride <n>       Samples between spectral images (default: 5115)")
	fmt.Println("  --normalize        Normalize amplitude before fingerprinting")
	fmt.Println("\nUsage:")
	fmt.Println("  soundprint [global-options] fingerprint <audio_file> [--bits]")
	fmt.Println("  soundprint [global-options] add <audio_file> [--title <title>] [--artist <artist>] [--album <album>] [--isrc <code>] [--year <yyyy>]")
	fmt.Println("  soundprint [global-options] index <directory> [--ext .wav,.mp3]")
	fmt.Println("  soundprint [global-options] list")
	fmt.Println("  soundprint [global-options] show <track_id> [--limit <n>]")
	fmt.Println("  soundprint [global-options] delete <track_id>")
	fmt.Println("  soundprint [global-options] compare <file_a> <file_b> [--decoder-a <name>] [--decoder-b <name>]")
	fmt.Println("  soundprint [global-options] spectrogram <audio_file> [--out <png>] [--width <px>] [--height <px>] [--rate <hz>]")
	fmt.Println("\nExamples:")
	fmt.Println("  # Add from local file, tags read by ffprobe when title/artist are omitted")
	fmt.Println("  soundprint --db mydb.sqlite3 add song.mp3 --title \"Song\" --artist \"Artist\"")
	fmt.Println()
	fmt.Println("  # Check that two decoders agree on the same file")
	fmt.Println("  soundprint compare song.wav song.wav --decoder-a riff --decoder-b ffmpeg")
}
