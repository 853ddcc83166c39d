package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/SoundPrint/pkg/logger"
	"github.com/himanishpuri/SoundPrint/pkg/models"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/storage"
)

// crossProviderTolerance is the largest fraction of differing bits two
// decoders may produce for the same source and still be considered in
// agreement.
const crossProviderTolerance = 0.02

// splitArgs separates leading positional arguments from flags so that
// "add song.mp3 --title x" parses the same as "add --title x song.mp3".
func splitArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	i := 0
	for ; i < len(args); i++ {
		if len(args[i]) > 0 && args[i][0] == '-' {
			break
		}
		positional = append(positional, args[i])
	}
	fs.Parse(args[i:])
	return append(positional, fs.Args()...)
}

func fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("❌ %s\n", msg)
	logger.Errorf("%s", msg)
	os.Exit(1)
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}

func formatDuration(ms int) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func handleFingerprint(args []string) {
	fs := flag.NewFlagSet("fingerprint", flag.ExitOnError)
	bits := fs.Bool("bits", false, "Print every signature as a bit string")
	pos := splitArgs(fs, args)
	if len(pos) != 1 {
		fmt.Println("Usage: soundprint fingerprint <audio_file> [--bits]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	ff, err := svc.FingerprintFile(ctx, pos[0])
	if err != nil {
		fail("Failed to fingerprint: %v", err)
	}

	fmt.Printf("\n🎵 %s (%s, %s)\n", pos[0], fileSize(pos[0]), ff.Duration.Round(time.Millisecond))
	fmt.Printf("   Spectral images: %s\n", humanize.Comma(int64(ff.Images)))
	fmt.Printf("   Fingerprints:    %s\n", humanize.Comma(int64(len(ff.Fingerprints))))
	fmt.Printf("   Took:            %s\n\n", time.Since(start).Round(time.Millisecond))

	for _, fp := range ff.Fingerprints {
		at := float64(fp.StartsAt) / float64(ff.SampleRate)
		fmt.Printf("  #%-5d @ %8.3fs  %4d bits set\n", fp.SequenceNumber, at, fp.Signature.Ones())
		if *bits {
			fmt.Printf("         %s\n", fp.Signature)
		}
	}
}

func handleAdd(args []string) {
	log := logger.GetLogger()

	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Track title (defaults to the file's tags or name)")
	artist := fs.String("artist", "", "Artist name (defaults to the file's tags)")
	album := fs.String("album", "", "Album name")
	isrc := fs.String("isrc", "", "ISRC code")
	year := fs.Int("year", 0, "Release year")
	pos := splitArgs(fs, args)

	if len(pos) != 1 {
		fmt.Println("Usage: soundprint add <audio_file> [--title <title>] [--artist <artist>]")
		os.Exit(1)
	}
	audioPath := pos[0]

	fmt.Println("\n🔧 Initializing service...")
	svc := mustService()
	defer svc.Close()

	fmt.Println("🎵 Processing audio file...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	trackID, err := svc.AddTrack(ctx, audioPath, models.Track{
		Title:       *title,
		Artist:      *artist,
		Album:       *album,
		ISRC:        *isrc,
		ReleaseYear: *year,
	})
	if err != nil {
		fail("Failed to add track: %v", err)
	}

	track, err := svc.GetTrackByID(trackID)
	if err != nil {
		fail("Track stored but could not be read back: %v", err)
	}
	count, _ := svc.FingerprintCount(trackID)

	fmt.Println("\n✅ Successfully added track to database!")
	fmt.Printf("   ID:           %s\n", track.ID)
	fmt.Printf("   Title:        %s\n", track.Title)
	fmt.Printf("   Artist:       %s\n", track.Artist)
	if track.Album != "" {
		fmt.Printf("   Album:        %s\n", track.Album)
	}
	fmt.Printf("   Duration:     %s\n", formatDuration(track.DurationMs))
	fmt.Printf("   Fingerprints: %s\n", humanize.Comma(count))
	log.Infof("Successfully added track ID=%s", trackID)
}

func handleList() {
	svc := mustService()
	defer svc.Close()

	tracks, err := svc.ListTracks()
	if err != nil {
		fail("Failed to list tracks: %v", err)
	}

	if len(tracks) == 0 {
		fmt.Println("\n📭 No tracks in database")
		return
	}

	total, _ := svc.FingerprintCount("")
	fmt.Printf("\n📚 Found %d track(s), %s fingerprints:\n\n", len(tracks), humanize.Comma(total))
	for i, t := range tracks {
		fmt.Printf("%d. \"%s\" by %s (ID: %s)\n", i+1, t.Title, t.Artist, t.ID)
		if t.Album != "" {
			fmt.Printf("   Album: %s\n", t.Album)
		}
		if t.DurationMs > 0 {
			fmt.Printf("   Duration: %s\n", formatDuration(t.DurationMs))
		}
		fmt.Println()
	}
	logger.Infof("Listed %d tracks", len(tracks))
}

func handleShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Fingerprints to print (0 = all)")
	pos := splitArgs(fs, args)
	if len(pos) != 1 {
		fmt.Println("Usage: soundprint show <track_id> [--limit <n>]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	track, err := svc.GetTrackByID(pos[0])
	if err != nil {
		if errors.Is(err, storage.ErrTrackNotFound) {
			fail("Track not found (ID: %s)", pos[0])
		}
		fail("Failed to read track: %v", err)
	}
	fps, err := svc.ReadFingerprints(track.ID)
	if err != nil {
		fail("Failed to read fingerprints: %v", err)
	}

	fmt.Printf("\n🎵 \"%s\" by %s\n", track.Title, track.Artist)
	fmt.Printf("   ID:           %s\n", track.ID)
	if track.Album != "" {
		fmt.Printf("   Album:        %s\n", track.Album)
	}
	if track.ISRC != "" {
		fmt.Printf("   ISRC:         %s\n", track.ISRC)
	}
	if track.ReleaseYear != 0 {
		fmt.Printf("   Year:         %d\n", track.ReleaseYear)
	}
	fmt.Printf("   Duration:     %s\n", formatDuration(track.DurationMs))
	fmt.Printf("   Fingerprints: %s\n\n", humanize.Comma(int64(len(fps))))

	n := len(fps)
	if *limit > 0 && *limit < n {
		n = *limit
	}
	for _, fp := range fps[:n] {
		at := float64(fp.StartsAt) / float64(fingerprintConfig().SampleRate)
		fmt.Printf("  #%-5d @ %8.3fs  %4d/%d bits set\n", fp.SequenceNumber, at, fp.Signature.Ones(), len(fp.Signature))
	}
	if n < len(fps) {
		fmt.Printf("  ... and %d more\n", len(fps)-n)
	}
}

func handleDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: soundprint delete <track_id>")
		os.Exit(1)
	}
	trackID := args[0]

	svc := mustService()
	defer svc.Close()

	// Get track info before deletion
	track, err := svc.GetTrackByID(trackID)
	if err != nil {
		logger.Warnf("Track %s not found: %v", trackID, err)
		fail("Track not found (ID: %s)", trackID)
	}

	if err := svc.DeleteTrack(trackID); err != nil {
		fail("Failed to delete track: %v", err)
	}

	fmt.Printf("\n✅ Successfully deleted track:\n")
	fmt.Printf("   ID:     %s\n", track.ID)
	fmt.Printf("   Title:  %s\n", track.Title)
	fmt.Printf("   Artist: %s\n", track.Artist)
	logger.Infof("Deleted track ID=%s ('%s' by '%s')", track.ID, track.Title, track.Artist)
}

func handleCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	decA := fs.String("decoder-a", "", "Decoder for the first file (default: --decoder)")
	decB := fs.String("decoder-b", "", "Decoder for the second file (default: --decoder-a)")
	pos := splitArgs(fs, args)
	if len(pos) != 2 {
		fmt.Println("Usage: soundprint compare <file_a> <file_b> [--decoder-a <name>] [--decoder-b <name>]")
		os.Exit(1)
	}

	var decoders []audio.Decoder
	for _, name := range []string{*decA, *decB} {
		if name == "" {
			decoders = append(decoders, nil)
			continue
		}
		d, err := audio.DecoderByName(name, tempDir)
		if err != nil {
			fail("%v", err)
		}
		decoders = append(decoders, d)
	}

	svc := mustService()
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	res, err := svc.CompareFiles(ctx, pos[0], pos[1], decoders...)
	if err != nil {
		fail("Comparison failed: %v", err)
	}

	fmt.Printf("\n🔍 %s: %s fingerprints\n", pos[0], humanize.Comma(int64(res.CountA)))
	fmt.Printf("🔍 %s: %s fingerprints\n", pos[1], humanize.Comma(int64(res.CountB)))
	fmt.Printf("   Pairs compared: %s\n", humanize.Comma(int64(res.Compared)))
	if res.UnmatchedA > 0 || res.UnmatchedB > 0 {
		fmt.Printf("   Unmatched:      %d / %d\n", res.UnmatchedA, res.UnmatchedB)
	}
	fmt.Printf("   Differing bits: %s of %s (%.3f%%)\n",
		humanize.Comma(int64(res.DiffBits)), humanize.Comma(int64(res.TotalBits)), 100*res.DiffRatio())

	if res.Consistent(crossProviderTolerance) {
		fmt.Println("\n✅ Fingerprints agree")
	} else {
		fmt.Println("\n❌ Fingerprints differ")
	}
}
