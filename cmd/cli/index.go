package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/himanishpuri/SoundPrint/pkg/logger"
	"github.com/himanishpuri/SoundPrint/pkg/models"
)

func collectAudioFiles(root string, exts []string) ([]string, int64, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	var (
		files []string
		bytes int64
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !want[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if info, err := d.Info(); err == nil {
			bytes += info.Size()
		}
		files = append(files, path)
		return nil
	})
	return files, bytes, err
}

func handleIndex(args []string) {
	flags := flag.NewFlagSet("index", flag.ExitOnError)
	extList := flags.String("ext", ".wav,.mp3,.flac,.ogg,.m4a", "Comma-separated file extensions to index")
	pos := splitArgs(flags, args)
	if len(pos) != 1 {
		fmt.Println("Usage: soundprint index <directory> [--ext .wav,.mp3]")
		os.Exit(1)
	}

	files, size, err := collectAudioFiles(pos[0], strings.Split(*extList, ","))
	if err != nil {
		fail("Failed to scan %s: %v", pos[0], err)
	}
	if len(files) == 0 {
		fmt.Printf("\n📭 No audio files found under %s\n", pos[0])
		return
	}
	fmt.Printf("\n📂 Indexing %d file(s), %s\n\n", len(files), humanize.Bytes(uint64(size)))

	svc := mustService()
	defer svc.Close()

	// progress bar
	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(files)),
		mpb.PrependDecorators(
			decor.Name("Indexing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)

	var added, failed int
	failures := make(map[string]error)
	for _, path := range files {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		_, err := svc.AddTrack(ctx, path, models.Track{})
		cancel()

		if err != nil {
			failed++
			failures[path] = err
			logger.Debugf("Indexing %s failed: %v", path, err)
		} else {
			added++
		}
		bar.EwmaIncrement(time.Since(start))
	}
	p.Wait()

	fmt.Printf("\n✅ Indexed %s track(s)", humanize.Comma(int64(added)))
	if failed > 0 {
		fmt.Printf(", ❌ %d failed:\n", failed)
		for path, err := range failures {
			fmt.Printf("   %s: %v\n", path, err)
		}
	} else {
		fmt.Println()
	}

	total, err := svc.FingerprintCount("")
	if err == nil {
		fmt.Printf("   Database now holds %s fingerprints\n", humanize.Comma(total))
	}
}
