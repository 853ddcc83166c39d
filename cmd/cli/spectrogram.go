package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eligwz/spectrogram"

	"github.com/himanishpuri/SoundPrint/pkg/logger"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

func handleSpectrogram(args []string) {
	flags := flag.NewFlagSet("spectrogram", flag.ExitOnError)
	out := flags.String("out", "", "Output PNG path (default: <input>.png)")
	width := flags.Int("width", 2048, "Image width in pixels")
	height := flags.Int("height", 512, "Image height in pixels (frequency bins)")
	rate := flags.Int("rate", 11025, "Sample rate to decode at")
	pos := splitArgs(flags, args)
	if len(pos) != 1 {
		fmt.Println("Usage: soundprint spectrogram <audio_file> [--out <png>] [--width <px>] [--height <px>] [--rate <hz>]")
		os.Exit(1)
	}
	if *width <= 0 || *height <= 0 || *rate <= 0 {
		fail("width, height and rate must be positive")
	}

	input := pos[0]
	if *out == "" {
		*out = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".png"
	}

	dec, err := audio.DecoderByName(decoderName, tempDir)
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	samples, err := dec.Decode(ctx, input, *rate)
	if err != nil {
		fail("Failed to decode %s: %v", input, err)
	}
	logger.Infof("Read %d samples at %d Hz", len(samples.Data), samples.SampleRate)

	img := spectrogram.NewImage128(image.Rect(0, 0, *width, *height))

	// Fill with black background first
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples.Data,
		uint32(samples.SampleRate),
		uint32(*height), // bins
		false,           // rectangle: off, frames get a Hamming window
		false,           // dft: off, use the FFT
		true,            // mag: plot magnitude
		false,           // log10: off, linear scale
	)

	if err := spectrogram.SavePng(img, *out); err != nil {
		fail("Error saving PNG %s: %v", *out, err)
	}
	fmt.Printf("✅ Saved spectrogram to %s\n", *out)
}
