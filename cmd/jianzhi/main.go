package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"jianzhi/internal/models"
	"jianzhi/internal/tui"
	"jianzhi/pkg/config"
	"jianzhi/pkg/engine"
	"jianzhi/pkg/reconstruction"
	"jianzhi/pkg/session"
	"jianzhi/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "jianzhi.yaml", "Configuration file (defaults are used if it does not exist)")
	mode := flag.String("mode", "", "Fold mode: custom or preset (overrides config)")
	folds := flag.String("folds", "", "Comma separated custom fold sequence, e.g. UP,RIGHT,BR")
	presetFolds := flag.Int("n", 0, "Number of radial folds in preset mode (overrides config)")
	cutPath := flag.String("cut", "", "PNG cut pattern drawn on the folded sheet; transparent pixels are cut away")
	paperColor := flag.String("color", "", "Paper colour as #RRGGBB (overrides config)")
	outputDir := flag.String("output", "", "Directory for exported images (overrides config)")
	interactive := flag.Bool("interactive", false, "Fold and cut interactively in the terminal")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file to -config and exit")
	verbose := flag.Bool("verbose", false, "Log engine activity to stderr")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *mode != "" {
		cfg.Folding.Mode = *mode
	}
	if *presetFolds != 0 {
		cfg.Folding.PresetFolds = *presetFolds
	}
	if *paperColor != "" {
		cfg.Sheet.PaperColor = *paperColor
	}
	if *outputDir != "" {
		cfg.Output.Directory = *outputDir
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Warnings always reach stderr; verbose adds engine activity
	level := slog.LevelWarn
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	sequence, err := models.ParseDirections(*folds)
	if err != nil {
		log.Fatalf("Invalid fold sequence: %v", err)
	}

	var cut image.Image
	if *cutPath != "" {
		cut, err = loadImage(*cutPath)
		if err != nil {
			log.Fatalf("Failed to load cut pattern: %v", err)
		}
	}

	sess, err := session.New(session.Options{
		Size:            cfg.Sheet.Size,
		Mode:            cfg.Strategy(),
		MaxFolds:        cfg.Folding.MaxFolds,
		PresetFolds:     cfg.Folding.PresetFolds,
		RadiusFraction:  cfg.Radial.RadiusFraction,
		CreaseTolerance: cfg.Folding.CreaseTolerance,
		CutThreshold:    uint8(cfg.Cutting.CutThreshold),
		PaperThreshold:  uint8(cfg.Cutting.PaperThreshold),
		RemoveFragments: cfg.Cutting.RemoveFragments,
		Paper:           cfg.Paper(),
	})
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	for _, dir := range sequence {
		if err := sess.Fold(dir); err != nil {
			log.Fatalf("Fold %s failed: %v", dir, err)
		}
	}

	exporter := &visualization.Exporter{
		Directory:    cfg.Output.Directory,
		SaveCreases:  cfg.Output.SaveCreases,
		SavePattern:  cfg.Output.SavePattern,
		ContactSheet: cfg.Output.ContactSheet,
	}

	if *interactive {
		if err := tui.Run(tui.New(sess, exporter, cut)); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Println("================================")
	fmt.Println("JIANZHI - FOLD, CUT AND UNFOLD")
	fmt.Println("================================")
	fmt.Printf("Mode: %s  Sheet: %dx%d  Artwork: %s\n", sess.Mode(), cfg.Sheet.Size, cfg.Sheet.Size, sess.Name())

	startTime := time.Now()
	if cut != nil {
		res := sess.Cut(cut)
		if res.Changed() {
			fmt.Printf("Removed %d pixels in %d loose fragments\n", res.Removed, res.Components-1)
		}
	}
	art, creases := sess.Result()
	processingTime := time.Since(startTime)

	paths, err := exporter.Export(visualization.Artwork{
		Name:    sess.Name(),
		Result:  art,
		Creases: creases,
		Pattern: sess.Surface(),
	}, time.Now())
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	metrics := reconstruction.Evaluate(art)
	fmt.Printf("\nUnfolded in %.3f seconds\n", processingTime.Seconds())
	fmt.Printf("Paper coverage: %.2f%%\n", metrics.Coverage*100)
	fmt.Printf("Mirror symmetry: %.3f\n", metrics.MirrorSymmetry)
	fmt.Printf("Fragments: %d\n", metrics.Fragments)
	if sess.Mode() == models.Preset {
		fmt.Printf("Rotational symmetry (%d-fold): %.3f\n", sess.Preset(),
			reconstruction.RotationalSymmetry(art, 2*math.Pi/float64(sess.Preset())))
	}

	fmt.Println("\nFiles written:")
	for _, p := range paths {
		fmt.Printf("- %s\n", p)
	}
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return img, nil
}
