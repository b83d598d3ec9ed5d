// Command segtest runs color segmentation on a microscopy image and
// outputs the ranked particle table plus an overlay preview.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nanomeasurer/internal/config"
	"nanomeasurer/internal/preview"
	"nanomeasurer/internal/segment"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/tiff"
)

func main() {
	imagePath := flag.String("image", "", "Path to microscopy image (TIFF, PNG, or JPEG)")
	samples := flag.String("samples", "", "Sample pixel coordinates as x,y;x,y;...")
	hueTol := flag.Float64("hue", -1, "Hue tolerance (overrides config)")
	satTol := flag.Float64("sat", -1, "Saturation tolerance (overrides config)")
	valTol := flag.Float64("val", -1, "Value tolerance (overrides config)")
	minArea := flag.Int("minarea", -1, "Minimum particle area in pixels (overrides config)")
	scale := flag.Float64("scale", 0, "Calibrated length per pixel (0 = uncalibrated)")
	configPath := flag.String("config", "", "Path to YAML config file")
	outPath := flag.String("out", "", "Write overlay preview to this path (.png or .webp)")
	flag.Parse()

	if *imagePath == "" || *samples == "" {
		fmt.Println("Usage: segtest -image <path> -samples x,y[;x,y...] [-hue N] [-sat N] [-val N] [-minarea N] [-scale N] [-out overlay.png]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	coords, err := parseSamples(*samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -samples: %v\n", err)
		os.Exit(1)
	}

	// Load image
	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	// Batch run: no debounce, every change recomputes synchronously.
	opts := segment.Options{
		AutoTolerance: cfg.Segmentation.AutoTolerance && len(coords) > 1,
		Scale:         *scale,
	}
	sess, err := segment.NewSession(img, nil, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session failed: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	for _, c := range coords {
		rgb := sess.AddSampleAt(c[0], c[1])
		fmt.Printf("Sample at (%d,%d): %s\n", c[0], c[1], rgb.Hex())
	}

	tol := sess.Tolerances()
	if !opts.AutoTolerance {
		tol.Hue = cfg.Segmentation.HueTolerance
		tol.Sat = cfg.Segmentation.SatTolerance
		tol.Val = cfg.Segmentation.ValTolerance
	}
	tol.MinArea = cfg.Segmentation.MinArea
	if *hueTol >= 0 {
		tol.Hue = *hueTol
	}
	if *satTol >= 0 {
		tol.Sat = *satTol
	}
	if *valTol >= 0 {
		tol.Val = *valTol
	}
	if *minArea >= 0 {
		tol.MinArea = *minArea
	}
	sess.SetTolerances(tol)
	sess.Flush()

	if c, ok := sess.Center(); ok {
		fmt.Printf("\nCenter color: %s  H=%.1f S=%.1f V=%.1f\n", c.Avg.Hex(), c.H, c.S, c.V)
	}
	fmt.Printf("Tolerances: H±%.1f S±%.1f V±%.1f  min area %d px\n",
		tol.Hue, tol.Sat, tol.Val, tol.MinArea)

	particles := sess.Particles()
	fmt.Printf("\nDetected %d particles:\n", len(particles))
	fmt.Printf("%-6s %10s %12s %12s\n", "Rank", "Area px", "Centroid X", "Centroid Y")
	for _, p := range particles {
		fmt.Printf("%-6d %10d %12.1f %12.1f\n", p.Rank, p.Area, p.Centroid.X, p.Centroid.Y)
	}

	stats := sess.Stats()
	fmt.Printf("\nTotal area: %d px (%.2f%% coverage)\n", stats.TotalAreaPx, stats.Coverage)
	if stats.ScaledArea > 0 {
		fmt.Printf("Calibrated area: %.4f unit²\n", stats.ScaledArea)
	}

	if *outPath != "" {
		if err := writeOverlay(sess, cfg.Preview.MaxThumbnailSide, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write overlay: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Overlay written to %s\n", *outPath)
	}
}

// parseSamples parses "x,y;x,y;..." into coordinate pairs.
func parseSamples(s string) ([][2]int, error) {
	var coords [][2]int
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected x,y got %q", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("bad x in %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("bad y in %q: %w", pair, err)
		}
		coords = append(coords, [2]int{x, y})
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("no coordinates")
	}
	return coords, nil
}

// writeOverlay renders the thumbnail overlay and encodes it by file
// extension: .webp uses nativewebp, everything else PNG.
func writeOverlay(sess *segment.Session, maxSide int, path string) error {
	thumb := preview.MakeThumbnail(sess.Image(), maxSide)
	thumb.Update(sess.Labels(), sess.Particles())

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		if err := nativewebp.Encode(f, thumb.Overlay, nil); err != nil {
			return fmt.Errorf("encode webp: %w", err)
		}
		return nil
	}
	if err := png.Encode(f, thumb.Overlay); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
