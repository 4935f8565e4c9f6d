package main

// Run one image generation against a real provider without the HTTP server:
//   go run ./cmd/gentest -prompt "a lighthouse at dusk" -style watercolor

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"pixology-backend/internal/artifacts"
	"pixology-backend/internal/generations"
	"pixology-backend/internal/imagegen"
	"pixology-backend/internal/imagegen/gemini"
	openai "pixology-backend/internal/imagegen/openai"
	"pixology-backend/internal/quota"
	"pixology-backend/internal/shared/config"
	localstore "pixology-backend/internal/shared/storage/object/local"
)

func main() {
	cfg := config.Load()

	prompt := flag.String("prompt", "", "Base prompt text")
	style := flag.String("style", "", "Art style (optional)")
	colorScheme := flag.String("color-scheme", "", "Color scheme (optional)")
	mood := flag.String("mood", "", "Mood (optional)")
	modifiers := flag.String("modifiers", "", "Comma-separated modifiers (optional)")
	width := flag.Int("width", 0, "Image width (optional)")
	height := flag.Int("height", 0, "Image height (optional)")
	quality := flag.String("quality", "", "Quality tier: standard, high or ultra (optional)")
	provider := flag.String("provider", cfg.ImageProvider, "Image provider")
	model := flag.String("model", cfg.ImageModel, "Image model")
	outDir := flag.String("out", "./gentest-out", "Directory to write the artifact into")
	flag.Parse()

	if strings.TrimSpace(*prompt) == "" {
		exitErr("prompt is required")
	}

	ctx := context.Background()

	client, err := buildClient(ctx, *provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	repo := generations.NewMemoryRepo()
	svc := &generations.Service{
		Repo:          repo,
		Quota:         quota.NewGate(repo, cfg.QuotaDailyLimit),
		Client:        client,
		Artifacts:     artifacts.NewStore(localstore.New(*outDir, "file://"+*outDir)),
		DefaultWidth:  cfg.DefaultWidth,
		DefaultHeight: cfg.DefaultHeight,
	}

	styleParams := buildStyle(*style, *colorScheme, *mood, *modifiers, *width, *height, *quality)
	if styleParams != nil && !generations.ValidQuality(styleParams.Quality) {
		exitErr(fmt.Sprintf("unsupported quality tier: %s", styleParams.Quality))
	}

	result, err := svc.Generate(ctx, "gentest", *prompt, styleParams)
	if err != nil {
		exitErr(fmt.Sprintf("generate: %v", err))
	}

	raw, err := json.Marshal(result)
	if err != nil {
		exitErr(fmt.Sprintf("encode result: %v", err))
	}
	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildStyle(style, colorScheme, mood, modifiers string, width, height int, quality string) *generations.StyleParameters {
	params := generations.StyleParameters{
		Style:       strings.TrimSpace(style),
		ColorScheme: strings.TrimSpace(colorScheme),
		Mood:        strings.TrimSpace(mood),
		Width:       width,
		Height:      height,
		Quality:     strings.TrimSpace(quality),
	}
	for _, m := range strings.Split(modifiers, ",") {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			params.Modifiers = append(params.Modifiers, trimmed)
		}
	}
	if params.IsZero() {
		return nil
	}
	return &params
}

func buildClient(ctx context.Context, provider, model string) (imagegen.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini":
		return gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), model)
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), model, os.Getenv("OPENAI_BASE_URL"))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
