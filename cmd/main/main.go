package main

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/instill-ai/segmask/config"
	"github.com/instill-ai/segmask/pkg/logger"
	"github.com/instill-ai/segmask/pkg/render"
	"github.com/instill-ai/segmask/pkg/segmenter"
	"github.com/instill-ai/segmask/pkg/tensor"
)

func pipelineConfig(cfg config.PipelineConfig) segmenter.Config {
	return segmenter.Config{
		TargetClassID:           cfg.TargetClassID,
		CandidateClassIDs:       cfg.CandidateClassIDs,
		EnableAdaptiveDetection: cfg.EnableAdaptiveDetection,
		LockCoverageFraction:    cfg.LockCoverageFraction,
		ConfidenceThreshold:     cfg.ConfidenceThreshold,
		UseArgmaxMode:           cfg.UseArgmaxMode,
		EnableTemporalSmoothing: cfg.EnableTemporalSmoothing,
		SmoothingFactor:         cfg.SmoothingFactor,
		EnableNoiseReduction:    cfg.EnableNoiseReduction,
		KernelSize:              cfg.KernelSize,
		MinInvocationInterval:   cfg.MinInvocationInterval,
		RotationInterval:        cfg.RotationInterval,
	}
}

func writeMask(mask *segmenter.Mask, dir string, frame int) error {
	var out image.Image = render.ToGray(mask)
	if w, h := scaleDims(mask); w != mask.Width || h != mask.Height {
		out = render.Scale(out, w, h)
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("mask_%05d.png", frame)))
	if err != nil {
		return err
	}
	defer f.Close()
	return render.EncodePNG(f, out)
}

func scaleDims(mask *segmenter.Mask) (int, int) {
	w := config.Config.Runner.ScaleWidth
	h := config.Config.Runner.ScaleHeight
	if w <= 0 || h <= 0 {
		return mask.Width, mask.Height
	}
	return w, h
}

func main() {
	if err := config.Init(config.ParseConfigFlag()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	log, _ := logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = log.Sync()
	}()

	runner := config.Config.Runner
	shape := tensor.Shape{Batch: 1, Height: runner.Height, Width: runner.Width, Channels: runner.Channels}

	raw, err := os.ReadFile(runner.InputPath)
	if err != nil {
		log.Fatal("unable to read input tensor dump", zap.Error(err))
	}
	frames := tensor.DeserializeFloat32(raw)
	frameLen := shape.ElementCount()
	if frameLen == 0 || len(frames)%frameLen != 0 {
		log.Fatal("input length does not divide into frames",
			zap.Int("elements", len(frames)),
			zap.String("shape", shape.String()))
	}

	if err := os.MkdirAll(runner.OutputDir, 0o755); err != nil {
		log.Fatal("unable to create output directory", zap.Error(err))
	}

	pipeline, err := segmenter.NewPipeline(pipelineConfig(config.Config.Pipeline), segmenter.WithLogger(log))
	if err != nil {
		log.Fatal("unable to construct pipeline", zap.Error(err))
	}
	defer pipeline.Close()
	log.Info("pipeline ready",
		zap.String("pipeline", pipeline.UID()),
		zap.String("shape", shape.String()),
		zap.Int("frames", len(frames)/frameLen))

	now := time.Now()
	coverages := make([]float64, 0, len(frames)/frameLen)
	lastMode := pipeline.ResolverMode()
	for i := 0; i < len(frames)/frameLen; i++ {
		mask, err := pipeline.Process(frames[i*frameLen:(i+1)*frameLen], shape, now)
		now = now.Add(runner.FrameInterval)
		if err != nil {
			log.Warn("frame rejected", zap.Int("frame", i), zap.Error(err))
			continue
		}
		if mask == nil {
			continue
		}
		if mode := pipeline.ResolverMode(); mode != lastMode {
			log.Info("resolver state changed",
				zap.Int("frame", i),
				zap.String("mode", mode.String()),
				zap.Int32("target_class", pipeline.TargetClassID()))
			lastMode = mode
		}
		coverages = append(coverages, mask.Coverage())
		if err := writeMask(mask, runner.OutputDir, i); err != nil {
			log.Fatal("unable to write mask", zap.Int("frame", i), zap.Error(err))
		}
	}

	if len(coverages) > 0 {
		log.Info("run complete",
			zap.Int("masks", len(coverages)),
			zap.Float64("mean_coverage", stat.Mean(coverages, nil)),
			zap.Float64("stddev_coverage", math.Sqrt(stat.Variance(coverages, nil))))
	}
}
