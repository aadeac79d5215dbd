package config

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// LogConfig defines logging configurations
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// PipelineConfig defines the mask pipeline configurations
type PipelineConfig struct {
	TargetClassID           int32         `koanf:"targetclassid"`
	CandidateClassIDs       []int32       `koanf:"candidateclassids"`
	EnableAdaptiveDetection bool          `koanf:"enableadaptivedetection"`
	LockCoverageFraction    float64       `koanf:"lockcoveragefraction"`
	ConfidenceThreshold     float32       `koanf:"confidencethreshold"`
	UseArgmaxMode           bool          `koanf:"useargmaxmode"`
	EnableTemporalSmoothing bool          `koanf:"enabletemporalsmoothing"`
	SmoothingFactor         float32       `koanf:"smoothingfactor"`
	EnableNoiseReduction    bool          `koanf:"enablenoisereduction"`
	KernelSize              int           `koanf:"kernelsize"`
	MinInvocationInterval   time.Duration `koanf:"mininvocationinterval"`
	RotationInterval        int           `koanf:"rotationinterval"`
}

// RunnerConfig defines the batch runner configurations
type RunnerConfig struct {
	InputPath     string        `koanf:"inputpath"`
	OutputDir     string        `koanf:"outputdir"`
	Height        int           `koanf:"height"`
	Width         int           `koanf:"width"`
	Channels      int           `koanf:"channels"`
	FrameInterval time.Duration `koanf:"frameinterval"`
	ScaleWidth    int           `koanf:"scalewidth"`
	ScaleHeight   int           `koanf:"scaleheight"`
}

// AppConfig defines
type AppConfig struct {
	Log      LogConfig      `koanf:"log"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Runner   RunnerConfig   `koanf:"runner"`
}

// Config - Global variable to export
var Config AppConfig

// Init - Assign global config to decoded config struct
func Init(filePath string) error {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(confmap.Provider(map[string]any{
		"pipeline.lockcoveragefraction":  0.05,
		"pipeline.confidencethreshold":   0.5,
		"pipeline.useargmaxmode":         true,
		"pipeline.smoothingfactor":       0.5,
		"pipeline.kernelsize":            3,
		"pipeline.mininvocationinterval": "100ms",
		"pipeline.rotationinterval":      60,
		"runner.frameinterval":           "33ms",
	}, "."), nil); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return err
	}

	return k.Unmarshal("", &Config)
}

var defaultConfigPath = "configs/config.yaml"

// ParseConfigFlag allows clients to specify the relative path to the file from
// which the configuration will be loaded.
func ParseConfigFlag() string {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("file", defaultConfigPath, "configuration file")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err.Error())
	}

	return *configPath
}
