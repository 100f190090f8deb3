package config

const (
	defaultDataDir           = "~/.local/share/multiscan/staging"
	defaultLogDir            = "~/.local/share/multiscan/logs"
	defaultToolsDir          = "~/.local/share/multiscan/tools"
	defaultScriptsSubdir     = "process"
	defaultConverterSubdir   = "converter"
	defaultMeshroomSubdir    = "dependencies/meshroom"
	defaultColorDir          = "color"
	defaultDepthDir          = "depth"
	defaultPhotogrammetryDir = "meshroom"
	defaultSkipStep          = 10
	defaultMaxCPUs           = 8
	defaultMaxGPUs           = 1
	defaultDepthWidth        = 256
	defaultDepthHeight       = 192
	defaultFFmpeg            = "ffmpeg"
	defaultFFprobe           = "ffprobe"
	defaultPython            = "python"
	defaultDepthDecoder      = "depth2png.py"
	defaultConda             = "conda"
	defaultCondaEnv          = "meshroom"
	defaultMeshroomBatch     = "./meshroom_batch.sh"
	defaultMeshroomKnown     = "./meshroom_knownposes.sh"
	defaultConverter         = "./run.sh"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			ToolsDir: defaultToolsDir,
		},
		Layout: Layout{
			ColorDir:          defaultColorDir,
			DepthDir:          defaultDepthDir,
			PhotogrammetryDir: defaultPhotogrammetryDir,
		},
		Processing: Processing{
			SkipStep:    defaultSkipStep,
			MaxCPUs:     defaultMaxCPUs,
			MaxGPUs:     defaultMaxGPUs,
			DepthWidth:  defaultDepthWidth,
			DepthHeight: defaultDepthHeight,
		},
		Tools: Tools{
			FFmpeg:             defaultFFmpeg,
			FFprobe:            defaultFFprobe,
			Python:             defaultPython,
			DepthDecoder:       defaultDepthDecoder,
			Conda:              defaultConda,
			CondaEnv:           defaultCondaEnv,
			MeshroomBatch:      defaultMeshroomBatch,
			MeshroomKnownPoses: defaultMeshroomKnown,
			Converter:          defaultConverter,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
