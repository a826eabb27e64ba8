package config

const (
	defaultConfigPath          = "~/.config/mscx/config.toml"
	defaultStateDir            = "~/.local/share/mscx"
	defaultLogDir              = "~/.local/share/mscx/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultRenderBinary        = "mscore"
	defaultRenderTimeout       = 300
	defaultRenameTemplate      = "$title ($composer)"
	defaultBatchGlob           = "*.msc[xz]"
	defaultRenameLock          = true
	defaultBatchErrorTolerance = false
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Render: Render{
			Binary:         defaultRenderBinary,
			TimeoutSeconds: defaultRenderTimeout,
		},
		Rename: Rename{
			Template: defaultRenameTemplate,
			Lock:     defaultRenameLock,
		},
		Batch: Batch{
			ErrorTolerant: defaultBatchErrorTolerance,
			Glob:          defaultBatchGlob,
		},
	}
}
