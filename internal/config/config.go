package config

// Config holds app configuration
type Config struct {
	// InputFiles are the ROM images to decode. Most commands use only the
	// first one; info decodes all of them.
	InputFiles []string `mapstructure:"input"`

	// OutputPath is where extracted files or the encoded report go.
	// Empty means stdout for reports.
	OutputPath string `mapstructure:"output"`

	// Format selects the report encoding (json, yaml)
	Format string `mapstructure:"format"`

	// Encoding is the WHATWG label used for file names and header text
	Encoding string `mapstructure:"encoding"`

	// StrictTags fails NARC decoding on unexpected chunk tags instead of
	// logging a warning
	StrictTags bool `mapstructure:"strict_tags"`

	// Jobs bounds how many images info decodes at once (0 = one per CPU)
	Jobs int `mapstructure:"jobs"`

	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}
