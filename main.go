package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ossyrian/nitroparse/internal/bin"
	"github.com/ossyrian/nitroparse/internal/config"
	"github.com/ossyrian/nitroparse/internal/export"
	"github.com/ossyrian/nitroparse/internal/logging"
	"github.com/ossyrian/nitroparse/internal/nds"
	"github.com/ossyrian/nitroparse/internal/source"
)

var (
	cfgFile string
	cfg     *config.Config

	// set up by prepare before any subcommand runs
	decoder  *nds.Decoder
	src      *source.Source
	closeLog = func() error { return nil }
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nitroparse",
	Short: "Inspect Nintendo DS ROM images and the NARC archives inside them",
	Long: `nitroparse decodes the header, file allocation table, file name table
and overlay tables of a Nintendo DS ROM image, resolves paths to files and
unpacks NARC sub-archives.

Examples:
  nitroparse header game.nds
  nitroparse ls game.nds
  nitroparse extract game.nds a/2/5/6 -o 256.narc
  nitroparse narc game.nds a/2/5/6 --extract ./out
  nitroparse info *.nds`,
	SilenceUsage:       true,
	PersistentPreRunE:  prepare,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeLog() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	// i/o
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file (reports default to stdout)")
	rootCmd.PersistentFlags().StringP("format", "f", "json", "report format (json, yaml)")

	// decoding
	rootCmd.PersistentFlags().String("encoding", bin.DefaultEncoding, "text encoding of names and header strings")
	rootCmd.PersistentFlags().Bool("strict-tags", false, "fail on unexpected NARC chunk tags")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "images decoded concurrently by info (0 = one per CPU)")

	// other opts
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stderr and file)")

	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("encoding", rootCmd.PersistentFlags().Lookup("encoding"))
	viper.BindPFlag("strict_tags", rootCmd.PersistentFlags().Lookup("strict-tags"))
	viper.BindPFlag("jobs", rootCmd.PersistentFlags().Lookup("jobs"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.PersistentFlags().Lookup("log-output-dir"))
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nitroparse"))
		}
		viper.AddConfigPath("/etc/nitroparse")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("NITROPARSE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// prepare loads the config, sets up logging and builds the shared decoder
func prepare(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if in := inputArgs(cmd, args); len(in) > 0 {
		cfg.InputFiles = in
	}

	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	closeLog = closer

	enc, err := bin.Encoding(cfg.Encoding)
	if err != nil {
		return err
	}

	decoder, err = nds.NewDecoder(nds.Options{
		Encoding:   enc,
		StrictTags: cfg.StrictTags,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not build decoder: %w", err)
	}

	src = source.New(nil)
	return nil
}

// inputArgs picks the image paths out of the positional args. Only info
// takes more than one image; every other command treats args[0] as the ROM.
func inputArgs(cmd *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return nil
	}
	if cmd.Name() == "info" {
		return args
	}
	return args[:1]
}

// loadROM reads and decodes the image named by the first input
func loadROM() (*nds.ROM, []byte, error) {
	if len(cfg.InputFiles) == 0 {
		return nil, nil, fmt.Errorf("no input image given")
	}
	path := cfg.InputFiles[0]
	slog.Info("decoding image", "input", path)

	buf, err := src.Load(path)
	if err != nil {
		return nil, nil, err
	}

	rom, err := decoder.DecodeROM(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return rom, buf, nil
}

// emit writes a report to the configured output, or stdout
func emit(cmd *cobra.Command, v any) error {
	if cfg.OutputPath == "" {
		return export.Write(cmd.OutOrStdout(), cfg.Format, v)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, cfg.Format, v); err != nil {
		return err
	}
	if err := src.Store(cfg.OutputPath, buf.Bytes()); err != nil {
		return err
	}
	slog.Info("wrote report", "output", cfg.OutputPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
