package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strconv"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/ossyrian/nitroparse/internal/nds"
)

var headerCmd = &cobra.Command{
	Use:   "header <rom>",
	Short: "Print the ROM header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, _, err := loadROM()
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			return emit(cmd, rom.Header.Fields)
		}
		return emit(cmd, rom.Header)
	},
}

var fatCmd = &cobra.Command{
	Use:   "fat <rom>",
	Short: "Print the file allocation table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, _, err := loadROM()
		if err != nil {
			return err
		}
		return emit(cmd, rom.FAT)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <rom>",
	Short: "List every file path with its file id and size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, _, err := loadROM()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return rom.FNT.Walk(func(p string, id uint16) error {
			size := "-"
			if int(id) < len(rom.FAT) {
				size = strconv.FormatUint(uint64(rom.FAT[id].Len()), 10)
			}
			_, err := fmt.Fprintf(out, "%5d %10s  %s\n", id, size, p)
			return err
		})
	},
}

var fntCmd = &cobra.Command{
	Use:   "fnt <rom>",
	Short: "Print the decoded file name table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, _, err := loadROM()
		if err != nil {
			return err
		}
		return emit(cmd, rom.FNT)
	},
}

var overlaysCmd = &cobra.Command{
	Use:   "overlays <rom>",
	Short: "Print the ARM9 and ARM7 overlay tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, _, err := loadROM()
		if err != nil {
			return err
		}
		return emit(cmd, map[string][]nds.Overlay{
			"arm9": rom.ARM9Overlays,
			"arm7": rom.ARM7Overlays,
		})
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <rom> <path>",
	Short: "Copy one file out of the ROM",
	Long: `Copy one file out of the ROM. The file is named by its path in the
file name table, or by numeric file id with --id. Without -o the file is
written to the current directory under its base name.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, buf, err := loadROM()
		if err != nil {
			return err
		}

		byID, _ := cmd.Flags().GetBool("id")
		var data []byte
		if byID {
			id, perr := strconv.Atoi(args[1])
			if perr != nil {
				return fmt.Errorf("invalid file id %q: %w", args[1], perr)
			}
			data, err = rom.File(buf, id)
		} else {
			data, err = rom.Open(buf, args[1])
		}
		if err != nil {
			return err
		}

		out := cfg.OutputPath
		if out == "" {
			out = path.Base(args[1])
		}
		if err := src.Store(out, data); err != nil {
			return err
		}
		slog.Info("extracted file", "path", args[1], "output", out, "size", len(data))
		return nil
	},
}

var overlayCmd = &cobra.Command{
	Use:   "overlay <rom> <index>",
	Short: "Copy one ARM9 overlay payload out of the ROM",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, buf, err := loadROM()
		if err != nil {
			return err
		}

		idx, err := strconv.Atoi(args[1])
		if err != nil || idx < 0 || idx >= len(rom.ARM9Overlays) {
			return fmt.Errorf("overlay index %q out of range (0-%d)", args[1], len(rom.ARM9Overlays)-1)
		}
		ov := rom.ARM9Overlays[idx]

		data, err := rom.OverlayData(buf, ov)
		if errors.Is(err, nds.ErrNotImplemented) {
			slog.Error("overlay is compressed", "overlay", ov.ID, "size", ov.Size())
		}
		if err != nil {
			return err
		}

		out := cfg.OutputPath
		if out == "" {
			out = fmt.Sprintf("overlay_%04d.bin", ov.ID)
		}
		return src.Store(out, data)
	},
}

var narcCmd = &cobra.Command{
	Use:   "narc <rom> <path>",
	Short: "Decode a NARC archive stored in the ROM",
	Long: `Decode the NARC archive at path inside the ROM and print its
allocation and name tables. With --extract every archived file is written
under the given directory; files without a name are stored by index.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rom, buf, err := loadROM()
		if err != nil {
			return err
		}

		narc, data, err := decoder.OpenNARC(buf, rom, args[1])
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("extract")
		if dir == "" {
			return emit(cmd, narc)
		}
		return extractNARC(narc, data, dir)
	},
}

func extractNARC(narc *nds.NARC, data []byte, dir string) error {
	named := make(map[int]string)
	if err := narc.FNT.Walk(func(p string, id uint16) error {
		named[int(id)] = p
		return nil
	}); err != nil {
		return err
	}

	for i := range narc.Files {
		name, ok := named[i]
		if !ok {
			name = fmt.Sprintf("%04d.bin", i)
		}
		file, err := narc.File(data, i)
		if err != nil {
			return err
		}
		if err := src.StoreUnder(dir, name, file); err != nil {
			return err
		}
	}

	slog.Info("extracted NARC", "files", len(narc.Files), "output", dir)
	return nil
}

// summary is one line of the info report
type summary struct {
	Input        string `json:"input" yaml:"input"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	GameCode     string `json:"game_code,omitempty" yaml:"game_code,omitempty"`
	Files        int    `json:"files" yaml:"files"`
	Directories  int    `json:"directories" yaml:"directories"`
	ARM9Overlays int    `json:"arm9_overlays" yaml:"arm9_overlays"`
	ARM7Overlays int    `json:"arm7_overlays" yaml:"arm7_overlays"`
	Compressed   int    `json:"compressed_overlays" yaml:"compressed_overlays"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info <rom>...",
	Short: "Summarise one or more ROM images",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs := cfg.Jobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}

		results := make([]summary, len(cfg.InputFiles))
		p := pool.New().WithMaxGoroutines(jobs)
		for i, input := range cfg.InputFiles {
			p.Go(func() {
				results[i] = summarise(input)
			})
		}
		p.Wait()

		failed := lo.CountBy(results, func(s summary) bool { return s.Error != "" })
		if failed > 0 {
			slog.Warn("some images failed to decode", "failed", failed, "total", len(results))
		}
		return emit(cmd, results)
	},
}

func summarise(input string) summary {
	s := summary{Input: input}

	buf, err := src.Load(input)
	if err != nil {
		s.Error = err.Error()
		return s
	}

	rom, err := decoder.DecodeROM(buf)
	if err != nil {
		s.Error = err.Error()
		return s
	}

	s.Title = rom.Header.Title
	s.GameCode = rom.Header.GameCode
	s.Files = len(rom.FAT)
	s.Directories = len(rom.FNT.Dirs)
	s.ARM9Overlays = len(rom.ARM9Overlays)
	s.ARM7Overlays = len(rom.ARM7Overlays)
	s.Compressed = lo.CountBy(rom.ARM9Overlays, nds.Overlay.Compressed) +
		lo.CountBy(rom.ARM7Overlays, nds.Overlay.Compressed)
	return s
}

func init() {
	headerCmd.Flags().Bool("raw", false, "print every header field in on-disk order")
	extractCmd.Flags().Bool("id", false, "treat the path argument as a numeric file id")
	narcCmd.Flags().String("extract", "", "directory to unpack the archive into")

	rootCmd.AddCommand(headerCmd, fatCmd, fntCmd, lsCmd, overlaysCmd, extractCmd, overlayCmd, narcCmd, infoCmd)
}
