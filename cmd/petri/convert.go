package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oriumgames/petri"
	"github.com/oriumgames/petri/format"
	"github.com/spf13/cobra"
)

func newConvertCommand() *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between pattern formats (.rle, .mc, .ptri)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, outPath := args[0], args[1]

			engine := petri.NewEngine(petri.Settings{})
			if err := loadPattern(engine, inPath); err != nil {
				return err
			}
			fmt.Printf("loaded %s: population %d, %d chunks\n",
				inPath, engine.Population(), engine.Store().ChunkCount())

			switch strings.ToLower(filepath.Ext(outPath)) {
			case ".ptri":
				level, err := compressionLevel(compression)
				if err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				if err := engine.SnapshotWithCompression(f, level); err != nil {
					_ = f.Close()
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				return f.Close()
			case ".rle":
				rle, _, _ := engine.ExportRLE()
				if err := os.WriteFile(outPath, []byte(rle), 0644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", filepath.Ext(outPath))
			}
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "default", "snapshot compression: none, fast, default, best")
	return cmd
}

// compressionLevel maps a flag value to a format compression level.
func compressionLevel(name string) (format.CompressionLevel, error) {
	switch name {
	case "none":
		return format.CompressionLevelNone, nil
	case "fast":
		return format.CompressionLevelFast, nil
	case "default":
		return format.CompressionLevelDefault, nil
	case "best":
		return format.CompressionLevelBest, nil
	default:
		return 0, fmt.Errorf("unknown compression level %q", name)
	}
}
