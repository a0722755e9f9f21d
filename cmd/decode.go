// Package cmd holds CLI subcommands that would otherwise create an import
// cycle if they lived in package adapter.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergev/floppy/adapter"
	"github.com/sergev/floppy/kryoflux"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	decodeDumpFluxes  bool
	decodeDumpIndexes bool
	decodeDumpInfo    bool
	decodeHistogram   bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Decode a KryoFlux Stream file and print a report",
	Long:  "Decode a KryoFlux Stream file (.raw) and print a fixed-format report about its contents.",
	Args:  cobra.ExactArgs(1),
	// This command inspects a file on disk; it never touches a USB adapter.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to read %s: %w", filename, err))
		}

		decoded, err := kryoflux.Decode(data)
		if err != nil {
			log.Error("decode failed", "file", filename, "err", err)
			os.Exit(1)
		}

		stat := decoded.Statistic()
		fmt.Printf("File: %s\n", filename)
		fmt.Printf("Flux count: %d\n", decoded.FluxCount())
		fmt.Printf("Index count: %d\n", decoded.IndexCount())
		fmt.Printf("Revolution count: %d\n", decoded.RevolutionCount())
		fmt.Printf("Sample clock: %.3f Hz\n", decoded.SampleClockHz())
		fmt.Printf("Index clock: %.3f Hz\n", decoded.IndexClockHz())
		fmt.Printf("Avg RPM: %.2f (min %.2f, max %.2f)\n", stat.AvgRPM, stat.MinRPM, stat.MaxRPM)
		fmt.Printf("Avg bitrate: %.2f bps\n", stat.AvgBPS)
		fmt.Printf("Avg flux per revolution: %.2f\n", stat.AvgFluxPerRev)
		fmt.Printf("Min/max flux: %d/%d\n", stat.MinFlux, stat.MaxFlux)

		if decodeDumpFluxes {
			fmt.Println("\nFlux values:")
			for i, v := range decoded.FluxValues() {
				fmt.Printf("  [%d] %d\n", i, v)
			}
		}

		if decodeDumpIndexes {
			fmt.Println("\nIndexes:")
			for i, idx := range decoded.Indexes() {
				fmt.Printf("  [%d] flux_position=%d pre_index_time=%d rotation_time=%d sample_counter=%d index_counter=%d\n",
					i, idx.FluxPosition, idx.PreIndexTime, idx.RotationTime, idx.SampleCounter, idx.IndexCounter)
			}
		}

		if decodeDumpInfo {
			fmt.Println("\nInfo text fields:")
			for _, field := range strings.Split(decoded.InfoText(), ",") {
				fmt.Printf("  %s\n", strings.TrimSpace(field))
			}
		}

		if decodeHistogram {
			printFluxHistogram(decoded.FluxValues())
		}
	},
}

func printFluxHistogram(values []kryoflux.FluxValue) {
	const buckets = 16
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := uint32(max-min) + 1
	counts := make([]int, buckets)
	for _, v := range values {
		bucket := int(uint32(v-min) * buckets / span)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		counts[bucket]++
	}

	fmt.Printf("\nFlux histogram (%d buckets, range %d..%d):\n", buckets, min, max)
	for i, c := range counts {
		lo := min + kryoflux.FluxValue(uint32(i)*span/buckets)
		fmt.Printf("  [%6d] %s (%d)\n", lo, strings.Repeat("#", c/maxInt(1, len(values)/200+1)), c)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func init() {
	decodeCmd.Flags().BoolVarP(&decodeDumpFluxes, "fluxes", "f", false, "dump flux values")
	decodeCmd.Flags().BoolVarP(&decodeDumpIndexes, "indexes", "i", false, "dump index records")
	decodeCmd.Flags().BoolVarP(&decodeDumpInfo, "info", "n", false, "dump info text fields")
	decodeCmd.Flags().BoolVarP(&decodeHistogram, "histogram", "h", false, "print a histogram of flux values")
	adapter.AddCommand(decodeCmd)
}
