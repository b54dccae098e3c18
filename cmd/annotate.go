package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Screenshot the device with title hit boxes drawn on it",
	Long: `Read the visible titles, capture the screen and draw each title's click
rectangle and tap anchor on the capture. Useful to check what open would
tap before it does.`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().StringP("output", "o", "annotated.png", "PNG file to write")
	annotateCmd.Flags().String("label", "index", "Box label: index, tap")
	annotateCmd.Flags().Float64("scale", 1.0, "Scale factor 0.1-1.0 for the written image")
}

type annotateOutput struct {
	File   string `yaml:"file"   json:"file"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
	Titles int    `yaml:"titles" json:"titles"`
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	labelStr, _ := cmd.Flags().GetString("label")
	scale, _ := cmd.Flags().GetFloat64("scale")
	mode, err := ParseLabelMode(labelStr)
	if err != nil {
		return report("annotate", nil, err)
	}
	if scale < 0.1 || scale > 1.0 {
		return report("annotate", nil, fmt.Errorf("scale must be between 0.1 and 1.0, got %v", scale))
	}

	return withSession(func(s *session) error {
		shots := s.provider.Screenshotter
		if shots == nil {
			return report("annotate", nil, errors.New("screenshots are not supported by this backend"))
		}
		hits, err := s.ctl.ReadTitles(cmd.Context())
		if err != nil {
			return report("annotate", nil, err)
		}
		raw, err := shots.CaptureScreen()
		if err != nil {
			return report("annotate", nil, fmt.Errorf("capture screen: %w", err))
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return report("annotate", nil, fmt.Errorf("decode screenshot: %w", err))
		}

		var out image.Image = AnnotateTitles(img, hits, s.provider.Service.ScreenSize(), mode)
		if scale < 1.0 {
			w := uint(float64(out.Bounds().Dx()) * scale)
			out = resize.Resize(w, 0, out, resize.Lanczos3)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, out); err != nil {
			return report("annotate", nil, fmt.Errorf("encode png: %w", err))
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return report("annotate", nil, fmt.Errorf("write %s: %w", path, err))
		}
		b := out.Bounds()
		return report("annotate", annotateOutput{File: path, Width: b.Dx(), Height: b.Dy(), Titles: len(hits)}, nil)
	})
}
