package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/output"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

var placeOpts struct {
	anchor   string
	display  string
	content  string
	terminal bool
	popover  popoverFlags
}

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Compute a popover placement without showing anything",
	Long: `Run the placement engine and print where a popover would go.

No daemon is needed. The display is given as WIDTHxHEIGHT or x,y,width,height.
--content is the natural content size used when --size leaves an axis unset.
--terminal uses the [terminal] placement settings, measured in cells.

Examples:
  # A popover that does not fit above the anchor flips below it
  anchorpop place --anchor 100,0,50,50 --size 200x100 -d up

  # YAML output for a terminal-sized display
  anchorpop place --terminal --display 80x24 --anchor 10,5,8,1 --content 20x3 -o yaml`,
	Args: cobra.NoArgs,
	RunE: runPlace,
}

func init() {
	rootCmd.AddCommand(placeCmd)

	placeCmd.Flags().StringVarP(&placeOpts.anchor, "anchor", "a", "",
		"Anchor rectangle as x,y,width,height (required)")
	placeCmd.Flags().StringVar(&placeOpts.display, "display", "1920x1080",
		"Display bounds as WIDTHxHEIGHT or x,y,width,height")
	placeCmd.Flags().StringVar(&placeOpts.content, "content", "",
		"Natural content size as WIDTHxHEIGHT")
	placeCmd.Flags().BoolVar(&placeOpts.terminal, "terminal", false,
		"Use terminal placement settings")
	placeOpts.popover.register(placeCmd)
	_ = placeCmd.MarkFlagRequired("anchor")
}

func runPlace(cmd *cobra.Command, args []string) error {
	anchor, err := parseRect(placeOpts.anchor)
	if err != nil {
		return fmt.Errorf("invalid --anchor: %w", err)
	}

	display, err := parseDisplay(placeOpts.display)
	if err != nil {
		return fmt.Errorf("invalid --display: %w", err)
	}

	var measured model.Size
	if placeOpts.content != "" {
		measured, err = parseSize(placeOpts.content)
		if err != nil {
			return fmt.Errorf("invalid --content: %w", err)
		}
	}

	c := getConfig()
	opts, err := placeOpts.popover.apply(cmd, c.DefaultOptions())
	if err != nil {
		return err
	}

	params := c.Placement.Params()
	if placeOpts.terminal {
		params = c.Terminal.Params()
	}

	pl := placement.Compute(placement.Request{
		Anchor:    anchor,
		Preferred: opts.PreferredSize(),
		Measured:  measured,
		Direction: opts.ArrowDirection,
		Display:   display,
	}, params)

	logger.Debug("computed placement", "rect", pl.Rect(), "direction", pl.Direction, "flipped", pl.Flipped)

	return writeReport(cmd, output.PlacementReport{
		Anchor:    anchor,
		Display:   display,
		Placement: pl,
	})
}

// parseDisplay accepts WIDTHxHEIGHT at the origin or a full rectangle.
func parseDisplay(s string) (model.Rect, error) {
	if strings.Contains(s, ",") {
		return parseRect(s)
	}
	size, err := parseSize(s)
	if err != nil {
		return model.Rect{}, err
	}
	return model.Rect{Width: size.Width, Height: size.Height}, nil
}
