package commands

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"time"

	"GridVision/internal/config"
	"GridVision/pkg/log"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newVisionModel is swapped in tests.
var newVisionModel = config.NewVisionModel

type detectOptions struct {
	multi         bool
	provider      string
	maxIterations int
	convergence   float64
	minSize       int
	rows          int
	cols          int
	verbose       bool
}

func NewDetectCmd() *cobra.Command {
	opts := &detectOptions{}
	defaults := spatial.DefaultPolicy()

	cmd := &cobra.Command{
		Use:   "detect <image> <description> [description...]",
		Short: "Localize one object, or several with --multi",
		Long: `Localize an object described in plain words.

With --multi every remaining argument is a separate description; each is
localized independently and all boxes are also drawn into <name>_combined.

Results are written next to the image as <name>_detected<ext>.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.multi, "multi", false, "Treat every argument after the image as a separate target")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Vision model provider (openai, gemini, auto)")
	cmd.Flags().IntVar(&opts.maxIterations, "max-iterations", defaults.MaxIterations, "Maximum crop iterations")
	cmd.Flags().Float64Var(&opts.convergence, "convergence", defaults.ConvergenceThreshold, "Stop once a crop keeps more than this fraction of the image area")
	cmd.Flags().IntVar(&opts.minSize, "min-size", defaults.MinSize, "Stop once both sides are below this many pixels")
	cmd.Flags().IntVar(&opts.rows, "rows", defaults.Rows, "Grid rows")
	cmd.Flags().IntVar(&opts.cols, "cols", defaults.Cols, "Grid columns")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print every refinement step")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *detectOptions, args []string) error {
	imagePath, targets := args[0], args[1:]
	if !opts.multi && len(targets) > 1 {
		return fmt.Errorf("got %d descriptions; use --multi to detect several objects", len(targets))
	}

	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("image file not found: %s", imagePath)
	}

	img, err := utils.DecodeImageFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	logger := log.NewLogger()
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	policy, err := policyFromFlags(cmd, opts)
	if err != nil {
		return err
	}

	provider := opts.provider
	if provider == "" {
		provider = os.Getenv("ORACLE_PROVIDER")
	}
	p, err := config.ParseProvider(provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	timeout, err := config.DurationEnv("DETECTION_TIMEOUT", 120*time.Second)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model, closeModel, err := newVisionModel(ctx, p)
	if err != nil {
		return err
	}
	defer closeModel()

	o, err := config.NewOracle(model, nil, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	detectorOpts := []spatial.Option{spatial.WithPolicy(policy)}
	if opts.verbose {
		detectorOpts = append(detectorOpts, spatial.WithObserver(func(s spatial.Step) { printStep(out, s) }))
	}

	detector, err := spatial.New(o, logger, detectorOpts...)
	if err != nil {
		return err
	}

	if opts.multi {
		return detectMany(ctx, cmd, detector, img, imagePath, targets)
	}
	return detectOne(ctx, cmd, detector, img, imagePath, targets[0])
}

func detectOne(ctx context.Context, cmd *cobra.Command, detector *spatial.Detector, img image.Image, imagePath, target string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Detecting %q in %s...\n", target, imagePath)

	res, err := detector.Detect(ctx, img, target)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	savedPath := ""
	if res.Detected {
		if savedPath, err = spatial.Persist(res, imagePath); err != nil {
			return err
		}
	}

	printResult(cmd.OutOrStdout(), res, savedPath)
	return nil
}

func detectMany(ctx context.Context, cmd *cobra.Command, detector *spatial.Detector, img image.Image, imagePath string, targets []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Detecting %d objects in %s...\n", len(targets), imagePath)

	batch, err := detector.DetectMultiple(ctx, img, targets)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	for _, res := range batch.Results {
		printResult(out, res, "")
	}

	fmt.Fprintf(out, "\nLocalized %d of %d targets\n", batch.Detected(), batch.Total())

	if batch.Detected() > 0 {
		combined, err := spatial.PersistComposite(batch, imagePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Combined result saved to: %s\n", combined)
	}
	return nil
}

func policyFromFlags(cmd *cobra.Command, opts *detectOptions) (spatial.Policy, error) {
	policy, err := config.LoadPolicy()
	if err != nil {
		return spatial.Policy{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		policy.MaxIterations = opts.maxIterations
	}
	if flags.Changed("convergence") {
		policy.ConvergenceThreshold = opts.convergence
	}
	if flags.Changed("min-size") {
		policy.MinSize = opts.minSize
	}
	if flags.Changed("rows") {
		policy.Rows = opts.rows
	}
	if flags.Changed("cols") {
		policy.Cols = opts.cols
	}

	return policy, policy.Validate()
}
